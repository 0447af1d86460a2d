package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rx-interaction-engine/internal/domain"
)

// checkRequest is the body of POST /interactions/check.
type checkRequest struct {
	Drugs          []string                       `json:"drugs"`
	PatientProfile domain.PatientPhenotypeProfile `json:"patientProfile,omitempty"`
}

// findAlternativesRequest is the body of POST /alternatives/find-alternatives.
type findAlternativesRequest struct {
	Drugs          []domain.DrugRef               `json:"drugs"`
	PatientProfile domain.PatientPhenotypeProfile `json:"patientProfile,omitempty"`
}

func (s *Server) handleCheckInteractions(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	resp, err := s.engine.CheckInteractions(c.Request.Context(), req.Drugs, req.PatientProfile)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleFindAlternatives(c *gin.Context) {
	var req findAlternativesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	resp, err := s.engine.FindAlternatives(c.Request.Context(), req.Drugs, req.PatientProfile)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleKnownInteractions(c *gin.Context) {
	resp, err := s.engine.KnownInteractions(c.Request.Context(), c.Param("drugName"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleClearCache is idempotent and always succeeds: cache backend failures
// are logged inside the engine, never surfaced here.
func (s *Server) handleClearCache(c *gin.Context) {
	s.engine.ClearCache(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// renderError maps the engine's failure taxonomy onto HTTP statuses. Only
// validation errors and missing reference data reach the caller as failures;
// anything else is an internal fault.
func (s *Server) renderError(c *gin.Context, err error) {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
		return
	}

	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
		return
	}

	s.logger.WithError(err).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
