// Package store provides the curated clinical reference data backends the
// interaction engine consumes: interaction rows keyed by canonical drug pair,
// CPIC-style gene-drug guidelines, therapeutic class membership, and static
// efficacy baselines.
package store

import (
	"github.com/rx-interaction-engine/internal/domain"
)

// Dataset is a complete curated reference dataset. The built-in seed covers a
// representative formulary; production deployments load the same shape from
// SQLite or Postgres.
type Dataset struct {
	Drugs        []domain.DrugRef
	Interactions []domain.InteractionRecord
	GeneDrug     []domain.GeneDrugInteraction
	Efficacy     map[string]int
}

// Drug identifiers follow the RxNorm concept (RXCUI) scheme.
var seedDrugs = []domain.DrugRef{
	{ID: "1191", DisplayName: "Aspirin", GenericName: "aspirin", DrugClass: "antiplatelet"},
	{ID: "32968", DisplayName: "Clopidogrel", GenericName: "clopidogrel", DrugClass: "antiplatelet"},
	{ID: "613391", DisplayName: "Prasugrel", GenericName: "prasugrel", DrugClass: "antiplatelet"},
	{ID: "1116632", DisplayName: "Ticagrelor", GenericName: "ticagrelor", DrugClass: "antiplatelet"},

	{ID: "11289", DisplayName: "Warfarin", GenericName: "warfarin", DrugClass: "anticoagulant"},
	{ID: "1364430", DisplayName: "Apixaban", GenericName: "apixaban", DrugClass: "anticoagulant"},
	{ID: "1114195", DisplayName: "Rivaroxaban", GenericName: "rivaroxaban", DrugClass: "anticoagulant"},

	{ID: "5640", DisplayName: "Ibuprofen", GenericName: "ibuprofen", DrugClass: "NSAID"},
	{ID: "7258", DisplayName: "Naproxen", GenericName: "naproxen", DrugClass: "NSAID"},
	{ID: "140587", DisplayName: "Celecoxib", GenericName: "celecoxib", DrugClass: "NSAID"},

	{ID: "161", DisplayName: "Acetaminophen", GenericName: "acetaminophen", DrugClass: "analgesic"},

	{ID: "36567", DisplayName: "Simvastatin", GenericName: "simvastatin", DrugClass: "statin"},
	{ID: "83367", DisplayName: "Atorvastatin", GenericName: "atorvastatin", DrugClass: "statin"},
	{ID: "301542", DisplayName: "Rosuvastatin", GenericName: "rosuvastatin", DrugClass: "statin"},
	{ID: "42463", DisplayName: "Pravastatin", GenericName: "pravastatin", DrugClass: "statin"},

	{ID: "7646", DisplayName: "Omeprazole", GenericName: "omeprazole", DrugClass: "proton pump inhibitor"},
	{ID: "40790", DisplayName: "Pantoprazole", GenericName: "pantoprazole", DrugClass: "proton pump inhibitor"},
	{ID: "283742", DisplayName: "Esomeprazole", GenericName: "esomeprazole", DrugClass: "proton pump inhibitor"},

	{ID: "21212", DisplayName: "Clarithromycin", GenericName: "clarithromycin", DrugClass: "macrolide"},
	{ID: "18631", DisplayName: "Azithromycin", GenericName: "azithromycin", DrugClass: "macrolide"},

	{ID: "2670", DisplayName: "Codeine", GenericName: "codeine", DrugClass: "opioid"},
	{ID: "10689", DisplayName: "Tramadol", GenericName: "tramadol", DrugClass: "opioid"},
	{ID: "7052", DisplayName: "Morphine", GenericName: "morphine", DrugClass: "opioid"},

	{ID: "6918", DisplayName: "Metoprolol", GenericName: "metoprolol", DrugClass: "beta blocker"},
}

func seedInteractions() []domain.InteractionRecord {
	drug := seedDrugIndex()
	pair := func(aID, bID string, severity domain.Severity, mechanism, effect, management string,
		evidence domain.EvidenceLevel, frequency, onset, documentation string) domain.InteractionRecord {
		p := domain.NewDrugPair(drug[aID], drug[bID])
		return domain.InteractionRecord{
			DrugA:         p.A,
			DrugB:         p.B,
			Severity:      severity,
			Mechanism:     mechanism,
			Effect:        effect,
			Management:    management,
			EvidenceLevel: evidence,
			Frequency:     frequency,
			Onset:         onset,
			Documentation: documentation,
		}
	}

	return []domain.InteractionRecord{
		pair("11289", "1191", domain.SeverityMajor,
			"Additive anticoagulant and antiplatelet activity",
			"Increased bleeding risk",
			"Avoid combination unless dual therapy is intended; monitor INR and watch for bleeding",
			domain.EvidenceA, "common", "rapid", "established"),
		pair("5640", "1191", domain.SeverityModerate,
			"Ibuprofen competes for the platelet COX-1 binding site and blunts irreversible inhibition",
			"Reduced antiplatelet effect of aspirin",
			"Give aspirin at least 30 minutes before ibuprofen, or use an alternative analgesic",
			domain.EvidenceB, "common", "rapid", "established"),
		pair("7258", "1191", domain.SeverityModerate,
			"Naproxen competes for the platelet COX-1 binding site",
			"Reduced antiplatelet effect of aspirin",
			"Separate dosing or use an alternative analgesic",
			domain.EvidenceB, "common", "rapid", "probable"),
		pair("32968", "1191", domain.SeverityModerate,
			"Additive platelet inhibition",
			"Increased bleeding risk with dual antiplatelet therapy",
			"Use only when dual antiplatelet therapy is indicated; monitor for bleeding",
			domain.EvidenceB, "common", "delayed", "established"),
		pair("32968", "7646", domain.SeverityMajor,
			"Omeprazole inhibits CYP2C19-mediated conversion of clopidogrel to its active metabolite",
			"Reduced antiplatelet effect of clopidogrel",
			"Prefer pantoprazole if acid suppression is required",
			domain.EvidenceA, "common", "delayed", "established"),
		pair("36567", "21212", domain.SeverityContraindicated,
			"Clarithromycin strongly inhibits CYP3A4-mediated simvastatin metabolism",
			"Markedly increased simvastatin exposure with risk of myopathy and rhabdomyolysis",
			"Suspend simvastatin during clarithromycin therapy or choose azithromycin",
			domain.EvidenceA, "uncommon", "delayed", "established"),
		pair("83367", "21212", domain.SeverityMajor,
			"Clarithromycin inhibits CYP3A4-mediated atorvastatin metabolism",
			"Increased atorvastatin exposure with risk of myopathy",
			"Limit atorvastatin dose or choose azithromycin",
			domain.EvidenceB, "uncommon", "delayed", "probable"),
		pair("11289", "5640", domain.SeverityMajor,
			"NSAID gastric mucosal injury combined with anticoagulation",
			"Increased risk of gastrointestinal bleeding",
			"Avoid combination; use acetaminophen for analgesia where possible",
			domain.EvidenceB, "common", "delayed", "established"),
		pair("11289", "7258", domain.SeverityMajor,
			"NSAID gastric mucosal injury combined with anticoagulation",
			"Increased risk of gastrointestinal bleeding",
			"Avoid combination; use acetaminophen for analgesia where possible",
			domain.EvidenceB, "common", "delayed", "established"),
		pair("11289", "140587", domain.SeverityModerate,
			"COX-2 selective inhibition spares platelets but retains renal and GI risk with anticoagulation",
			"Possible increased bleeding risk",
			"Monitor INR after starting or stopping celecoxib",
			domain.EvidenceC, "uncommon", "delayed", "probable"),
		pair("11289", "161", domain.SeverityMinor,
			"Sustained high-dose acetaminophen may potentiate the anticoagulant response",
			"Possible INR elevation with sustained doses above 2 g/day",
			"Monitor INR if acetaminophen exceeds 2 g/day for more than a few days",
			domain.EvidenceC, "rare", "delayed", "possible"),
		pair("10689", "7052", domain.SeverityModerate,
			"Additive opioid agonism",
			"Increased risk of CNS and respiratory depression",
			"Avoid duplicate opioid therapy; consolidate to a single agent",
			domain.EvidenceC, "common", "rapid", "probable"),
		pair("10689", "2670", domain.SeverityModerate,
			"Additive opioid agonism and shared CYP2D6 activation pathway",
			"Increased risk of CNS depression with unpredictable analgesia",
			"Avoid duplicate opioid therapy",
			domain.EvidenceC, "common", "rapid", "probable"),
	}
}

func seedGeneDrug() []domain.GeneDrugInteraction {
	drug := seedDrugIndex()
	return []domain.GeneDrugInteraction{
		{Gene: "CYP2C19", Drug: drug["32968"], Phenotype: domain.PhenotypePoorMetabolizer,
			Recommendation: "Avoid clopidogrel; consider prasugrel or ticagrelor at standard dosing",
			EvidenceLevel:  domain.EvidenceA},
		{Gene: "CYP2C19", Drug: drug["32968"], Phenotype: domain.PhenotypeIntermediateMetabolizer,
			Recommendation: "Consider an alternative antiplatelet agent",
			EvidenceLevel:  domain.EvidenceB},
		{Gene: "CYP2C19", Drug: drug["7646"], Phenotype: domain.PhenotypeUltrarapidMetabolizer,
			Recommendation: "Consider a dose increase or an alternative acid suppressant",
			DoseAdjustment: "increase dose up to 100%",
			EvidenceLevel:  domain.EvidenceC},
		{Gene: "CYP2D6", Drug: drug["2670"], Phenotype: domain.PhenotypePoorMetabolizer,
			Recommendation: "Avoid codeine; inadequate analgesia expected",
			EvidenceLevel:  domain.EvidenceA},
		{Gene: "CYP2D6", Drug: drug["2670"], Phenotype: domain.PhenotypeUltrarapidMetabolizer,
			Recommendation: "Avoid codeine; risk of life-threatening toxicity",
			EvidenceLevel:  domain.EvidenceA},
		{Gene: "CYP2D6", Drug: drug["10689"], Phenotype: domain.PhenotypePoorMetabolizer,
			Recommendation: "Avoid tramadol; inadequate analgesia expected",
			EvidenceLevel:  domain.EvidenceB},
		{Gene: "CYP2D6", Drug: drug["10689"], Phenotype: domain.PhenotypeUltrarapidMetabolizer,
			Recommendation: "Avoid tramadol; risk of opioid toxicity",
			EvidenceLevel:  domain.EvidenceB},
		{Gene: "SLCO1B1", Drug: drug["36567"], Phenotype: domain.PhenotypePoorMetabolizer,
			Recommendation: "Limit simvastatin to 20 mg daily or choose an alternative statin",
			DoseAdjustment: "max 20 mg/day",
			EvidenceLevel:  domain.EvidenceB},
		{Gene: "CYP2C9", Drug: drug["11289"], Phenotype: domain.PhenotypePoorMetabolizer,
			Recommendation: "Reduce warfarin starting dose and titrate by INR",
			DoseAdjustment: "reduce starting dose 25-50%",
			EvidenceLevel:  domain.EvidenceA},
	}
}

// seedEfficacy holds static therapeutic-equivalence baselines on the 0-100
// scale used by the alternative scorer.
var seedEfficacy = map[string]int{
	"1191":    90, // aspirin
	"32968":   88, // clopidogrel
	"613391":  86, // prasugrel
	"1116632": 87, // ticagrelor
	"11289":   92, // warfarin
	"1364430": 90, // apixaban
	"1114195": 89, // rivaroxaban
	"5640":    85, // ibuprofen
	"7258":    86, // naproxen
	"140587":  84, // celecoxib
	"161":     80, // acetaminophen
	"36567":   85, // simvastatin
	"83367":   92, // atorvastatin
	"301542":  93, // rosuvastatin
	"42463":   78, // pravastatin
	"7646":    90, // omeprazole
	"40790":   88, // pantoprazole
	"283742":  91, // esomeprazole
	"21212":   88, // clarithromycin
	"18631":   85, // azithromycin
	"2670":    70, // codeine
	"10689":   75, // tramadol
	"7052":    95, // morphine
	"6918":    88, // metoprolol
}

func seedDrugIndex() map[string]domain.DrugRef {
	idx := make(map[string]domain.DrugRef, len(seedDrugs))
	for _, d := range seedDrugs {
		idx[d.ID] = d
	}
	return idx
}

// SeedDataset returns the built-in curated reference dataset.
func SeedDataset() Dataset {
	return Dataset{
		Drugs:        seedDrugs,
		Interactions: seedInteractions(),
		GeneDrug:     seedGeneDrug(),
		Efficacy:     seedEfficacy,
	}
}
