package domain

import (
	"math"
	"strings"
	"time"
)

// Medication is one entry of a patient's current medication list.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}

// LabPanel carries the optional laboratory values consumed by the lab
// flag rules. A zero value means the lab was not drawn; NaN or Inf marks
// a malformed entry and excludes the lab source from the ensemble.
type LabPanel struct {
	CreatinineMgDL float64 `json:"creatinine_mg_dl,omitempty"`
	EGFR           float64 `json:"egfr,omitempty"`
	ASTUnitsL      float64 `json:"ast_units_l,omitempty"`
	ALTUnitsL      float64 `json:"alt_units_l,omitempty"`
	INR            float64 `json:"inr,omitempty"`
}

// IsFinite reports whether every supplied lab value is a finite number.
func (l *LabPanel) IsFinite() bool {
	for _, v := range []float64{l.CreatinineMgDL, l.EGFR, l.ASTUnitsL, l.ALTUnitsL, l.INR} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// PatientSnapshot is the single input contract of the ensemble: one
// immutable view of a patient produced by the intake layer. Defaults are
// applied once at the boundary via ApplyDefaults, not per sub-model.
type PatientSnapshot struct {
	Age         int          `json:"age"`
	WeightKg    float64      `json:"weight_kg,omitempty"`
	HeightCm    float64      `json:"height_cm,omitempty"`
	BMI         float64      `json:"bmi,omitempty"`
	SystolicBP  int          `json:"systolic_bp,omitempty"`
	DiastolicBP int          `json:"diastolic_bp,omitempty"`
	HeartRate   int          `json:"heart_rate,omitempty"`
	Conditions  []string     `json:"conditions,omitempty"`
	Allergies   []string     `json:"allergies,omitempty"`
	Medications []Medication `json:"medications,omitempty"`
	Smoking     string       `json:"smoking,omitempty"`
	Alcohol     string       `json:"alcohol,omitempty"`
	Exercise    string       `json:"exercise,omitempty"`

	// ChiefComplaint is the free-text presenting complaint; empty skips
	// the NLP sub-model.
	ChiefComplaint string `json:"chief_complaint,omitempty"`

	Labs *LabPanel `json:"labs,omitempty"`
}

// ApplyDefaults normalizes the snapshot in place: computes BMI from
// height and weight when absent and trims list entries. Called once at
// the ensemble boundary.
func (p *PatientSnapshot) ApplyDefaults() {
	if p.BMI == 0 && p.WeightKg > 0 && p.HeightCm > 0 {
		m := p.HeightCm / 100.0
		p.BMI = p.WeightKg / (m * m)
	}
	p.Conditions = trimAll(p.Conditions)
	p.Allergies = trimAll(p.Allergies)
	p.ChiefComplaint = strings.TrimSpace(p.ChiefComplaint)
}

// MedicationNames returns the distinct, normalized medication names.
func (p *PatientSnapshot) MedicationNames() []string {
	seen := make(map[string]bool, len(p.Medications))
	names := make([]string, 0, len(p.Medications))
	for _, m := range p.Medications {
		name := strings.ToLower(strings.TrimSpace(m.Name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// HasCondition reports whether the history lists the condition,
// case-insensitively.
func (p *PatientSnapshot) HasCondition(name string) bool {
	for _, c := range p.Conditions {
		if strings.EqualFold(strings.TrimSpace(c), name) {
			return true
		}
	}
	return false
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// DrugProfile holds the static pharmacological properties of one drug.
// Profiles are immutable once loaded.
type DrugProfile struct {
	Class          string  `json:"class"`
	CYPPathway     string  `json:"cyp_pathway"`
	ProteinBinding float64 `json:"protein_binding"`
	HalfLifeHours  float64 `json:"half_life_hours"`
	Hepatotoxicity float64 `json:"hepatotoxicity"`
	Nephrotoxicity float64 `json:"nephrotoxicity"`
	QTRisk         float64 `json:"qt_risk"`
}

// InteractionPrediction is the per-query outcome of the pairwise
// drug-interaction classifier.
type InteractionPrediction struct {
	DrugA      string              `json:"drug_a"`
	DrugB      string              `json:"drug_b"`
	Severity   InteractionSeverity `json:"severity"`
	// Probabilities holds one percentage per class, summing to ~100.
	Probabilities map[InteractionSeverity]float64 `json:"probabilities"`
	Confidence    float64                         `json:"confidence"`
	KnownPair     bool                            `json:"known_pair"`
	Rationale     string                          `json:"rationale,omitempty"`
}

// Symptom is one lexicon match within a chief complaint.
type Symptom struct {
	Term       string `json:"term"`
	BodySystem string `json:"body_system"`
	Severity   int    `json:"severity"`
	Negated    bool   `json:"negated"`
	RedFlag    bool   `json:"red_flag"`
}

// DurationEstimate is the parsed onset duration of a complaint.
type DurationEstimate struct {
	EstimatedDays float64    `json:"estimated_days"`
	Course        Chronicity `json:"course"`
}

// Differential is one candidate condition with its pattern-scored
// probability.
type Differential struct {
	Condition   string  `json:"condition"`
	Probability float64 `json:"probability"`
}

// ComplaintAnalysis is the structured result of the chief-complaint
// analyzer.
type ComplaintAnalysis struct {
	Symptoms           []Symptom         `json:"symptoms"`
	Duration           *DurationEstimate `json:"duration,omitempty"`
	Acuity             Acuity            `json:"acuity"`
	BodySystems        []string          `json:"body_systems"`
	RedFlags           []string          `json:"red_flags"`
	Differentials      []Differential    `json:"differentials"`
	SuggestedQuestions []string          `json:"suggested_questions"`
	Confidence         float64           `json:"confidence"`
}

// AllergyAlert is one allergen/drug conflict found by the
// cross-reactivity engine.
type AllergyAlert struct {
	Allergen string    `json:"allergen"`
	Drug     string    `json:"drug"`
	Type     AlertType `json:"type"`
	Message  string    `json:"message"`
}

// AllergyReport is the outcome of checking a medication list against a
// patient's documented allergies.
type AllergyReport struct {
	Alerts       []AllergyAlert `json:"alerts"`
	Safe         bool           `json:"safe"`
	CheckedDrugs []string       `json:"checked_drugs"`
}

// SubModelScore is one contributor to the ensemble average. Weight
// reflects trust in the source; Available=false carries zero effective
// weight and communicates degradation to consumers.
type SubModelScore struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Weight    float64 `json:"weight"`
	Available bool    `json:"available"`
	Details   string  `json:"details,omitempty"`
}

// Flag is one categorized clinical finding surfaced alongside the score.
type Flag struct {
	Severity FlagSeverity `json:"severity"`
	Category string       `json:"category"`
	Message  string       `json:"message"`
}

// ConfidenceInterval bounds the ensemble score. Low <= score <= High,
// all clamped to [0,100].
type ConfidenceInterval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// EnsembleRiskResult is the consensus assessment returned to callers.
// It is fully JSON-serializable for downstream report generation.
type EnsembleRiskResult struct {
	AssessmentID          string                  `json:"assessment_id"`
	OverallScore          float64                 `json:"overall_score"`
	RiskLevel             RiskLevel               `json:"risk_level"`
	ConfidenceInterval    ConfidenceInterval      `json:"confidence_interval"`
	EnsembleConfidence    float64                 `json:"ensemble_confidence"`
	SubModels             []SubModelScore         `json:"sub_models"`
	Flags                 []Flag                  `json:"flags"`
	PredictedInteractions []InteractionPrediction `json:"predicted_interactions"`
	Differentials         []Differential          `json:"differentials"`
	ComplaintAnalysis     *ComplaintAnalysis      `json:"complaint_analysis,omitempty"`
	Timestamp             time.Time               `json:"timestamp"`
}

// ProgressEvent is one step of a training run's ordered progress stream.
type ProgressEvent struct {
	Epoch    int     `json:"epoch"`
	Loss     float64 `json:"loss"`
	Accuracy float64 `json:"accuracy,omitempty"`
}

// ClampScore confines a risk score or probability to the [0,100] scale.
func ClampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}
