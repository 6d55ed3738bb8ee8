// Package risk implements the two numeric risk scorers of the
// ensemble: the deterministic heuristic model and the trainable neural
// regressor that falls back to the heuristic while untrained.
package risk

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/clinrisk-ensemble-engine/internal/domain"
)

// HeuristicModel is the always-available weighted-sum scorer over
// demographics, vitals, history, lifestyle and labs. Scoring is pure
// and side-effect free; the model is safe for concurrent use.
type HeuristicModel struct {
	logger *logrus.Logger
}

// NewHeuristicModel creates the heuristic scorer.
func NewHeuristicModel(logger *logrus.Logger) *HeuristicModel {
	return &HeuristicModel{logger: logger}
}

// Score computes the deterministic risk score in [0,100] with the
// contributing factors that produced it. The score is monotone
// non-decreasing in age, condition count and medication count.
func (m *HeuristicModel) Score(p *domain.PatientSnapshot) (float64, []string) {
	var score float64
	var factors []string

	add := func(points float64, factor string) {
		score += points
		factors = append(factors, fmt.Sprintf("%s (+%.0f)", factor, points))
	}

	switch {
	case p.Age >= 75:
		add(20, "age 75 or older")
	case p.Age >= 65:
		add(15, "age 65-74")
	case p.Age >= 55:
		add(10, "age 55-64")
	case p.Age >= 45:
		add(5, "age 45-54")
	}

	switch {
	case p.BMI >= 35:
		add(10, "BMI 35 or higher")
	case p.BMI >= 30:
		add(8, "BMI indicates obesity")
	case p.BMI >= 27:
		add(4, "BMI elevated")
	}

	switch {
	case p.SystolicBP >= 180 || p.DiastolicBP >= 110:
		add(20, "hypertensive crisis range blood pressure")
	case p.SystolicBP >= 160 || p.DiastolicBP >= 100:
		add(14, "stage 2 hypertension")
	case p.SystolicBP >= 140 || p.DiastolicBP >= 90:
		add(8, "elevated blood pressure")
	}

	if p.HeartRate > 120 || (p.HeartRate > 0 && p.HeartRate < 45) {
		add(8, "heart rate outside safe range")
	}

	score += m.conditionPoints(p, &factors)

	if strings.EqualFold(p.Smoking, "current") {
		add(6, "current smoker")
	} else if strings.EqualFold(p.Smoking, "former") {
		add(2, "former smoker")
	}
	if strings.EqualFold(p.Alcohol, "heavy") {
		add(5, "heavy alcohol use")
	}
	if strings.EqualFold(p.Exercise, "none") || strings.EqualFold(p.Exercise, "sedentary") {
		add(3, "sedentary lifestyle")
	}

	meds := len(p.MedicationNames())
	switch {
	case meds >= 10:
		add(12, "ten or more concurrent medications")
	case meds >= 5:
		add(8, "polypharmacy")
	case meds >= 3:
		add(4, "multiple concurrent medications")
	}

	score += labPoints(p.Labs, &factors)

	return domain.ClampScore(score), factors
}

// conditionPoints weights the documented chronic conditions, capped so
// a long list cannot saturate the whole scale on its own.
func (m *HeuristicModel) conditionPoints(p *domain.PatientSnapshot, factors *[]string) float64 {
	weights := map[string]float64{
		"heart disease":     12,
		"heart failure":     12,
		"kidney disease":    8,
		"liver disease":     8,
		"stroke":            10,
		"cancer":            8,
		"copd":              6,
		"diabetes":          6,
		"atrial fibrillation": 8,
		"hypertension":      4,
	}

	var points float64
	for _, c := range p.Conditions {
		name := strings.ToLower(strings.TrimSpace(c))
		if name == "" {
			continue
		}
		w, ok := weights[name]
		if !ok {
			w = 3
		}
		points += w
		*factors = append(*factors, fmt.Sprintf("history of %s (+%.0f)", name, w))
	}
	if points > 35 {
		points = 35
	}
	return points
}

// labPoints scores the optional lab panel. Non-finite values contribute
// nothing here; the ensemble's lab source handles malformed panels.
func labPoints(labs *domain.LabPanel, factors *[]string) float64 {
	if labs == nil || !labs.IsFinite() {
		return 0
	}

	var points float64
	add := func(p float64, factor string) {
		points += p
		*factors = append(*factors, fmt.Sprintf("%s (+%.0f)", factor, p))
	}

	switch {
	case labs.EGFR > 0 && labs.EGFR < 30:
		add(12, "severely reduced eGFR")
	case labs.EGFR > 0 && labs.EGFR < 60:
		add(6, "reduced eGFR")
	}
	switch {
	case labs.CreatinineMgDL > 2.0:
		add(8, "markedly elevated creatinine")
	case labs.CreatinineMgDL > 1.5:
		add(4, "elevated creatinine")
	}
	if labs.ASTUnitsL > 120 || labs.ALTUnitsL > 120 {
		add(8, "transaminases above three times normal")
	} else if labs.ASTUnitsL > 80 || labs.ALTUnitsL > 80 {
		add(4, "elevated transaminases")
	}
	switch {
	case labs.INR > 4.5:
		add(15, "critically elevated INR")
	case labs.INR > 3.0:
		add(8, "supratherapeutic INR")
	}

	return points
}
