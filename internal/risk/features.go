package risk

import (
	"strings"

	"github.com/clinrisk-ensemble-engine/internal/domain"
)

// FeatureSize is the width of the normalized snapshot feature vector
// consumed by the neural regressor.
const FeatureSize = 15

// encodeFeatures normalizes a patient snapshot into [0,1] features.
// The encoding is the single place snapshot fields meet the network;
// both training and prediction go through it.
func encodeFeatures(p *domain.PatientSnapshot) []float64 {
	conditions := make(map[string]bool, len(p.Conditions))
	for _, c := range p.Conditions {
		conditions[strings.ToLower(strings.TrimSpace(c))] = true
	}

	var egfr, inr float64
	if p.Labs != nil && p.Labs.IsFinite() {
		if p.Labs.EGFR > 0 {
			// Lower eGFR means higher risk; invert so the feature rises
			// with risk like every other input.
			egfr = clampUnit(1 - p.Labs.EGFR/120)
		}
		if p.Labs.INR > 0 {
			inr = clampUnit((p.Labs.INR - 1) / 5)
		}
	}

	return []float64{
		clampUnit(float64(p.Age) / 100),
		clampUnit(p.BMI / 50),
		clampUnit(float64(p.SystolicBP) / 220),
		clampUnit(float64(p.DiastolicBP) / 130),
		clampUnit(float64(p.HeartRate) / 180),
		clampUnit(float64(len(p.Conditions)) / 10),
		boolFeature(conditions["heart disease"] || conditions["heart failure"]),
		boolFeature(conditions["kidney disease"]),
		boolFeature(conditions["liver disease"]),
		boolFeature(conditions["diabetes"]),
		boolFeature(strings.EqualFold(p.Smoking, "current")),
		boolFeature(strings.EqualFold(p.Alcohol, "heavy")),
		clampUnit(float64(len(p.MedicationNames())) / 10),
		egfr,
		inr,
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
