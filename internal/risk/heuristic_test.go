package risk

import (
	"io"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinrisk-ensemble-engine/internal/domain"
)

func newTestHeuristic() *HeuristicModel {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewHeuristicModel(logger)
}

func healthySnapshot() *domain.PatientSnapshot {
	return &domain.PatientSnapshot{
		Age:         30,
		BMI:         23,
		SystolicBP:  118,
		DiastolicBP: 76,
		HeartRate:   68,
		Exercise:    "regular",
	}
}

func TestHeuristicHealthyAdultScoresZero(t *testing.T) {
	m := newTestHeuristic()

	score, factors := m.Score(healthySnapshot())
	assert.Zero(t, score)
	assert.Empty(t, factors)
}

func TestHeuristicScoreMonotoneInAge(t *testing.T) {
	m := newTestHeuristic()

	var prev float64
	for _, age := range []int{30, 45, 55, 65, 75, 90} {
		p := healthySnapshot()
		p.Age = age
		score, _ := m.Score(p)
		assert.GreaterOrEqual(t, score, prev, "age %d", age)
		prev = score
	}
}

func TestHeuristicScoreMonotoneInMedicationCount(t *testing.T) {
	m := newTestHeuristic()

	meds := make([]domain.Medication, 11)
	for i := range meds {
		meds[i] = domain.Medication{Name: string(rune('a' + i))}
	}
	var prev float64
	for n := 0; n <= len(meds); n++ {
		p := healthySnapshot()
		p.Medications = meds[:n]
		score, _ := m.Score(p)
		assert.GreaterOrEqual(t, score, prev, "%d medications", n)
		prev = score
	}
}

func TestHeuristicConditionPointsCapped(t *testing.T) {
	m := newTestHeuristic()

	p := healthySnapshot()
	p.Conditions = []string{
		"heart disease", "heart failure", "kidney disease", "liver disease",
		"stroke", "cancer", "copd", "diabetes", "atrial fibrillation", "hypertension",
	}
	score, _ := m.Score(p)

	// Conditions alone contribute at most 35 points.
	assert.InDelta(t, 35, score, 1e-9)
}

func TestHeuristicVitalsScoring(t *testing.T) {
	m := newTestHeuristic()

	tests := []struct {
		name   string
		mutate func(*domain.PatientSnapshot)
		points float64
	}{
		{"hypertensive crisis", func(p *domain.PatientSnapshot) { p.SystolicBP = 185 }, 20},
		{"stage 2 hypertension", func(p *domain.PatientSnapshot) { p.SystolicBP = 165 }, 14},
		{"elevated diastolic", func(p *domain.PatientSnapshot) { p.DiastolicBP = 92 }, 8},
		{"tachycardia", func(p *domain.PatientSnapshot) { p.HeartRate = 130 }, 8},
		{"bradycardia", func(p *domain.PatientSnapshot) { p.HeartRate = 40 }, 8},
		{"severe obesity", func(p *domain.PatientSnapshot) { p.BMI = 36 }, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := healthySnapshot()
			tt.mutate(p)
			score, factors := m.Score(p)
			assert.InDelta(t, tt.points, score, 1e-9)
			assert.NotEmpty(t, factors)
		})
	}
}

func TestHeuristicLabScoring(t *testing.T) {
	m := newTestHeuristic()

	tests := []struct {
		name   string
		labs   *domain.LabPanel
		points float64
	}{
		{"nil panel", nil, 0},
		{"normal panel", &domain.LabPanel{CreatinineMgDL: 0.9, EGFR: 95, ASTUnitsL: 25, ALTUnitsL: 28, INR: 1.0}, 0},
		{"critical inr", &domain.LabPanel{INR: 4.8}, 15},
		{"supratherapeutic inr", &domain.LabPanel{INR: 3.4}, 8},
		{"severe renal impairment", &domain.LabPanel{EGFR: 25, CreatinineMgDL: 2.4}, 20},
		{"marked transaminitis", &domain.LabPanel{ASTUnitsL: 140}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := healthySnapshot()
			p.Labs = tt.labs
			score, _ := m.Score(p)
			assert.InDelta(t, tt.points, score, 1e-9)
		})
	}
}

func TestHeuristicScoreBounded(t *testing.T) {
	m := newTestHeuristic()

	p := &domain.PatientSnapshot{
		Age:         92,
		BMI:         44,
		SystolicBP:  200,
		DiastolicBP: 120,
		HeartRate:   140,
		Conditions:  []string{"heart failure", "kidney disease", "liver disease", "stroke", "cancer", "copd", "diabetes"},
		Medications: []domain.Medication{
			{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}, {Name: "e"},
			{Name: "f"}, {Name: "g"}, {Name: "h"}, {Name: "i"}, {Name: "j"},
		},
		Smoking:     "current",
		Alcohol:     "heavy",
		Exercise:    "none",
		Labs:        &domain.LabPanel{EGFR: 20, CreatinineMgDL: 3.0, ASTUnitsL: 150, INR: 5.0},
	}

	score, factors := m.Score(p)
	assert.Equal(t, 100.0, score)
	require.NotEmpty(t, factors)
}

func TestEncodeFeatures(t *testing.T) {
	p := &domain.PatientSnapshot{
		Age:         78,
		BMI:         31,
		SystolicBP:  182,
		DiastolicBP: 95,
		HeartRate:   92,
		Conditions:  []string{"Heart Disease", "diabetes"},
		Medications: []domain.Medication{{Name: "warfarin"}, {Name: "metformin"}},
		Smoking:     "current",
		Labs:        &domain.LabPanel{EGFR: 48, INR: 3.2},
	}

	features := encodeFeatures(p)
	require.Len(t, features, FeatureSize)
	for i, f := range features {
		assert.GreaterOrEqual(t, f, 0.0, "feature %d", i)
		assert.LessOrEqual(t, f, 1.0, "feature %d", i)
	}

	// Condition flags tolerate case and whitespace.
	assert.Equal(t, 1.0, features[6])
	assert.Equal(t, 1.0, features[9])
	assert.Equal(t, 1.0, features[10])
}

func TestEncodeFeaturesIgnoresNonFiniteLabs(t *testing.T) {
	p := healthySnapshot()
	p.Labs = &domain.LabPanel{EGFR: 40, INR: 6}
	withLabs := encodeFeatures(p)

	p.Labs.CreatinineMgDL = math.NaN()
	withoutLabs := encodeFeatures(p)

	assert.NotEqual(t, withLabs[13], withoutLabs[13])
	assert.Zero(t, withoutLabs[13])
	assert.Zero(t, withoutLabs[14])
}
