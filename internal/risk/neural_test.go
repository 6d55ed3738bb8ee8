package risk

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinrisk-ensemble-engine/internal/domain"
)

func newTestNeuralModel(dataset DatasetSource) *NeuralModel {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	heuristic := NewHeuristicModel(logger)
	training := domain.TrainingConfig{
		Epochs:        2000,
		LearningRate:  0.15,
		Seed:          42,
		ProgressEvery: 250,
	}
	return NewNeuralModel(logger, heuristic, training, dataset)
}

// failingSource always errors; training must still succeed on the
// bundled cohort.
type failingSource struct{}

func (failingSource) FetchRiskExamples(ctx context.Context) ([]RiskExample, error) {
	return nil, errors.New("dataset endpoint unreachable")
}

func TestNeuralUntrainedFallsBackToHeuristic(t *testing.T) {
	m := newTestNeuralModel(nil)
	heuristic := NewHeuristicModel(m.logger)

	p := &domain.PatientSnapshot{
		Age:        70,
		BMI:        31,
		SystolicBP: 165,
		Conditions: []string{"diabetes"},
	}

	score, usedFallback := m.Score(p)
	assert.True(t, usedFallback)
	want, _ := heuristic.Score(p)
	assert.Equal(t, want, score)
	assert.Equal(t, domain.STATE_UNTRAINED, m.Lifecycle().State())
}

func TestNeuralTrainingPublishesNetwork(t *testing.T) {
	m := newTestNeuralModel(nil)

	events, err := m.Train(context.Background())
	require.NoError(t, err)

	var lastEpoch int
	for ev := range events {
		assert.Greater(t, ev.Epoch, lastEpoch)
		lastEpoch = ev.Epoch
	}
	require.True(t, m.Lifecycle().IsTrained())

	p := &domain.PatientSnapshot{Age: 30, BMI: 23, SystolicBP: 118, DiastolicBP: 76, HeartRate: 68}
	score, usedFallback := m.Score(p)
	assert.False(t, usedFallback)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestNeuralTrainedApproximatesHeuristicOrdering(t *testing.T) {
	m := newTestNeuralModel(nil)

	events, err := m.Train(context.Background())
	require.NoError(t, err)
	for range events {
	}
	require.True(t, m.Lifecycle().IsTrained())

	healthy := &domain.PatientSnapshot{Age: 25, BMI: 22, SystolicBP: 115, DiastolicBP: 74, HeartRate: 66}
	sick := &domain.PatientSnapshot{
		Age:         82,
		BMI:         33,
		SystolicBP:  178,
		DiastolicBP: 102,
		HeartRate:   95,
		Conditions:  []string{"heart failure", "kidney disease", "diabetes"},
		Medications: []domain.Medication{
			{Name: "furosemide"}, {Name: "lisinopril"}, {Name: "metformin"},
			{Name: "aspirin"}, {Name: "atorvastatin"},
		},
		Smoking: "current",
		Labs:    &domain.LabPanel{CreatinineMgDL: 2.1, EGFR: 30},
	}

	low, _ := m.Score(healthy)
	high, _ := m.Score(sick)
	assert.Greater(t, high, low)
}

func TestNeuralSecondTrainFailsFast(t *testing.T) {
	m := newTestNeuralModel(nil)

	events, err := m.Train(context.Background())
	require.NoError(t, err)

	if _, err := m.Train(context.Background()); err != nil {
		assert.ErrorIs(t, err, domain.ErrTrainingInProgress)
	}
	for range events {
	}
}

func TestNeuralTrainingSurvivesDatasetFailure(t *testing.T) {
	m := newTestNeuralModel(failingSource{})

	events, err := m.Train(context.Background())
	require.NoError(t, err)
	for range events {
	}
	assert.True(t, m.Lifecycle().IsTrained())
}

func TestNeuralCancelledTrainingKeepsFallback(t *testing.T) {
	m := newTestNeuralModel(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events, err := m.Train(ctx)
	require.NoError(t, err)
	for range events {
	}

	err = m.Lifecycle().WaitUntilTrained(context.Background(), time.Second)
	assert.ErrorIs(t, err, domain.ErrTrainingFailed)

	p := &domain.PatientSnapshot{Age: 50, SystolicBP: 150}
	_, usedFallback := m.Score(p)
	assert.True(t, usedFallback)
}
