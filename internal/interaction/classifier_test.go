package interaction

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinrisk-ensemble-engine/internal/domain"
	"github.com/clinrisk-ensemble-engine/internal/pharma"
)

func testInteractionConfig() domain.InteractionConfig {
	return domain.InteractionConfig{
		SharedCYPBonus:        2,
		ProteinBindingBonus:   1,
		HepatotoxicityBonus:   1,
		NephrotoxicityBonus:   1,
		QTBonus:               2,
		MAOISerotonergicBonus: 4,
		OpioidBenzoBonus:      3,
		AnticoagAntiplatBonus: 2,
		AnticoagNSAIDBonus:    3,
		MajorThreshold:        5,
		ModerateThreshold:     3,
		MinorThreshold:        1,
	}
}

func testTrainingConfig() domain.TrainingConfig {
	return domain.TrainingConfig{
		Epochs:        600,
		LearningRate:  0.08,
		Seed:          42,
		ProgressEvery: 100,
	}
}

func newTestClassifier(dataset DatasetSource) *Classifier {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewClassifier(logger, pharma.NewStore(), testInteractionConfig(), testTrainingConfig(), dataset)
}

// blockingSource holds the training goroutine at the dataset fetch until
// released, so tests can observe the in-flight state deterministically.
type blockingSource struct {
	release chan struct{}
}

func (b *blockingSource) FetchInteractionPairs(ctx context.Context) ([]LabeledPair, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil, nil
}

func TestPredictFallbackWarfarinAspirin(t *testing.T) {
	c := newTestClassifier(nil)

	pred := c.Predict("Warfarin", "Aspirin")
	assert.Equal(t, domain.INTERACTION_MAJOR, pred.Severity)
	assert.True(t, pred.KnownPair)
	assert.Equal(t, "warfarin", pred.DrugA)
	assert.Equal(t, "aspirin", pred.DrugB)
	assert.NotEmpty(t, pred.Rationale)
	assert.InDelta(t, 75, pred.Confidence, 1e-9)
}

func TestPredictFallbackRuleTiers(t *testing.T) {
	c := newTestClassifier(nil)

	tests := []struct {
		name     string
		drugA    string
		drugB    string
		severity domain.InteractionSeverity
	}{
		{"maoi with ssri", "phenelzine", "sertraline", domain.INTERACTION_MODERATE},
		{"opioid with benzo", "oxycodone", "diazepam", domain.INTERACTION_MODERATE},
		{"anticoagulant with nsaid", "warfarin", "ibuprofen", domain.INTERACTION_MAJOR},
		{"nephrotoxic overlap only", "aspirin", "metformin", domain.INTERACTION_MINOR},
		{"no signals", "warfarin", "metformin", domain.INTERACTION_NONE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := c.Predict(tt.drugA, tt.drugB)
			assert.Equal(t, tt.severity, pred.Severity)
		})
	}
}

func TestPredictFallbackSymmetric(t *testing.T) {
	c := newTestClassifier(nil)

	drugs := []string{"warfarin", "aspirin", "phenelzine", "sertraline", "oxycodone", "diazepam", "metformin", "unknowndrug"}
	for i := 0; i < len(drugs); i++ {
		for j := i + 1; j < len(drugs); j++ {
			ab := c.Predict(drugs[i], drugs[j])
			ba := c.Predict(drugs[j], drugs[i])
			assert.Equal(t, ab.Severity, ba.Severity, "%s vs %s", drugs[i], drugs[j])
			assert.Equal(t, ab.Confidence, ba.Confidence, "%s vs %s", drugs[i], drugs[j])
		}
	}
}

func TestPredictUnknownDrugsAnswerConservatively(t *testing.T) {
	c := newTestClassifier(nil)

	pred := c.Predict("madeupicillin", "fakezepam")
	assert.Equal(t, domain.INTERACTION_NONE, pred.Severity)
	assert.False(t, pred.KnownPair)
	// Uncataloged pairs answer with reduced confidence, never an error.
	assert.InDelta(t, 35, pred.Confidence, 1e-9)
}

func TestPredictProbabilitiesSumToHundred(t *testing.T) {
	c := newTestClassifier(nil)

	for _, pair := range [][2]string{{"warfarin", "aspirin"}, {"warfarin", "metformin"}, {"aspirin", "metformin"}} {
		pred := c.Predict(pair[0], pair[1])
		require.Len(t, pred.Probabilities, len(domain.InteractionSeverities))
		var sum float64
		for _, p := range pred.Probabilities {
			sum += p
		}
		assert.InDelta(t, 100, sum, 1e-6, "%v", pair)
	}
}

func TestPredictBatch(t *testing.T) {
	c := newTestClassifier(nil)

	t.Run("fewer than two drugs", func(t *testing.T) {
		assert.Empty(t, c.PredictBatch(nil))
		assert.Empty(t, c.PredictBatch([]string{"warfarin"}))
	})

	t.Run("filters none and sorts by severity", func(t *testing.T) {
		predictions := c.PredictBatch([]string{"warfarin", "aspirin", "metformin"})
		require.Len(t, predictions, 2)
		assert.Equal(t, domain.INTERACTION_MAJOR, predictions[0].Severity)
		assert.Equal(t, domain.INTERACTION_MINOR, predictions[1].Severity)
		for i := 1; i < len(predictions); i++ {
			assert.GreaterOrEqual(t,
				predictions[i-1].Severity.Rank(),
				predictions[i].Severity.Rank())
		}
	})
}

func TestTrainSecondCallFailsFast(t *testing.T) {
	source := &blockingSource{release: make(chan struct{})}
	c := newTestClassifier(source)

	events, err := c.Train(context.Background())
	require.NoError(t, err)
	assert.True(t, c.Lifecycle().IsTraining())

	_, err = c.Train(context.Background())
	assert.ErrorIs(t, err, domain.ErrTrainingInProgress)

	close(source.release)
	for range events {
	}
	assert.True(t, c.Lifecycle().IsTrained())
}

func TestTrainPublishesNetworkAndProgress(t *testing.T) {
	c := newTestClassifier(nil)

	events, err := c.Train(context.Background())
	require.NoError(t, err)

	var collected []domain.ProgressEvent
	for ev := range events {
		collected = append(collected, ev)
	}

	require.True(t, c.Lifecycle().IsTrained())
	require.NotEmpty(t, collected)

	// Events arrive in epoch order and end at the final epoch.
	for i := 1; i < len(collected); i++ {
		assert.Greater(t, collected[i].Epoch, collected[i-1].Epoch)
	}
	last := collected[len(collected)-1]
	assert.Equal(t, testTrainingConfig().Epochs, last.Epoch)
	assert.Less(t, last.Loss, 0.9)

	// The trained path now answers with a learned distribution.
	pred := c.Predict("warfarin", "aspirin")
	require.Len(t, pred.Probabilities, len(domain.InteractionSeverities))
	assert.Contains(t, pred.Rationale, "learned")
}

func TestTrainCancelledContext(t *testing.T) {
	c := newTestClassifier(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events, err := c.Train(ctx)
	require.NoError(t, err)
	for range events {
	}

	require.NoError(t, waitForState(c, domain.STATE_ERROR))
	err = c.Lifecycle().WaitUntilTrained(context.Background(), time.Second)
	assert.ErrorIs(t, err, domain.ErrTrainingFailed)

	// The fallback still answers after a failed run.
	pred := c.Predict("warfarin", "aspirin")
	assert.Equal(t, domain.INTERACTION_MAJOR, pred.Severity)
}

// waitForState polls the lifecycle until it leaves the training state.
func waitForState(c *Classifier, want domain.TrainingState) error {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Lifecycle().State() == want {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return context.DeadlineExceeded
}

func TestTrainingSetSymmetricAndDeterministic(t *testing.T) {
	store := pharma.NewStore()

	features, classes := trainingSet(store, nil)
	require.NotEmpty(t, features)
	require.Len(t, classes, len(features))
	// Both orderings of every pair are present.
	assert.Equal(t, len(bundledPairs)*2, len(features))

	featuresAgain, classesAgain := trainingSet(store, nil)
	assert.Equal(t, features, featuresAgain)
	assert.Equal(t, classes, classesAgain)
}

func TestPairKeyOrderIndependent(t *testing.T) {
	assert.Equal(t, pairKey("warfarin", "aspirin"), pairKey("aspirin", "warfarin"))
	assert.Equal(t, pairKey("Warfarin 5mg", "aspirin"), pairKey("aspirin", "warfarin"))
}
