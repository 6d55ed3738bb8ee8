// Package interaction implements the pairwise drug-interaction
// classifier: a trainable four-class network over encoded drug-pair
// features with a deterministic rule-based fallback that keeps the
// predict contract available in every lifecycle state.
package interaction

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/clinrisk-ensemble-engine/internal/domain"
	"github.com/clinrisk-ensemble-engine/internal/model"
	"github.com/clinrisk-ensemble-engine/internal/neural"
	"github.com/clinrisk-ensemble-engine/internal/pharma"
)

const (
	classifierName = "interaction-classifier"
	hiddenUnits    = 12
	// convergenceLoss is the mean cross-entropy below which a run is
	// considered converged.
	convergenceLoss = 0.9
)

// DatasetSource supplies supplementary labeled pairs at training time.
// A nil source or a failing fetch never blocks training; the bundled
// dataset always suffices.
type DatasetSource interface {
	FetchInteractionPairs(ctx context.Context) ([]LabeledPair, error)
}

// Classifier predicts the interaction severity of drug pairs.
type Classifier struct {
	logger    *logrus.Logger
	store     *pharma.Store
	cfg       domain.InteractionConfig
	training  domain.TrainingConfig
	lifecycle *model.Lifecycle
	dataset   DatasetSource

	mu  sync.RWMutex
	net *neural.Network
}

// NewClassifier creates an untrained classifier. dataset may be nil.
func NewClassifier(logger *logrus.Logger, store *pharma.Store, cfg domain.InteractionConfig, training domain.TrainingConfig, dataset DatasetSource) *Classifier {
	return &Classifier{
		logger:    logger,
		store:     store,
		cfg:       cfg,
		training:  training,
		lifecycle: model.NewLifecycle(classifierName, logger),
		dataset:   dataset,
	}
}

// Lifecycle exposes the training state handle for poll-await callers.
func (c *Classifier) Lifecycle() *model.Lifecycle {
	return c.lifecycle
}

// Predict classifies one drug pair. Unknown drug names resolve to the
// neutral default profile; the classifier never refuses to answer.
func (c *Classifier) Predict(drugA, drugB string) domain.InteractionPrediction {
	profileA, knownA := c.store.Lookup(drugA)
	profileB, knownB := c.store.Lookup(drugB)
	nameA := pharma.NormalizeDrugName(drugA)
	nameB := pharma.NormalizeDrugName(drugB)
	_, knownPair := knownPairIndex[pairKey(nameA, nameB)]

	if c.lifecycle.IsTrained() {
		if pred, ok := c.predictTrained(nameA, nameB, knownPair); ok {
			return pred
		}
	}
	return c.predictFallback(nameA, nameB, profileA, profileB, knownA && knownB, knownPair)
}

// predictTrained runs the learned network. ok=false routes to the
// fallback if the weights were never published.
func (c *Classifier) predictTrained(nameA, nameB string, knownPair bool) (domain.InteractionPrediction, bool) {
	c.mu.RLock()
	net := c.net
	c.mu.RUnlock()
	if net == nil {
		return domain.InteractionPrediction{}, false
	}

	probs := net.PredictProbs(c.store.PairFeaturesByName(nameA, nameB))

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	dist := make(map[domain.InteractionSeverity]float64, len(probs))
	for i, s := range domain.InteractionSeverities {
		dist[s] = probs[i] * 100
	}

	return domain.InteractionPrediction{
		DrugA:         nameA,
		DrugB:         nameB,
		Severity:      domain.InteractionSeverities[best],
		Probabilities: dist,
		Confidence:    domain.ClampScore(probs[best] * 100),
		KnownPair:     knownPair,
		Rationale:     "learned classification over pharmacological pair features",
	}, true
}

// predictFallback applies the deterministic rule score.
func (c *Classifier) predictFallback(nameA, nameB string, profileA, profileB domain.DrugProfile, bothKnown, knownPair bool) domain.InteractionPrediction {
	result := scoreFallback(c.cfg, profileA, profileB)

	rationale := "no rule-based interaction signals"
	if len(result.reasons) > 0 {
		rationale = strings.Join(result.reasons, "; ")
	}

	// Confidence grows with the rule score but stays modest for pairs
	// containing uncataloged drugs.
	confidence := 50.0 + 5.0*float64(result.score)
	if !bothKnown {
		confidence -= 15
	}

	return domain.InteractionPrediction{
		DrugA:         nameA,
		DrugB:         nameB,
		Severity:      result.severity,
		Probabilities: fallbackProbabilities(result.severity),
		Confidence:    domain.ClampScore(confidence),
		KnownPair:     knownPair,
		Rationale:     rationale,
	}
}

// PredictBatch evaluates every unordered pair in the medication list,
// keeps the non-none predictions and sorts them by descending severity.
// Zero or one drug returns an empty slice.
func (c *Classifier) PredictBatch(drugs []string) []domain.InteractionPrediction {
	predictions := []domain.InteractionPrediction{}
	if len(drugs) < 2 {
		return predictions
	}

	for i := 0; i < len(drugs); i++ {
		for j := i + 1; j < len(drugs); j++ {
			pred := c.Predict(drugs[i], drugs[j])
			if pred.Severity != domain.INTERACTION_NONE {
				predictions = append(predictions, pred)
			}
		}
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		if predictions[i].Severity.Rank() != predictions[j].Severity.Rank() {
			return predictions[i].Severity.Rank() > predictions[j].Severity.Rank()
		}
		return predictions[i].Confidence > predictions[j].Confidence
	})
	return predictions
}

// Train fits the network on the bundled pairs, optionally extended by
// the supplementary dataset. It returns immediately with an ordered
// progress stream; the channel closes when the run finishes. A second
// call while a run is in flight fails fast with ErrTrainingInProgress.
func (c *Classifier) Train(ctx context.Context) (<-chan domain.ProgressEvent, error) {
	finish, err := c.lifecycle.Begin()
	if err != nil {
		return nil, err
	}

	every := c.training.ProgressEvery
	if every <= 0 {
		every = 1
	}
	events := make(chan domain.ProgressEvent, c.training.Epochs/every+2)

	go func() {
		defer close(events)
		finish(c.runTraining(ctx, events))
	}()
	return events, nil
}

func (c *Classifier) runTraining(ctx context.Context, events chan<- domain.ProgressEvent) error {
	extra := c.fetchSupplementaryPairs(ctx)
	features, classes := trainingSet(c.store, extra)
	if len(features) == 0 {
		return fmt.Errorf("interaction training set is empty: %w", domain.ErrTrainingFailed)
	}

	net := neural.New(pharma.PairFeatureSize, hiddenUnits, len(domain.InteractionSeverities), c.training.Seed)

	every := c.training.ProgressEvery
	if every <= 0 {
		every = 1
	}

	var meanLoss float64
	for epoch := 1; epoch <= c.training.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("interaction training cancelled: %w", err)
		}

		var loss float64
		correct := 0
		for i := range features {
			loss += net.TrainClassification(features[i], classes[i], c.training.LearningRate)
			probs := net.PredictProbs(features[i])
			best := 0
			for k, p := range probs {
				if p > probs[best] {
					best = k
				}
			}
			if best == classes[i] {
				correct++
			}
		}
		meanLoss = loss / float64(len(features))

		if epoch%every == 0 || epoch == c.training.Epochs {
			events <- domain.ProgressEvent{
				Epoch:    epoch,
				Loss:     meanLoss,
				Accuracy: float64(correct) / float64(len(features)),
			}
		}
	}

	if meanLoss > convergenceLoss {
		return fmt.Errorf("final loss %.3f above convergence bound: %w", meanLoss, domain.ErrTrainingFailed)
	}

	c.mu.Lock()
	c.net = net
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"model":     classifierName,
		"examples":  len(features),
		"mean_loss": meanLoss,
	}).Info("Interaction classifier trained")
	return nil
}

// fetchSupplementaryPairs asks the optional dataset source for extra
// examples. Failure is logged and ignored; training proceeds on the
// bundled set.
func (c *Classifier) fetchSupplementaryPairs(ctx context.Context) []LabeledPair {
	if c.dataset == nil {
		return nil
	}
	pairs, err := c.dataset.FetchInteractionPairs(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("Supplementary interaction dataset unavailable, using bundled set")
		return nil
	}
	return pairs
}
