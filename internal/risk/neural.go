package risk

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/clinrisk-ensemble-engine/internal/domain"
	"github.com/clinrisk-ensemble-engine/internal/model"
	"github.com/clinrisk-ensemble-engine/internal/neural"
)

const (
	neuralModelName = "neural-risk-model"
	neuralHidden    = 10
	// convergenceMSE is the mean squared error (on the 0..1 scale) below
	// which a run is considered converged.
	convergenceMSE = 0.02
)

// RiskExample is one training row: a snapshot with its target risk
// score on the [0,100] scale.
type RiskExample struct {
	Snapshot domain.PatientSnapshot `json:"snapshot"`
	Target   float64                `json:"target"`
}

// DatasetSource supplies supplementary cohort rows at training time.
// A nil source or a failing fetch never blocks training.
type DatasetSource interface {
	FetchRiskExamples(ctx context.Context) ([]RiskExample, error)
}

// NeuralModel is the trainable risk regressor. While untrained or
// errored it answers with the heuristic score so the ensemble contract
// never breaks; the fallback is reported through the lifecycle state.
type NeuralModel struct {
	logger    *logrus.Logger
	heuristic *HeuristicModel
	training  domain.TrainingConfig
	lifecycle *model.Lifecycle
	dataset   DatasetSource

	mu  sync.RWMutex
	net *neural.Network
}

// NewNeuralModel creates an untrained regressor. dataset may be nil.
func NewNeuralModel(logger *logrus.Logger, heuristic *HeuristicModel, training domain.TrainingConfig, dataset DatasetSource) *NeuralModel {
	return &NeuralModel{
		logger:    logger,
		heuristic: heuristic,
		training:  training,
		lifecycle: model.NewLifecycle(neuralModelName, logger),
		dataset:   dataset,
	}
}

// Lifecycle exposes the training state handle for poll-await callers.
func (m *NeuralModel) Lifecycle() *model.Lifecycle {
	return m.lifecycle
}

// Score predicts the risk score for one snapshot. usedFallback reports
// whether the heuristic answered in place of the network.
func (m *NeuralModel) Score(p *domain.PatientSnapshot) (score float64, usedFallback bool) {
	if m.lifecycle.IsTrained() {
		m.mu.RLock()
		net := m.net
		m.mu.RUnlock()
		if net != nil {
			return domain.ClampScore(net.PredictScalar(encodeFeatures(p)) * 100), false
		}
	}
	score, _ = m.heuristic.Score(p)
	return score, true
}

// Train fits the regressor on the bundled cohort, optionally extended
// by the supplementary dataset, and returns an ordered progress stream.
// A second call while a run is in flight fails fast.
func (m *NeuralModel) Train(ctx context.Context) (<-chan domain.ProgressEvent, error) {
	finish, err := m.lifecycle.Begin()
	if err != nil {
		return nil, err
	}

	every := m.training.ProgressEvery
	if every <= 0 {
		every = 1
	}
	events := make(chan domain.ProgressEvent, m.training.Epochs/every+2)

	go func() {
		defer close(events)
		finish(m.runTraining(ctx, events))
	}()
	return events, nil
}

func (m *NeuralModel) runTraining(ctx context.Context, events chan<- domain.ProgressEvent) error {
	examples := m.cohort(ctx)
	if len(examples) == 0 {
		return fmt.Errorf("risk training cohort is empty: %w", domain.ErrTrainingFailed)
	}

	features := make([][]float64, len(examples))
	targets := make([]float64, len(examples))
	for i, ex := range examples {
		snapshot := ex.Snapshot
		snapshot.ApplyDefaults()
		features[i] = encodeFeatures(&snapshot)
		targets[i] = domain.ClampScore(ex.Target) / 100
	}

	net := neural.New(FeatureSize, neuralHidden, 1, m.training.Seed)

	every := m.training.ProgressEvery
	if every <= 0 {
		every = 1
	}

	var meanLoss float64
	for epoch := 1; epoch <= m.training.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("risk training cancelled: %w", err)
		}

		var loss float64
		for i := range features {
			loss += net.TrainRegression(features[i], targets[i], m.training.LearningRate)
		}
		meanLoss = loss / float64(len(features))

		if epoch%every == 0 || epoch == m.training.Epochs {
			events <- domain.ProgressEvent{Epoch: epoch, Loss: meanLoss}
		}
	}

	if meanLoss > convergenceMSE {
		return fmt.Errorf("final loss %.4f above convergence bound: %w", meanLoss, domain.ErrTrainingFailed)
	}

	m.mu.Lock()
	m.net = net
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"model":     neuralModelName,
		"examples":  len(examples),
		"mean_loss": meanLoss,
	}).Info("Neural risk model trained")
	return nil
}

// cohort assembles the training rows: the bundled cohort labeled by the
// heuristic scorer, plus whatever the supplementary source offers.
// Fetch failure is logged and ignored.
func (m *NeuralModel) cohort(ctx context.Context) []RiskExample {
	examples := make([]RiskExample, 0, len(bundledCohort)+16)
	for _, snapshot := range bundledCohort {
		s := snapshot
		s.ApplyDefaults()
		target, _ := m.heuristic.Score(&s)
		examples = append(examples, RiskExample{Snapshot: s, Target: target})
	}

	if m.dataset != nil {
		extra, err := m.dataset.FetchRiskExamples(ctx)
		if err != nil {
			m.logger.WithError(err).Warn("Supplementary risk cohort unavailable, using bundled cohort")
		} else {
			examples = append(examples, extra...)
		}
	}
	return examples
}
