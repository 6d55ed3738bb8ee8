// Package setup wires the ensemble engine together from configuration:
// one shared logger, the static reference stores, the trainable models
// and the aggregator. Application code builds the engine once at
// startup and reuses it for every assessment.
package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/clinrisk-ensemble-engine/internal/allergy"
	"github.com/clinrisk-ensemble-engine/internal/config"
	"github.com/clinrisk-ensemble-engine/internal/interaction"
	"github.com/clinrisk-ensemble-engine/internal/nlp"
	"github.com/clinrisk-ensemble-engine/internal/pharma"
	"github.com/clinrisk-ensemble-engine/internal/risk"
	"github.com/clinrisk-ensemble-engine/internal/service"
	"github.com/clinrisk-ensemble-engine/pkg/trainingdata"
)

// Engine bundles the wired components handed to application code.
type Engine struct {
	Logger     *logrus.Logger
	Store      *pharma.Store
	Allergy    *allergy.Engine
	Analyzer   *nlp.Analyzer
	Classifier *interaction.Classifier
	Heuristic  *risk.HeuristicModel
	Neural     *risk.NeuralModel
	Ensemble   *service.EnsembleService
}

// Build constructs the engine from a loaded configuration manager.
func Build(manager *config.Manager) (*Engine, error) {
	if err := manager.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}
	cfg := manager.GetConfig()
	logger := manager.NewLogger()

	store := pharma.NewStore()

	// The dataset client is optional infrastructure; both trainable
	// models accept a nil source and train on bundled data alone.
	var interactionSource interaction.DatasetSource
	var riskSource risk.DatasetSource
	if cfg.Dataset.Enabled {
		client, err := trainingdata.NewClient(cfg.Dataset, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create dataset client: %w", err)
		}
		interactionSource = client
		riskSource = client
	}

	heuristic := risk.NewHeuristicModel(logger)
	neural := risk.NewNeuralModel(logger, heuristic, cfg.Training, riskSource)
	classifier := interaction.NewClassifier(logger, store, cfg.Interaction, cfg.Training, interactionSource)
	analyzer := nlp.NewAnalyzer(logger, cfg.Complaint)
	allergyEngine := allergy.NewEngine(logger, store)

	return &Engine{
		Logger:     logger,
		Store:      store,
		Allergy:    allergyEngine,
		Analyzer:   analyzer,
		Classifier: classifier,
		Heuristic:  heuristic,
		Neural:     neural,
		Ensemble: service.NewEnsembleService(
			logger, cfg.Risk, heuristic, neural, analyzer, classifier, allergyEngine,
		),
	}, nil
}
