// Package service hosts the ensemble aggregator: it fans out to every
// sub-model over one immutable patient snapshot, renormalizes weights
// over the available subset, and reconciles the results into a single
// consensus assessment. One dangerous deterministic signal always
// outranks the numeric average.
package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/clinrisk-ensemble-engine/internal/allergy"
	"github.com/clinrisk-ensemble-engine/internal/domain"
	"github.com/clinrisk-ensemble-engine/internal/interaction"
	"github.com/clinrisk-ensemble-engine/internal/nlp"
	"github.com/clinrisk-ensemble-engine/internal/risk"
)

// Sub-model names as reported in EnsembleRiskResult.SubModels.
const (
	SubModelHeuristic   = "heuristic"
	SubModelNeural      = "neural"
	SubModelComplaint   = "complaint"
	SubModelInteraction = "interaction"
	SubModelLabs        = "labs"
)

// EnsembleService orchestrates the sub-models into one consensus risk
// assessment.
type EnsembleService struct {
	logger     *logrus.Logger
	cfg        domain.RiskConfig
	heuristic  *risk.HeuristicModel
	neural     *risk.NeuralModel
	analyzer   *nlp.Analyzer
	classifier *interaction.Classifier
	allergies  *allergy.Engine
}

// NewEnsembleService wires the aggregator to its sub-models.
func NewEnsembleService(
	logger *logrus.Logger,
	cfg domain.RiskConfig,
	heuristic *risk.HeuristicModel,
	neural *risk.NeuralModel,
	analyzer *nlp.Analyzer,
	classifier *interaction.Classifier,
	allergies *allergy.Engine,
) *EnsembleService {
	return &EnsembleService{
		logger:     logger,
		cfg:        cfg,
		heuristic:  heuristic,
		neural:     neural,
		analyzer:   analyzer,
		classifier: classifier,
		allergies:  allergies,
	}
}

// subModelOutcome collects one fan-out slot before aggregation.
type subModelOutcome struct {
	score        domain.SubModelScore
	analysis     *domain.ComplaintAnalysis
	interactions []domain.InteractionPrediction
	allergy      domain.AllergyReport
}

// ComputeRisk runs the full ensemble over one snapshot. It always
// returns a best-effort result: a sub-model failing on its slice of the
// snapshot is marked unavailable with zero weight and excluded, never
// propagated. Fewer models, still an answer.
func (s *EnsembleService) ComputeRisk(ctx context.Context, snapshot *domain.PatientSnapshot) (*domain.EnsembleRiskResult, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("patient snapshot is required")
	}
	snapshot.ApplyDefaults()
	start := time.Now()

	medications := snapshot.MedicationNames()

	outcomes := make([]subModelOutcome, 6)
	var wg sync.WaitGroup
	run := func(slot int, name string, fn func(*subModelOutcome)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// A sub-model choking on malformed input is recovered here
			// and reported as unavailable; the aggregate never aborts.
			defer func() {
				if r := recover(); r != nil {
					s.logger.WithFields(logrus.Fields{
						"sub_model": name,
						"panic":     r,
					}).Warn("Sub-model failed, excluding from ensemble")
					outcomes[slot].score = domain.SubModelScore{
						Name:      name,
						Available: false,
						Details:   fmt.Sprintf("excluded: %v", r),
					}
				}
			}()
			fn(&outcomes[slot])
		}()
	}

	run(0, SubModelHeuristic, func(o *subModelOutcome) {
		score, factors := s.heuristic.Score(snapshot)
		o.score = domain.SubModelScore{
			Name:      SubModelHeuristic,
			Score:     score,
			Weight:    s.cfg.HeuristicWeight,
			Available: true,
			Details:   summarizeFactors(factors),
		}
	})

	run(1, SubModelNeural, func(o *subModelOutcome) {
		score, usedFallback := s.neural.Score(snapshot)
		if usedFallback {
			// The fallback answers with the heuristic score; it carries a
			// reduced weight and is reported unavailable so consumers see
			// the degradation.
			o.score = domain.SubModelScore{
				Name:      SubModelNeural,
				Score:     score,
				Weight:    s.cfg.NeuralFallbackWeight,
				Available: false,
				Details:   "untrained, heuristic fallback",
			}
			return
		}
		o.score = domain.SubModelScore{
			Name:      SubModelNeural,
			Score:     score,
			Weight:    s.cfg.NeuralWeight,
			Available: true,
			Details:   "trained regression network",
		}
	})

	run(2, SubModelComplaint, func(o *subModelOutcome) {
		if snapshot.ChiefComplaint == "" {
			o.score = domain.SubModelScore{Name: SubModelComplaint, Available: false, Details: "no chief complaint supplied"}
			return
		}
		analysis := s.analyzer.Analyze(snapshot.ChiefComplaint)
		o.analysis = &analysis
		o.score = domain.SubModelScore{
			Name:      SubModelComplaint,
			Score:     complaintScore(&analysis),
			Weight:    s.cfg.ComplaintWeight,
			Available: true,
			Details:   fmt.Sprintf("acuity %s, %d symptoms", analysis.Acuity, len(analysis.Symptoms)),
		}
	})

	run(3, SubModelInteraction, func(o *subModelOutcome) {
		if len(medications) < 2 {
			o.score = domain.SubModelScore{Name: SubModelInteraction, Available: false, Details: "fewer than two medications"}
			return
		}
		o.interactions = s.classifier.PredictBatch(medications)
		o.score = domain.SubModelScore{
			Name:      SubModelInteraction,
			Score:     interactionScore(o.interactions),
			Weight:    s.cfg.InteractionWeight,
			Available: true,
			Details:   fmt.Sprintf("%d predicted interactions", len(o.interactions)),
		}
	})

	run(4, SubModelLabs, func(o *subModelOutcome) {
		switch {
		case snapshot.Labs == nil:
			o.score = domain.SubModelScore{Name: SubModelLabs, Available: false, Details: "no labs supplied"}
		case !snapshot.Labs.IsFinite():
			o.score = domain.SubModelScore{Name: SubModelLabs, Available: false, Details: "excluded: non-finite lab value"}
		default:
			flags := labFlags(snapshot.Labs)
			o.score = domain.SubModelScore{
				Name:      SubModelLabs,
				Score:     worstFlagScore(flags),
				Weight:    s.cfg.LabWeight,
				Available: true,
				Details:   fmt.Sprintf("%d lab findings", len(flags)),
			}
		}
	})

	run(5, "allergy", func(o *subModelOutcome) {
		o.allergy = s.allergies.Check(snapshot.Allergies, medications)
	})

	wg.Wait()

	subModels := []domain.SubModelScore{
		outcomes[0].score, outcomes[1].score, outcomes[2].score,
		outcomes[3].score, outcomes[4].score,
	}
	analysis := outcomes[2].analysis
	interactions := outcomes[3].interactions
	if interactions == nil {
		interactions = []domain.InteractionPrediction{}
	}

	overall, available := weightedAverage(subModels)
	interval, confidence := s.interval(overall, subModels, available)

	flags := s.collectFlags(snapshot, analysis, interactions, outcomes[5].allergy)

	level := s.cfg.RiskLevelForScore(overall)
	if hasCriticalFlag(flags) {
		// Critical override: one dangerous deterministic signal outranks
		// the weighted average.
		level = domain.MaxRiskLevel(level, domain.RISK_HIGH)
	}

	result := &domain.EnsembleRiskResult{
		AssessmentID:          uuid.NewString(),
		OverallScore:          overall,
		RiskLevel:             level,
		ConfidenceInterval:    interval,
		EnsembleConfidence:    confidence,
		SubModels:             subModels,
		Flags:                 flags,
		PredictedInteractions: interactions,
		Differentials:         differentialsOf(analysis),
		ComplaintAnalysis:     analysis,
		Timestamp:             time.Now().UTC(),
	}

	s.logger.WithFields(logrus.Fields{
		"assessment_id":   result.AssessmentID,
		"overall_score":   math.Round(result.OverallScore*10) / 10,
		"risk_level":      result.RiskLevel.String(),
		"available":       available,
		"flags":           len(result.Flags),
		"processing_time": time.Since(start),
	}).Info("Ensemble risk computed")

	return result, nil
}

// weightedAverage averages the available sub-models with their weights
// renormalized over the available subset only. Unavailable models
// never dilute the denominator.
func weightedAverage(subModels []domain.SubModelScore) (float64, int) {
	var weightSum, scoreSum float64
	available := 0
	for _, sm := range subModels {
		if !sm.Available || sm.Weight <= 0 {
			continue
		}
		weightSum += sm.Weight
		scoreSum += sm.Weight * sm.Score
		available++
	}
	if weightSum == 0 {
		// Every scored source failed; fall back to whatever score the
		// heuristic slot carries so the contract still holds.
		return domain.ClampScore(subModels[0].Score), 0
	}
	return domain.ClampScore(scoreSum / weightSum), available
}

// interval widens with disagreement between available sub-models and
// narrows as more independent sources agree.
func (s *EnsembleService) interval(overall float64, subModels []domain.SubModelScore, available int) (domain.ConfidenceInterval, float64) {
	if available <= 1 {
		return domain.ConfidenceInterval{
			Low:  domain.ClampScore(overall - 15),
			High: domain.ClampScore(overall + 15),
		}, 40
	}

	var sumSq float64
	for _, sm := range subModels {
		if !sm.Available || sm.Weight <= 0 {
			continue
		}
		diff := sm.Score - overall
		sumSq += diff * diff
	}
	spread := math.Sqrt(sumSq / float64(available))

	half := 4 + 1.6*spread/math.Sqrt(float64(available))
	interval := domain.ConfidenceInterval{
		Low:  domain.ClampScore(overall - half),
		High: domain.ClampScore(overall + half),
	}

	confidence := domain.ClampScore(35 + 12*float64(available) - 0.9*spread)
	return interval, confidence
}

// collectFlags gathers categorized flags from every source.
func (s *EnsembleService) collectFlags(
	snapshot *domain.PatientSnapshot,
	analysis *domain.ComplaintAnalysis,
	interactions []domain.InteractionPrediction,
	allergyReport domain.AllergyReport,
) []domain.Flag {
	flags := []domain.Flag{}
	flags = append(flags, vitalsFlags(snapshot)...)
	flags = append(flags, polypharmacyFlag(snapshot)...)
	flags = append(flags, labFlags(snapshot.Labs)...)
	flags = append(flags, complaintFlags(analysis)...)
	flags = append(flags, interactionFlags(interactions)...)
	flags = append(flags, allergyFlags(allergyReport)...)
	return flags
}

func hasCriticalFlag(flags []domain.Flag) bool {
	for _, f := range flags {
		if f.Severity == domain.FLAG_CRITICAL {
			return true
		}
	}
	return false
}

// complaintScore maps the analyzer output onto the ensemble scale.
func complaintScore(analysis *domain.ComplaintAnalysis) float64 {
	var base float64
	switch analysis.Acuity {
	case domain.ACUITY_EMERGENT:
		base = 90
	case domain.ACUITY_URGENT:
		base = 70
	case domain.ACUITY_SEMI_URGENT:
		base = 45
	default:
		base = 15
	}
	bonus := 5 * float64(len(analysis.RedFlags))
	if bonus > 10 {
		bonus = 10
	}
	return domain.ClampScore(base + bonus)
}

// interactionScore maps the worst predicted interaction onto the
// ensemble scale.
func interactionScore(predictions []domain.InteractionPrediction) float64 {
	worst := domain.INTERACTION_NONE
	for _, p := range predictions {
		if p.Severity.Rank() > worst.Rank() {
			worst = p.Severity
		}
	}
	switch worst {
	case domain.INTERACTION_MAJOR:
		return 85
	case domain.INTERACTION_MODERATE:
		return 60
	case domain.INTERACTION_MINOR:
		return 35
	default:
		return 10
	}
}

func differentialsOf(analysis *domain.ComplaintAnalysis) []domain.Differential {
	if analysis == nil {
		return []domain.Differential{}
	}
	return analysis.Differentials
}

// summarizeFactors keeps sub-model details readable: the first few
// contributing factors with a count of the remainder.
func summarizeFactors(factors []string) string {
	if len(factors) == 0 {
		return "no elevated risk factors"
	}
	if len(factors) <= 3 {
		return joinFactors(factors)
	}
	return fmt.Sprintf("%s and %d more", joinFactors(factors[:3]), len(factors)-3)
}

func joinFactors(factors []string) string {
	out := factors[0]
	for _, f := range factors[1:] {
		out += "; " + f
	}
	return out
}
