package interaction

import (
	"fmt"
	"strings"

	"github.com/clinrisk-ensemble-engine/internal/domain"
	"github.com/clinrisk-ensemble-engine/internal/pharma"
)

// fallbackResult carries the deterministic rule score and the reasons
// that produced it.
type fallbackResult struct {
	score    int
	severity domain.InteractionSeverity
	reasons  []string
}

// scoreFallback applies the rule-based interaction score used whenever
// the classifier is untrained or errored. The rules are symmetric in
// the two profiles, so predict(a,b) and predict(b,a) agree by
// construction.
func scoreFallback(cfg domain.InteractionConfig, a, b domain.DrugProfile) fallbackResult {
	var r fallbackResult

	if a.CYPPathway != pharma.CYPUnknown && a.CYPPathway == b.CYPPathway && a.CYPPathway != pharma.RenalRoute {
		r.score += cfg.SharedCYPBonus
		r.reasons = append(r.reasons, fmt.Sprintf("shared %s metabolism", strings.ToUpper(a.CYPPathway)))
	}
	if a.ProteinBinding > 0.9 && b.ProteinBinding > 0.9 {
		r.score += cfg.ProteinBindingBonus
		r.reasons = append(r.reasons, "both highly protein-bound, displacement risk")
	}
	if a.Hepatotoxicity+b.Hepatotoxicity > 0.5 {
		r.score += cfg.HepatotoxicityBonus
		r.reasons = append(r.reasons, "combined hepatotoxic burden")
	}
	if a.Nephrotoxicity+b.Nephrotoxicity > 0.5 {
		r.score += cfg.NephrotoxicityBonus
		r.reasons = append(r.reasons, "combined nephrotoxic burden")
	}
	if a.QTRisk+b.QTRisk > 0.4 {
		r.score += cfg.QTBonus
		r.reasons = append(r.reasons, "additive QT prolongation risk")
	}

	if bonus, reason := classPairBonus(cfg, a.Class, b.Class); bonus > 0 {
		r.score += bonus
		r.reasons = append(r.reasons, reason)
	}

	r.severity = severityForScore(cfg, r.score)
	return r
}

// classPairBonus scores the documented dangerous class combinations,
// order-independently.
func classPairBonus(cfg domain.InteractionConfig, classA, classB string) (int, string) {
	has := func(x, y string) bool {
		return (classA == x && classB == y) || (classA == y && classB == x)
	}
	switch {
	case has(pharma.ClassMAOI, pharma.ClassSerotonergic):
		return cfg.MAOISerotonergicBonus, "MAOI with serotonergic agent, serotonin syndrome risk"
	case has(pharma.ClassOpioid, pharma.ClassBenzodiazepine):
		return cfg.OpioidBenzoBonus, "opioid with benzodiazepine, respiratory depression risk"
	case has(pharma.ClassAnticoagulant, pharma.ClassNSAID):
		return cfg.AnticoagNSAIDBonus, "anticoagulant with NSAID, bleeding risk"
	case has(pharma.ClassAnticoagulant, pharma.ClassAntiplatelet):
		return cfg.AnticoagAntiplatBonus, "anticoagulant with antiplatelet, bleeding risk"
	default:
		return 0, ""
	}
}

// severityForScore maps the rule score onto the four classes using the
// configured thresholds.
func severityForScore(cfg domain.InteractionConfig, score int) domain.InteractionSeverity {
	switch {
	case score >= cfg.MajorThreshold:
		return domain.INTERACTION_MAJOR
	case score >= cfg.ModerateThreshold:
		return domain.INTERACTION_MODERATE
	case score >= cfg.MinorThreshold:
		return domain.INTERACTION_MINOR
	default:
		return domain.INTERACTION_NONE
	}
}

// fallbackProbabilities spreads probability mass around the rule-chosen
// class so the fallback answers in the same shape as the trained
// classifier.
func fallbackProbabilities(severity domain.InteractionSeverity) map[domain.InteractionSeverity]float64 {
	probs := make(map[domain.InteractionSeverity]float64, len(domain.InteractionSeverities))
	chosen := severity.Rank()
	for _, s := range domain.InteractionSeverities {
		switch distance(s.Rank(), chosen) {
		case 0:
			probs[s] = 70
		case 1:
			probs[s] = 12.5
		default:
			probs[s] = 2.5
		}
	}
	// Renormalize to ~100 regardless of how many adjacent classes exist.
	var sum float64
	for _, p := range probs {
		sum += p
	}
	for s, p := range probs {
		probs[s] = p / sum * 100
	}
	return probs
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
