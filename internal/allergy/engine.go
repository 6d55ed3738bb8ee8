// Package allergy implements the cross-reactivity rule engine: it
// matches a patient's documented allergies against candidate drugs and
// raises typed alerts, from direct name matches down to excipient
// exposure. All reference tables load once and are read-only.
package allergy

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/clinrisk-ensemble-engine/internal/domain"
	"github.com/clinrisk-ensemble-engine/internal/pharma"
)

// crossReactiveClasses documents class pairs with a shared allergic
// epitope. Unrelated classes must never be flagged as cross-reactive;
// the conflation of "same class" with true cross-reactivity is owned by
// this reference data, not by the matching logic.
var crossReactiveClasses = map[string][]string{
	pharma.ClassPenicillin:    {pharma.ClassCephalosporin},
	pharma.ClassCephalosporin: {pharma.ClassPenicillin},
	pharma.ClassNSAID:         {pharma.ClassAntiplatelet},
	pharma.ClassAntiplatelet:  {pharma.ClassNSAID},
	pharma.ClassSulfonamide:   {pharma.ClassDiuretic},
}

// excipients maps non-drug allergens to drugs carrying the derived
// component.
var excipients = map[string][]string{
	"egg":     {"propofol", "influenza vaccine"},
	"soy":     {"propofol", "clevidipine"},
	"gelatin": {"mmr vaccine", "varicella vaccine"},
	"lactose": {"advair", "spiriva"},
}

// Engine checks medication lists against patient allergies.
type Engine struct {
	logger *logrus.Logger
	store  *pharma.Store
}

// NewEngine creates an allergy engine backed by the drug profile store.
func NewEngine(logger *logrus.Logger, store *pharma.Store) *Engine {
	return &Engine{logger: logger, store: store}
}

// Check evaluates every (allergen, drug) combination and returns the
// typed alerts found. Empty allergy or drug lists produce an empty,
// safe report. Repeated calls with identical inputs yield identical
// alert sets; no state accumulates between calls.
func (e *Engine) Check(allergies []string, drugs []string) domain.AllergyReport {
	report := domain.AllergyReport{
		Alerts:       []domain.AllergyAlert{},
		Safe:         true,
		CheckedDrugs: []string{},
	}
	if len(allergies) == 0 || len(drugs) == 0 {
		return report
	}

	seen := make(map[string]bool)
	for _, drug := range drugs {
		name := strings.ToLower(strings.TrimSpace(drug))
		if name == "" {
			continue
		}
		report.CheckedDrugs = append(report.CheckedDrugs, name)

		for _, allergen := range allergies {
			alert := e.match(strings.ToLower(strings.TrimSpace(allergen)), name)
			if alert == nil {
				continue
			}
			key := alert.Allergen + "|" + alert.Drug + "|" + string(alert.Type)
			if seen[key] {
				continue
			}
			seen[key] = true
			report.Alerts = append(report.Alerts, *alert)
		}
	}

	report.Safe = len(report.Alerts) == 0
	if !report.Safe {
		e.logger.WithFields(logrus.Fields{
			"alerts": len(report.Alerts),
			"drugs":  len(report.CheckedDrugs),
		}).Warn("Allergy conflicts detected")
	}
	return report
}

// IsDrugSafeForPatient reports whether a single candidate drug raises
// no alert against the patient's allergies.
func (e *Engine) IsDrugSafeForPatient(drug string, allergies []string) bool {
	return e.Check(allergies, []string{drug}).Safe
}

// CrossReactivityGroups returns the drug classes documented as
// cross-reactive with the allergen, empty when none are known.
func (e *Engine) CrossReactivityGroups(allergen string) []string {
	class := e.allergenClass(strings.ToLower(strings.TrimSpace(allergen)))
	if class == pharma.ClassUnknown {
		return []string{}
	}
	groups := crossReactiveClasses[class]
	out := make([]string, len(groups))
	copy(out, groups)
	return out
}

// match returns the single most specific alert for one allergen/drug
// combination, nil when they do not conflict.
func (e *Engine) match(allergen, drug string) *domain.AllergyAlert {
	if allergen == "" {
		return nil
	}

	// Direct: the allergen names the drug itself.
	if pharma.NormalizeDrugName(allergen) == pharma.NormalizeDrugName(drug) {
		return e.alert(allergen, drug, domain.ALERT_DIRECT,
			fmt.Sprintf("Patient has a documented allergy to %s.", drug))
	}

	allergenClass := e.allergenClass(allergen)
	drugClass := e.store.ClassOf(drug)
	if allergenClass != pharma.ClassUnknown && drugClass != pharma.ClassUnknown {
		// Class-based: candidate shares the allergen's drug class.
		if drugClass == allergenClass {
			return e.alert(allergen, drug, domain.ALERT_CLASS_BASED,
				fmt.Sprintf("%s belongs to the %s class the patient is allergic to.", drug, allergenClass))
		}
		// Cross-reactive: candidate's class shares an epitope with the
		// allergen's class.
		for _, group := range crossReactiveClasses[allergenClass] {
			if drugClass == group {
				return e.alert(allergen, drug, domain.ALERT_CROSS_REACTIVE,
					fmt.Sprintf("%s (%s) is cross-reactive with the patient's %s allergy.", drug, drugClass, allergen))
			}
		}
	}

	// Excipient: the drug carries a component derived from the allergen.
	for _, carrier := range excipients[allergen] {
		if strings.Contains(drug, carrier) || carrier == drug {
			return e.alert(allergen, drug, domain.ALERT_EXCIPIENT,
				fmt.Sprintf("%s contains a %s-derived component.", drug, allergen))
		}
	}

	return nil
}

// allergenClass resolves an allergen to a drug class: a class name is
// taken as-is, otherwise the allergen is looked up as a drug.
func (e *Engine) allergenClass(allergen string) string {
	normalized := pharma.NormalizeDrugName(allergen)
	if _, ok := crossReactiveClasses[normalized]; ok {
		return normalized
	}
	if isKnownClass(normalized) {
		return normalized
	}
	return e.store.ClassOf(allergen)
}

func isKnownClass(name string) bool {
	switch name {
	case pharma.ClassAnticoagulant, pharma.ClassAntiplatelet, pharma.ClassNSAID,
		pharma.ClassOpioid, pharma.ClassBenzodiazepine, pharma.ClassMAOI,
		pharma.ClassSerotonergic, pharma.ClassStatin, pharma.ClassACEInhibitor,
		pharma.ClassBetaBlocker, pharma.ClassCalciumBlocker, pharma.ClassDiuretic,
		pharma.ClassPenicillin, pharma.ClassCephalosporin, pharma.ClassSulfonamide,
		pharma.ClassMacrolide, pharma.ClassQuinolone, pharma.ClassAntiarrhythmic,
		pharma.ClassBiguanide, pharma.ClassPPI:
		return true
	}
	return false
}

func (e *Engine) alert(allergen, drug string, alertType domain.AlertType, message string) *domain.AllergyAlert {
	return &domain.AllergyAlert{
		Allergen: allergen,
		Drug:     drug,
		Type:     alertType,
		Message:  message,
	}
}
