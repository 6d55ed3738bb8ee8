// Package nlp implements the chief-complaint analyzer: lexicon
// matching over free text with negation scoping, severity modifiers,
// duration parsing, acuity classification and pattern-scored
// differentials.
package nlp

import (
	"sort"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/clinrisk-ensemble-engine/internal/domain"
)

// Analyzer turns a free-text chief complaint into a structured
// ComplaintAnalysis. The analyzer is stateless across calls.
type Analyzer struct {
	logger *logrus.Logger
	cfg    domain.ComplaintConfig
}

// NewAnalyzer creates a chief-complaint analyzer.
func NewAnalyzer(logger *logrus.Logger, cfg domain.ComplaintConfig) *Analyzer {
	return &Analyzer{logger: logger, cfg: cfg}
}

// Analyze runs the full pipeline over one complaint. Empty or
// non-matching text yields zero symptoms, routine acuity, confidence 0
// and the general body system.
func (a *Analyzer) Analyze(text string) domain.ComplaintAnalysis {
	tokens := tokenize(text)
	symptoms := a.matchSymptoms(tokens)
	duration := parseDuration(text, a.cfg)

	analysis := domain.ComplaintAnalysis{
		Symptoms:           symptoms,
		Duration:           duration,
		Acuity:             a.classifyAcuity(symptoms, duration),
		BodySystems:        bodySystems(symptoms),
		RedFlags:           redFlags(symptoms),
		Differentials:      scoreDifferentials(symptoms),
		SuggestedQuestions: a.suggestQuestions(symptoms, duration),
		Confidence:         a.confidence(symptoms),
	}

	a.logger.WithFields(logrus.Fields{
		"symptoms":  len(analysis.Symptoms),
		"red_flags": len(analysis.RedFlags),
		"acuity":    analysis.Acuity.String(),
	}).Debug("Complaint analyzed")
	return analysis
}

// AnalyzeMultiple merges several notes by concatenation and analyzes
// the combined text.
func (a *Analyzer) AnalyzeMultiple(texts []string) domain.ComplaintAnalysis {
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return a.Analyze(strings.Join(parts, ". "))
}

// tokenize lowercases the text and splits it into word tokens,
// emitting clause punctuation as standalone boundary tokens.
func tokenize(text string) []string {
	var tokens []string
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		case r == ',' || r == '.' || r == ';':
			flush()
			tokens = append(tokens, string(r))
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// matchSymptoms scans for lexicon terms, longest phrase first, and
// resolves negation and severity modifiers from the preceding window.
func (a *Analyzer) matchSymptoms(tokens []string) []domain.Symptom {
	byTerm := make(map[string]domain.Symptom)
	var order []string

	for i := 0; i < len(tokens); i++ {
		if clauseBoundaries[tokens[i]] {
			continue
		}

		for n := maxPhraseTokens; n >= 1; n-- {
			phrase, ok := phraseAt(tokens, i, n)
			if !ok {
				continue
			}
			entry, known := symptomLexicon[phrase]
			if !known {
				continue
			}

			symptom := domain.Symptom{
				Term:       phrase,
				BodySystem: entry.BodySystem,
				Severity:   a.modifiedSeverity(tokens, i, entry.Severity),
				Negated:    a.isNegated(tokens, i),
				RedFlag:    entry.RedFlag,
			}

			if existing, seen := byTerm[phrase]; seen {
				// A non-negated mention outranks a negated one.
				if existing.Negated && !symptom.Negated {
					byTerm[phrase] = symptom
				}
			} else {
				byTerm[phrase] = symptom
				order = append(order, phrase)
			}

			i += n - 1
			break
		}
	}

	symptoms := make([]domain.Symptom, 0, len(order))
	for _, term := range order {
		symptoms = append(symptoms, byTerm[term])
	}
	return symptoms
}

// phraseAt joins n consecutive word tokens starting at i; ok=false when
// a clause boundary interrupts the span.
func phraseAt(tokens []string, i, n int) (string, bool) {
	if i+n > len(tokens) {
		return "", false
	}
	for k := i; k < i+n; k++ {
		if clauseBoundaries[tokens[k]] {
			return "", false
		}
	}
	return strings.Join(tokens[i:i+n], " "), true
}

// isNegated scans the bounded preceding-token window for a negation
// marker, stopping at clause boundaries so negation never leaks across
// a comma, period or "but".
func (a *Analyzer) isNegated(tokens []string, matchStart int) bool {
	window := a.cfg.NegationWindow
	if window <= 0 {
		window = 3
	}
	for k := matchStart - 1; k >= 0 && matchStart-k <= window; k-- {
		if clauseBoundaries[tokens[k]] {
			return false
		}
		if negationMarkers[tokens[k]] {
			return true
		}
		if k > 0 && negationBigrams[tokens[k-1]+" "+tokens[k]] {
			return true
		}
	}
	return false
}

// modifiedSeverity applies severity modifiers found in the preceding
// window of the same clause.
func (a *Analyzer) modifiedSeverity(tokens []string, matchStart, severity int) int {
	window := a.cfg.NegationWindow
	if window <= 0 {
		window = 3
	}
	for k := matchStart - 1; k >= 0 && matchStart-k <= window; k-- {
		if clauseBoundaries[tokens[k]] {
			break
		}
		if amplifiers[tokens[k]] {
			severity += 2
			break
		}
		if diminishers[tokens[k]] {
			severity -= 2
			break
		}
	}
	if severity > 10 {
		severity = 10
	}
	if severity < 1 {
		severity = 1
	}
	return severity
}

// classifyAcuity maps the worst non-negated severity onto the urgency
// scale, boosted one level on acute onset.
func (a *Analyzer) classifyAcuity(symptoms []domain.Symptom, duration *domain.DurationEstimate) domain.Acuity {
	maxSeverity := 0
	for _, s := range symptoms {
		if !s.Negated && s.Severity > maxSeverity {
			maxSeverity = s.Severity
		}
	}

	var acuity domain.Acuity
	switch {
	case maxSeverity >= 9:
		acuity = domain.ACUITY_EMERGENT
	case maxSeverity >= 7:
		acuity = domain.ACUITY_URGENT
	case maxSeverity >= 5:
		acuity = domain.ACUITY_SEMI_URGENT
	default:
		acuity = domain.ACUITY_ROUTINE
	}

	if duration != nil && duration.Course == domain.COURSE_ACUTE && maxSeverity > 0 {
		acuity = acuity.Escalate()
	}
	return acuity
}

// bodySystems returns the distinct systems of the non-negated matches,
// defaulting to general.
func bodySystems(symptoms []domain.Symptom) []string {
	seen := make(map[string]bool)
	var systems []string
	for _, s := range symptoms {
		if s.Negated || seen[s.BodySystem] {
			continue
		}
		seen[s.BodySystem] = true
		systems = append(systems, s.BodySystem)
	}
	if len(systems) == 0 {
		systems = []string{SystemGeneral}
	}
	return systems
}

// redFlags collects the non-negated red-flag terms. A negated red-flag
// symptom must never appear here.
func redFlags(symptoms []domain.Symptom) []string {
	flags := []string{}
	for _, s := range symptoms {
		if s.RedFlag && !s.Negated {
			flags = append(flags, s.Term)
		}
	}
	return flags
}

// scoreDifferentials applies the pattern rules over the non-negated
// terms and returns candidates sorted by descending probability.
func scoreDifferentials(symptoms []domain.Symptom) []domain.Differential {
	present := make(map[string]bool)
	for _, s := range symptoms {
		if !s.Negated {
			present[s.Term] = true
		}
	}

	differentials := []domain.Differential{}
	for _, rule := range differentialRules {
		anchored := false
		for _, anchor := range rule.Anchors {
			if present[anchor] {
				anchored = true
				break
			}
		}
		if !anchored {
			continue
		}

		probability := rule.Base
		for _, support := range rule.Supports {
			if present[support] {
				probability += rule.PerSupport
			}
		}
		if probability > 0.95 {
			probability = 0.95
		}
		differentials = append(differentials, domain.Differential{
			Condition:   rule.Condition,
			Probability: probability,
		})
	}

	sort.SliceStable(differentials, func(i, j int) bool {
		return differentials[i].Probability > differentials[j].Probability
	})
	return differentials
}

// suggestQuestions proposes follow-up questions for the involved body
// systems, plus a duration question when none was parsed.
func (a *Analyzer) suggestQuestions(symptoms []domain.Symptom, duration *domain.DurationEstimate) []string {
	questions := []string{}
	if len(symptoms) == 0 {
		return questions
	}

	if duration == nil {
		questions = append(questions, "How long has this been going on?")
	}
	for _, system := range bodySystems(symptoms) {
		questions = append(questions, systemQuestions[system]...)
	}
	if len(questions) > 5 {
		questions = questions[:5]
	}
	return questions
}

// confidence grows with the number of non-negated matches, clamped to
// [0,100].
func (a *Analyzer) confidence(symptoms []domain.Symptom) float64 {
	matches := 0
	for _, s := range symptoms {
		if !s.Negated {
			matches++
		}
	}
	per := a.cfg.ConfidencePerMatch
	if per <= 0 {
		per = 18
	}
	return domain.ClampScore(float64(matches) * per)
}
