package nlp

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinrisk-ensemble-engine/internal/domain"
)

func testComplaintConfig() domain.ComplaintConfig {
	return domain.ComplaintConfig{
		NegationWindow:     3,
		ConfidencePerMatch: 18,
		AcuteMaxDays:       7,
		ChronicMinDays:     90,
	}
}

func newTestAnalyzer() *Analyzer {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewAnalyzer(logger, testComplaintConfig())
}

func findSymptom(t *testing.T, symptoms []domain.Symptom, term string) domain.Symptom {
	t.Helper()
	for _, s := range symptoms {
		if s.Term == term {
			return s
		}
	}
	t.Fatalf("symptom %q not found in %v", term, symptoms)
	return domain.Symptom{}
}

func TestAnalyzeNegation(t *testing.T) {
	a := newTestAnalyzer()

	tests := []struct {
		name    string
		text    string
		term    string
		negated bool
	}{
		{"denies", "denies chest pain", "chest pain", true},
		{"no", "no fever", "fever", true},
		{"without", "presenting without nausea", "nausea", true},
		{"negative for bigram", "negative for chest pain", "chest pain", true},
		{"plain mention", "reports chest pain", "chest pain", false},
		{"negation stops at comma", "no fever, chest pain", "chest pain", false},
		{"negation stops at but", "no fever but headache", "headache", false},
		{"outside window", "no prior history of any similar chest pain", "chest pain", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := a.Analyze(tt.text)
			symptom := findSymptom(t, analysis.Symptoms, tt.term)
			assert.Equal(t, tt.negated, symptom.Negated)
		})
	}
}

func TestAnalyzeNegatedRedFlagsExcluded(t *testing.T) {
	a := newTestAnalyzer()

	analysis := a.Analyze("denies chest pain, no shortness of breath")
	assert.Empty(t, analysis.RedFlags)
	assert.Equal(t, domain.ACUITY_ROUTINE, analysis.Acuity)
}

func TestAnalyzeNonNegatedMentionOutranksNegated(t *testing.T) {
	a := newTestAnalyzer()

	analysis := a.Analyze("no chest pain earlier, now reports chest pain")
	symptom := findSymptom(t, analysis.Symptoms, "chest pain")
	assert.False(t, symptom.Negated)
	assert.Contains(t, analysis.RedFlags, "chest pain")
}

func TestAnalyzeSeverityModifiers(t *testing.T) {
	a := newTestAnalyzer()

	tests := []struct {
		name     string
		text     string
		term     string
		severity int
	}{
		{"amplified", "severe headache", "headache", 6},
		{"diminished", "mild chest pain", "chest pain", 6},
		{"unmodified", "headache", "headache", 4},
		{"clamped high", "crushing chest pain", "chest pain", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := a.Analyze(tt.text)
			symptom := findSymptom(t, analysis.Symptoms, tt.term)
			assert.Equal(t, tt.severity, symptom.Severity)
		})
	}
}

func TestAnalyzeGreedyPhraseMatching(t *testing.T) {
	a := newTestAnalyzer()

	// "worst headache" must win over the shorter "headache".
	analysis := a.Analyze("the worst headache of my life")
	require.Len(t, analysis.Symptoms, 1)
	assert.Equal(t, "worst headache", analysis.Symptoms[0].Term)
	assert.True(t, analysis.Symptoms[0].RedFlag)
}

func TestAnalyzeDuration(t *testing.T) {
	a := newTestAnalyzer()

	tests := []struct {
		name   string
		text   string
		days   float64
		course domain.Chronicity
	}{
		{"numeric days", "cough for 3 days", 3, domain.COURSE_ACUTE},
		{"numeric weeks", "fatigue for 2 weeks", 14, domain.COURSE_SUBACUTE},
		{"numeric months", "back pain for 6 months", 180, domain.COURSE_CHRONIC},
		{"today is acute", "chest pain since today", 0.5, domain.COURSE_ACUTE},
		{"sudden is acute", "sudden weakness", 0.5, domain.COURSE_ACUTE},
		{"chronic keyword", "chronic back pain", 180, domain.COURSE_CHRONIC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := a.Analyze(tt.text)
			require.NotNil(t, analysis.Duration)
			assert.Equal(t, tt.days, analysis.Duration.EstimatedDays)
			assert.Equal(t, tt.course, analysis.Duration.Course)
		})
	}
}

func TestAnalyzeNoDurationSignal(t *testing.T) {
	a := newTestAnalyzer()

	analysis := a.Analyze("headache and nausea")
	assert.Nil(t, analysis.Duration)
	assert.Contains(t, analysis.SuggestedQuestions, "How long has this been going on?")
}

func TestAnalyzeAcuity(t *testing.T) {
	a := newTestAnalyzer()

	tests := []struct {
		name   string
		text   string
		acuity domain.Acuity
	}{
		{"emergent from severity", "seizure", domain.ACUITY_EMERGENT},
		{"urgent from severity", "chest pain for 2 weeks", domain.ACUITY_URGENT},
		{"semi-urgent", "abdominal pain for 2 weeks", domain.ACUITY_SEMI_URGENT},
		{"routine", "mild cough for 2 weeks", domain.ACUITY_ROUTINE},
		{"acute onset escalates", "sudden chest pain", domain.ACUITY_EMERGENT},
		{"no symptoms stays routine despite onset", "started today", domain.ACUITY_ROUTINE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := a.Analyze(tt.text)
			assert.Equal(t, tt.acuity, analysis.Acuity)
		})
	}
}

func TestAnalyzeDifferentials(t *testing.T) {
	a := newTestAnalyzer()

	analysis := a.Analyze("chest pain with shortness of breath and sweating")

	require.NotEmpty(t, analysis.Differentials)
	acs := analysis.Differentials[0]
	assert.Equal(t, "Acute Coronary Syndrome", acs.Condition)
	assert.InDelta(t, 0.60, acs.Probability, 1e-9)

	// Sorted descending.
	for i := 1; i < len(analysis.Differentials); i++ {
		assert.GreaterOrEqual(t,
			analysis.Differentials[i-1].Probability,
			analysis.Differentials[i].Probability)
	}
}

func TestAnalyzeDifferentialRequiresAnchor(t *testing.T) {
	a := newTestAnalyzer()

	// Supports alone never anchor a condition.
	analysis := a.Analyze("nausea and sweating")
	for _, d := range analysis.Differentials {
		assert.NotEqual(t, "Acute Coronary Syndrome", d.Condition)
	}
}

func TestAnalyzeNegatedAnchorDropsDifferential(t *testing.T) {
	a := newTestAnalyzer()

	analysis := a.Analyze("denies chest pain, reports nausea")
	for _, d := range analysis.Differentials {
		assert.NotEqual(t, "Acute Coronary Syndrome", d.Condition)
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	a := newTestAnalyzer()

	for _, text := range []string{"", "   ", "nothing recognizable here"} {
		analysis := a.Analyze(text)
		assert.Empty(t, analysis.Symptoms)
		assert.Nil(t, analysis.Duration)
		assert.Equal(t, domain.ACUITY_ROUTINE, analysis.Acuity)
		assert.Equal(t, []string{SystemGeneral}, analysis.BodySystems)
		assert.Empty(t, analysis.RedFlags)
		assert.Empty(t, analysis.Differentials)
		assert.Empty(t, analysis.SuggestedQuestions)
		assert.Zero(t, analysis.Confidence)
	}
}

func TestAnalyzeBodySystems(t *testing.T) {
	a := newTestAnalyzer()

	analysis := a.Analyze("chest pain and nausea, no cough")
	assert.Equal(t, []string{SystemCardiovascular, SystemGastrointestinal}, analysis.BodySystems)
}

func TestAnalyzeConfidence(t *testing.T) {
	a := newTestAnalyzer()

	analysis := a.Analyze("chest pain and nausea, denies fever")
	assert.InDelta(t, 36, analysis.Confidence, 1e-9)
}

func TestAnalyzeSuggestedQuestionsCapped(t *testing.T) {
	a := newTestAnalyzer()

	analysis := a.Analyze("chest pain, shortness of breath, headache, nausea, burning urination")
	assert.NotEmpty(t, analysis.SuggestedQuestions)
	assert.LessOrEqual(t, len(analysis.SuggestedQuestions), 5)
}

func TestAnalyzeMultiple(t *testing.T) {
	a := newTestAnalyzer()

	combined := a.AnalyzeMultiple([]string{"chest pain", "", "  ", "denies nausea"})
	assert.False(t, findSymptom(t, combined.Symptoms, "chest pain").Negated)
	assert.True(t, findSymptom(t, combined.Symptoms, "nausea").Negated)
}
