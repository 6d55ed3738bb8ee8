package allergy

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinrisk-ensemble-engine/internal/domain"
	"github.com/clinrisk-ensemble-engine/internal/pharma"
)

func newTestEngine() *Engine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewEngine(logger, pharma.NewStore())
}

func TestCheckDirectMatch(t *testing.T) {
	engine := newTestEngine()

	report := engine.Check([]string{"Warfarin"}, []string{"warfarin"})
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, domain.ALERT_DIRECT, report.Alerts[0].Type)
	assert.False(t, report.Safe)
}

func TestCheckCrossReactivePenicillinCephalosporin(t *testing.T) {
	engine := newTestEngine()

	report := engine.Check([]string{"penicillin"}, []string{"cephalexin"})
	require.Len(t, report.Alerts, 1)
	alert := report.Alerts[0]
	assert.Equal(t, domain.ALERT_CROSS_REACTIVE, alert.Type)
	assert.Equal(t, "penicillin", alert.Allergen)
	assert.Equal(t, "cephalexin", alert.Drug)
	assert.NotEmpty(t, alert.Message)
}

func TestCheckClassBasedMatch(t *testing.T) {
	engine := newTestEngine()

	// Amoxicillin is in the penicillin class; the allergen names the
	// class, not the drug, so this is class-based rather than direct.
	report := engine.Check([]string{"penicillin"}, []string{"amoxicillin"})
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, domain.ALERT_CLASS_BASED, report.Alerts[0].Type)
}

func TestCheckExcipientMatch(t *testing.T) {
	engine := newTestEngine()

	report := engine.Check([]string{"egg"}, []string{"propofol"})
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, domain.ALERT_EXCIPIENT, report.Alerts[0].Type)
}

func TestCheckMostSpecificAlertWins(t *testing.T) {
	engine := newTestEngine()

	// A drug allergen against the same drug matches direct, class-based
	// and (via NSAID/antiplatelet) cross-reactive rules. Only the direct
	// alert may surface for the pair.
	report := engine.Check([]string{"aspirin"}, []string{"aspirin"})
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, domain.ALERT_DIRECT, report.Alerts[0].Type)
}

func TestCheckUnrelatedClassesNeverFlagged(t *testing.T) {
	engine := newTestEngine()

	report := engine.Check([]string{"penicillin"}, []string{"metoprolol", "atorvastatin", "metformin"})
	assert.True(t, report.Safe)
	assert.Empty(t, report.Alerts)
	assert.Len(t, report.CheckedDrugs, 3)
}

func TestCheckEmptyInputs(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name      string
		allergies []string
		drugs     []string
	}{
		{"no allergies", nil, []string{"warfarin"}},
		{"no drugs", []string{"penicillin"}, nil},
		{"both empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := engine.Check(tt.allergies, tt.drugs)
			assert.True(t, report.Safe)
			assert.Empty(t, report.Alerts)
		})
	}
}

func TestCheckDeduplicatesRepeatedEntries(t *testing.T) {
	engine := newTestEngine()

	report := engine.Check(
		[]string{"penicillin", "Penicillin"},
		[]string{"cephalexin", "cephalexin"},
	)
	assert.Len(t, report.Alerts, 1)
}

func TestCheckIdempotent(t *testing.T) {
	engine := newTestEngine()

	first := engine.Check([]string{"penicillin"}, []string{"cephalexin", "ibuprofen"})
	second := engine.Check([]string{"penicillin"}, []string{"cephalexin", "ibuprofen"})
	assert.Equal(t, first, second)
}

func TestIsDrugSafeForPatient(t *testing.T) {
	engine := newTestEngine()

	assert.False(t, engine.IsDrugSafeForPatient("cephalexin", []string{"penicillin"}))
	assert.True(t, engine.IsDrugSafeForPatient("metformin", []string{"penicillin"}))
	assert.True(t, engine.IsDrugSafeForPatient("warfarin", nil))
}

func TestCrossReactivityGroups(t *testing.T) {
	engine := newTestEngine()

	assert.Equal(t, []string{pharma.ClassCephalosporin}, engine.CrossReactivityGroups("penicillin"))
	assert.Empty(t, engine.CrossReactivityGroups("egg"))
	assert.Empty(t, engine.CrossReactivityGroups("metformin"))
}
