package interaction

import (
	"sort"

	"github.com/clinrisk-ensemble-engine/internal/domain"
	"github.com/clinrisk-ensemble-engine/internal/pharma"
)

// LabeledPair is one training example: two drug names with a known
// interaction severity.
type LabeledPair struct {
	DrugA    string              `json:"drug_a"`
	DrugB    string              `json:"drug_b"`
	Severity domain.InteractionSeverity `json:"severity"`
}

// bundledPairs is the built-in training set of documented interactions
// and documented-safe combinations. The supplementary dataset fetch may
// extend it at training time; it is never required.
var bundledPairs = []LabeledPair{
	{"warfarin", "aspirin", domain.INTERACTION_MAJOR},
	{"warfarin", "ibuprofen", domain.INTERACTION_MAJOR},
	{"warfarin", "naproxen", domain.INTERACTION_MAJOR},
	{"warfarin", "clopidogrel", domain.INTERACTION_MODERATE},
	{"warfarin", "amiodarone", domain.INTERACTION_MAJOR},
	{"warfarin", "sulfamethoxazole", domain.INTERACTION_MAJOR},
	{"apixaban", "aspirin", domain.INTERACTION_MODERATE},
	{"apixaban", "naproxen", domain.INTERACTION_MAJOR},
	{"phenelzine", "sertraline", domain.INTERACTION_MAJOR},
	{"phenelzine", "fluoxetine", domain.INTERACTION_MAJOR},
	{"phenelzine", "tramadol", domain.INTERACTION_MAJOR},
	{"selegiline", "citalopram", domain.INTERACTION_MAJOR},
	{"oxycodone", "diazepam", domain.INTERACTION_MAJOR},
	{"oxycodone", "lorazepam", domain.INTERACTION_MAJOR},
	{"morphine", "alprazolam", domain.INTERACTION_MAJOR},
	{"tramadol", "sertraline", domain.INTERACTION_MODERATE},
	{"amiodarone", "citalopram", domain.INTERACTION_MAJOR},
	{"amiodarone", "azithromycin", domain.INTERACTION_MODERATE},
	{"amiodarone", "simvastatin", domain.INTERACTION_MODERATE},
	{"azithromycin", "ciprofloxacin", domain.INTERACTION_MODERATE},
	{"citalopram", "ciprofloxacin", domain.INTERACTION_MODERATE},
	{"atorvastatin", "azithromycin", domain.INTERACTION_MINOR},
	{"simvastatin", "amlodipine", domain.INTERACTION_MINOR},
	{"omeprazole", "clopidogrel", domain.INTERACTION_MODERATE},
	{"furosemide", "lisinopril", domain.INTERACTION_MINOR},
	{"ibuprofen", "lisinopril", domain.INTERACTION_MINOR},
	{"aspirin", "ibuprofen", domain.INTERACTION_MINOR},
	{"metformin", "lisinopril", domain.INTERACTION_NONE},
	{"metformin", "atorvastatin", domain.INTERACTION_NONE},
	{"amoxicillin", "metformin", domain.INTERACTION_NONE},
	{"amoxicillin", "lisinopril", domain.INTERACTION_NONE},
	{"cephalexin", "metoprolol", domain.INTERACTION_NONE},
	{"omeprazole", "amoxicillin", domain.INTERACTION_NONE},
	{"metoprolol", "atorvastatin", domain.INTERACTION_NONE},
	{"sertraline", "metformin", domain.INTERACTION_NONE},
}

// pairKey builds the order-independent lookup key for a drug pair.
func pairKey(a, b string) string {
	a = pharma.NormalizeDrugName(a)
	b = pharma.NormalizeDrugName(b)
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// knownPairIndex indexes the bundled pairs for the KnownPair flag.
var knownPairIndex = func() map[string]domain.InteractionSeverity {
	idx := make(map[string]domain.InteractionSeverity, len(bundledPairs))
	for _, p := range bundledPairs {
		idx[pairKey(p.DrugA, p.DrugB)] = p.Severity
	}
	return idx
}()

// trainingSet expands labeled pairs into both drug orderings so the
// learned function approximates the symmetry the fallback guarantees by
// construction.
func trainingSet(store *pharma.Store, extra []LabeledPair) (features [][]float64, classes []int) {
	pairs := make([]LabeledPair, 0, len(bundledPairs)+len(extra))
	pairs = append(pairs, bundledPairs...)
	pairs = append(pairs, extra...)

	// Deterministic ordering keeps training runs reproducible even when
	// the supplementary set arrives in arbitrary order.
	sort.Slice(pairs, func(i, j int) bool {
		return pairKey(pairs[i].DrugA, pairs[i].DrugB) < pairKey(pairs[j].DrugA, pairs[j].DrugB)
	})

	for _, p := range pairs {
		if !p.Severity.IsValid() {
			continue
		}
		class := p.Severity.Rank()
		features = append(features, store.PairFeaturesByName(p.DrugA, p.DrugB))
		classes = append(classes, class)
		features = append(features, store.PairFeaturesByName(p.DrugB, p.DrugA))
		classes = append(classes, class)
	}
	return features, classes
}
