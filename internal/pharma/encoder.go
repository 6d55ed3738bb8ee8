package pharma

import (
	"math"

	"github.com/clinrisk-ensemble-engine/internal/domain"
)

// PairFeatureSize is the width of the interaction feature vector: seven
// numbers per drug.
const PairFeatureSize = 14

// halfLifeCapHours caps half-life normalization at seven days; anything
// longer encodes as 1.0.
const halfLifeCapHours = 168.0

// PairFeatures encodes two drug profiles into the fixed feature vector
// consumed by the interaction classifier. Drug order matters here; the
// classifier's training set carries both orderings of every example so
// the learned function approximates symmetry.
func (s *Store) PairFeatures(a, b domain.DrugProfile) []float64 {
	features := make([]float64, 0, PairFeatureSize)
	for _, p := range []domain.DrugProfile{a, b} {
		features = append(features,
			s.classIndex(p.Class),
			s.pathwayIndex(p.CYPPathway),
			clamp01(p.ProteinBinding),
			clamp01(math.Min(p.HalfLifeHours, halfLifeCapHours)/halfLifeCapHours),
			clamp01(p.Hepatotoxicity),
			clamp01(p.Nephrotoxicity),
			clamp01(p.QTRisk),
		)
	}
	return features
}

// PairFeaturesByName resolves both names through the store (unknown
// names take the neutral default) and encodes the pair.
func (s *Store) PairFeaturesByName(drugA, drugB string) []float64 {
	a, _ := s.Lookup(drugA)
	b, _ := s.Lookup(drugB)
	return s.PairFeatures(a, b)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
