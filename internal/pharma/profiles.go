// Package pharma provides the static drug profile store and the
// feature encoding used by the drug-interaction classifier. Profiles
// load once at process start and are read-only afterwards.
package pharma

import (
	"sort"
	"strings"

	"github.com/clinrisk-ensemble-engine/internal/domain"
)

// Drug class identifiers referenced by the interaction rules and the
// allergy engine. Classes are reference data, not architecture.
const (
	ClassAnticoagulant  = "anticoagulant"
	ClassAntiplatelet   = "antiplatelet"
	ClassNSAID          = "nsaid"
	ClassOpioid         = "opioid"
	ClassBenzodiazepine = "benzodiazepine"
	ClassMAOI           = "maoi"
	ClassSerotonergic   = "serotonergic"
	ClassStatin         = "statin"
	ClassACEInhibitor   = "ace-inhibitor"
	ClassBetaBlocker    = "beta-blocker"
	ClassCalciumBlocker = "calcium-channel-blocker"
	ClassDiuretic       = "diuretic"
	ClassPenicillin     = "penicillin"
	ClassCephalosporin  = "cephalosporin"
	ClassSulfonamide    = "sulfonamide"
	ClassMacrolide      = "macrolide"
	ClassQuinolone      = "fluoroquinolone"
	ClassAntiarrhythmic = "antiarrhythmic"
	ClassBiguanide      = "biguanide"
	ClassPPI            = "proton-pump-inhibitor"
	ClassUnknown        = "unknown"
)

// CYP metabolic pathways. "renal" marks predominantly unmetabolized
// renal clearance.
const (
	CYP3A4     = "cyp3a4"
	CYP2D6     = "cyp2d6"
	CYP2C9     = "cyp2c9"
	CYP2C19    = "cyp2c19"
	CYP1A2     = "cyp1a2"
	RenalRoute = "renal"
	CYPUnknown = "unknown"
)

// DefaultProfile is the neutral profile resolved for unrecognized drug
// names. The engine never refuses to answer for an unknown drug; it
// answers conservatively instead.
var DefaultProfile = domain.DrugProfile{
	Class:          ClassUnknown,
	CYPPathway:     CYPUnknown,
	ProteinBinding: 0.5,
	HalfLifeHours:  12,
	Hepatotoxicity: 0.1,
	Nephrotoxicity: 0.1,
	QTRisk:         0.1,
}

// catalog is the bundled per-drug pharmacology reference table.
var catalog = map[string]domain.DrugProfile{
	"warfarin":       {Class: ClassAnticoagulant, CYPPathway: CYP2C9, ProteinBinding: 0.99, HalfLifeHours: 40, Hepatotoxicity: 0.2, Nephrotoxicity: 0.1, QTRisk: 0.1},
	"apixaban":       {Class: ClassAnticoagulant, CYPPathway: CYP3A4, ProteinBinding: 0.87, HalfLifeHours: 12, Hepatotoxicity: 0.1, Nephrotoxicity: 0.1, QTRisk: 0.05},
	"aspirin":        {Class: ClassAntiplatelet, CYPPathway: CYP2C9, ProteinBinding: 0.92, HalfLifeHours: 6, Hepatotoxicity: 0.2, Nephrotoxicity: 0.3, QTRisk: 0.0},
	"clopidogrel":    {Class: ClassAntiplatelet, CYPPathway: CYP2C19, ProteinBinding: 0.98, HalfLifeHours: 8, Hepatotoxicity: 0.1, Nephrotoxicity: 0.1, QTRisk: 0.0},
	"ibuprofen":      {Class: ClassNSAID, CYPPathway: CYP2C9, ProteinBinding: 0.99, HalfLifeHours: 2, Hepatotoxicity: 0.2, Nephrotoxicity: 0.4, QTRisk: 0.0},
	"naproxen":       {Class: ClassNSAID, CYPPathway: CYP2C9, ProteinBinding: 0.99, HalfLifeHours: 14, Hepatotoxicity: 0.2, Nephrotoxicity: 0.4, QTRisk: 0.0},
	"oxycodone":      {Class: ClassOpioid, CYPPathway: CYP2D6, ProteinBinding: 0.45, HalfLifeHours: 4, Hepatotoxicity: 0.1, Nephrotoxicity: 0.1, QTRisk: 0.1},
	"morphine":       {Class: ClassOpioid, CYPPathway: RenalRoute, ProteinBinding: 0.35, HalfLifeHours: 3, Hepatotoxicity: 0.1, Nephrotoxicity: 0.2, QTRisk: 0.1},
	"tramadol":       {Class: ClassOpioid, CYPPathway: CYP2D6, ProteinBinding: 0.2, HalfLifeHours: 6, Hepatotoxicity: 0.1, Nephrotoxicity: 0.1, QTRisk: 0.2},
	"diazepam":       {Class: ClassBenzodiazepine, CYPPathway: CYP3A4, ProteinBinding: 0.98, HalfLifeHours: 48, Hepatotoxicity: 0.1, Nephrotoxicity: 0.05, QTRisk: 0.0},
	"lorazepam":      {Class: ClassBenzodiazepine, CYPPathway: CYP3A4, ProteinBinding: 0.91, HalfLifeHours: 14, Hepatotoxicity: 0.1, Nephrotoxicity: 0.05, QTRisk: 0.0},
	"alprazolam":     {Class: ClassBenzodiazepine, CYPPathway: CYP3A4, ProteinBinding: 0.8, HalfLifeHours: 11, Hepatotoxicity: 0.1, Nephrotoxicity: 0.05, QTRisk: 0.0},
	"phenelzine":     {Class: ClassMAOI, CYPPathway: CYP2C19, ProteinBinding: 0.5, HalfLifeHours: 12, Hepatotoxicity: 0.3, Nephrotoxicity: 0.1, QTRisk: 0.1},
	"selegiline":     {Class: ClassMAOI, CYPPathway: CYP2D6, ProteinBinding: 0.85, HalfLifeHours: 10, Hepatotoxicity: 0.2, Nephrotoxicity: 0.1, QTRisk: 0.1},
	"sertraline":     {Class: ClassSerotonergic, CYPPathway: CYP2D6, ProteinBinding: 0.98, HalfLifeHours: 26, Hepatotoxicity: 0.1, Nephrotoxicity: 0.05, QTRisk: 0.3},
	"fluoxetine":     {Class: ClassSerotonergic, CYPPathway: CYP2D6, ProteinBinding: 0.95, HalfLifeHours: 96, Hepatotoxicity: 0.1, Nephrotoxicity: 0.05, QTRisk: 0.3},
	"citalopram":     {Class: ClassSerotonergic, CYPPathway: CYP2C19, ProteinBinding: 0.8, HalfLifeHours: 35, Hepatotoxicity: 0.1, Nephrotoxicity: 0.05, QTRisk: 0.5},
	"atorvastatin":   {Class: ClassStatin, CYPPathway: CYP3A4, ProteinBinding: 0.98, HalfLifeHours: 14, Hepatotoxicity: 0.4, Nephrotoxicity: 0.1, QTRisk: 0.0},
	"simvastatin":    {Class: ClassStatin, CYPPathway: CYP3A4, ProteinBinding: 0.95, HalfLifeHours: 3, Hepatotoxicity: 0.4, Nephrotoxicity: 0.1, QTRisk: 0.0},
	"lisinopril":     {Class: ClassACEInhibitor, CYPPathway: RenalRoute, ProteinBinding: 0.25, HalfLifeHours: 12, Hepatotoxicity: 0.05, Nephrotoxicity: 0.3, QTRisk: 0.0},
	"metoprolol":     {Class: ClassBetaBlocker, CYPPathway: CYP2D6, ProteinBinding: 0.12, HalfLifeHours: 4, Hepatotoxicity: 0.05, Nephrotoxicity: 0.05, QTRisk: 0.1},
	"amlodipine":     {Class: ClassCalciumBlocker, CYPPathway: CYP3A4, ProteinBinding: 0.93, HalfLifeHours: 40, Hepatotoxicity: 0.1, Nephrotoxicity: 0.05, QTRisk: 0.1},
	"furosemide":     {Class: ClassDiuretic, CYPPathway: RenalRoute, ProteinBinding: 0.95, HalfLifeHours: 2, Hepatotoxicity: 0.1, Nephrotoxicity: 0.4, QTRisk: 0.1},
	"amoxicillin":    {Class: ClassPenicillin, CYPPathway: RenalRoute, ProteinBinding: 0.2, HalfLifeHours: 1.5, Hepatotoxicity: 0.1, Nephrotoxicity: 0.1, QTRisk: 0.0},
	"cephalexin":     {Class: ClassCephalosporin, CYPPathway: RenalRoute, ProteinBinding: 0.15, HalfLifeHours: 1, Hepatotoxicity: 0.1, Nephrotoxicity: 0.1, QTRisk: 0.0},
	"ceftriaxone":    {Class: ClassCephalosporin, CYPPathway: RenalRoute, ProteinBinding: 0.9, HalfLifeHours: 8, Hepatotoxicity: 0.1, Nephrotoxicity: 0.1, QTRisk: 0.0},
	"sulfamethoxazole": {Class: ClassSulfonamide, CYPPathway: CYP2C9, ProteinBinding: 0.7, HalfLifeHours: 10, Hepatotoxicity: 0.2, Nephrotoxicity: 0.3, QTRisk: 0.1},
	"azithromycin":   {Class: ClassMacrolide, CYPPathway: CYP3A4, ProteinBinding: 0.5, HalfLifeHours: 68, Hepatotoxicity: 0.2, Nephrotoxicity: 0.1, QTRisk: 0.4},
	"ciprofloxacin":  {Class: ClassQuinolone, CYPPathway: CYP1A2, ProteinBinding: 0.3, HalfLifeHours: 4, Hepatotoxicity: 0.2, Nephrotoxicity: 0.2, QTRisk: 0.4},
	"amiodarone":     {Class: ClassAntiarrhythmic, CYPPathway: CYP3A4, ProteinBinding: 0.96, HalfLifeHours: 1400, Hepatotoxicity: 0.5, Nephrotoxicity: 0.1, QTRisk: 0.8},
	"metformin":      {Class: ClassBiguanide, CYPPathway: RenalRoute, ProteinBinding: 0.0, HalfLifeHours: 6, Hepatotoxicity: 0.05, Nephrotoxicity: 0.3, QTRisk: 0.0},
	"omeprazole":     {Class: ClassPPI, CYPPathway: CYP2C19, ProteinBinding: 0.95, HalfLifeHours: 1, Hepatotoxicity: 0.1, Nephrotoxicity: 0.05, QTRisk: 0.1},
}

// Store is the read-only drug profile lookup shared by the interaction
// classifier and the allergy engine.
type Store struct {
	profiles map[string]domain.DrugProfile
	classes  []string
	pathways []string
}

// NewStore loads the bundled catalog.
func NewStore() *Store {
	s := &Store{profiles: catalog}
	s.indexVocabulary()
	return s
}

// indexVocabulary builds stable ordinal tables for the feature encoder.
func (s *Store) indexVocabulary() {
	classSet := map[string]bool{ClassUnknown: true}
	pathSet := map[string]bool{CYPUnknown: true}
	for _, p := range s.profiles {
		classSet[p.Class] = true
		pathSet[p.CYPPathway] = true
	}
	for c := range classSet {
		s.classes = append(s.classes, c)
	}
	for p := range pathSet {
		s.pathways = append(s.pathways, p)
	}
	sort.Strings(s.classes)
	sort.Strings(s.pathways)
}

// NormalizeDrugName lowercases the name, keeps only the leading word
// and strips non-letters, so "Warfarin 5mg" and "warfarin" resolve
// identically.
func NormalizeDrugName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexByte(name, ' '); i > 0 {
		name = name[:i]
	}
	var b strings.Builder
	for _, r := range name {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Lookup resolves a drug name to its profile. Unknown names resolve to
// the neutral default; known reports whether the catalog had an entry.
func (s *Store) Lookup(name string) (domain.DrugProfile, bool) {
	if p, ok := s.profiles[NormalizeDrugName(name)]; ok {
		return p, true
	}
	return DefaultProfile, false
}

// ClassOf returns the drug class for a name, ClassUnknown when the name
// is not cataloged.
func (s *Store) ClassOf(name string) string {
	p, _ := s.Lookup(name)
	return p.Class
}

// classIndex returns the normalized ordinal of a class in [0,1].
func (s *Store) classIndex(class string) float64 {
	return normalizedIndex(s.classes, class)
}

// pathwayIndex returns the normalized ordinal of a CYP pathway in [0,1].
func (s *Store) pathwayIndex(pathway string) float64 {
	return normalizedIndex(s.pathways, pathway)
}

func normalizedIndex(vocab []string, term string) float64 {
	if len(vocab) < 2 {
		return 0
	}
	i := sort.SearchStrings(vocab, term)
	if i >= len(vocab) || vocab[i] != term {
		i = sort.SearchStrings(vocab, ClassUnknown)
	}
	return float64(i) / float64(len(vocab)-1)
}
