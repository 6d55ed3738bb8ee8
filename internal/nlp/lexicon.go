package nlp

// Body systems referenced by the lexicon.
const (
	SystemGeneral          = "general"
	SystemCardiovascular   = "cardiovascular"
	SystemRespiratory      = "respiratory"
	SystemNeurological     = "neurological"
	SystemGastrointestinal = "gastrointestinal"
	SystemGenitourinary    = "genitourinary"
	SystemMusculoskeletal  = "musculoskeletal"
	SystemDermatological   = "dermatological"
	SystemPsychiatric      = "psychiatric"
)

// lexiconEntry is the static classification of one symptom term.
// Severity runs 1..10. The term weights are clinical reference data,
// not architecture.
type lexiconEntry struct {
	BodySystem string
	Severity   int
	RedFlag    bool
}

// symptomLexicon maps lowercase terms, including multi-word phrases,
// to their classification. Matching is greedy: longer phrases win.
var symptomLexicon = map[string]lexiconEntry{
	"chest pain":           {SystemCardiovascular, 8, true},
	"chest pressure":       {SystemCardiovascular, 8, true},
	"chest tightness":      {SystemCardiovascular, 7, true},
	"palpitations":         {SystemCardiovascular, 6, false},
	"leg swelling":         {SystemCardiovascular, 5, false},
	"shortness of breath":  {SystemRespiratory, 8, true},
	"difficulty breathing": {SystemRespiratory, 8, true},
	"dyspnea":              {SystemRespiratory, 8, true},
	"coughing blood":       {SystemRespiratory, 9, true},
	"hemoptysis":           {SystemRespiratory, 9, true},
	"wheezing":             {SystemRespiratory, 5, false},
	"cough":                {SystemRespiratory, 3, false},
	"sore throat":          {SystemRespiratory, 2, false},
	"worst headache":       {SystemNeurological, 9, true},
	"headache":             {SystemNeurological, 4, false},
	"dizziness":            {SystemNeurological, 4, false},
	"lightheaded":          {SystemNeurological, 4, false},
	"syncope":              {SystemNeurological, 7, true},
	"fainting":             {SystemNeurological, 7, true},
	"passed out":           {SystemNeurological, 7, true},
	"numbness":             {SystemNeurological, 5, false},
	"weakness":             {SystemNeurological, 5, false},
	"facial droop":         {SystemNeurological, 9, true},
	"slurred speech":       {SystemNeurological, 9, true},
	"confusion":            {SystemNeurological, 7, true},
	"seizure":              {SystemNeurological, 9, true},
	"vision loss":          {SystemNeurological, 8, true},
	"nausea":               {SystemGastrointestinal, 3, false},
	"vomiting blood":       {SystemGastrointestinal, 9, true},
	"hematemesis":          {SystemGastrointestinal, 9, true},
	"vomiting":             {SystemGastrointestinal, 4, false},
	"abdominal pain":       {SystemGastrointestinal, 5, false},
	"stomach pain":         {SystemGastrointestinal, 5, false},
	"diarrhea":             {SystemGastrointestinal, 3, false},
	"constipation":         {SystemGastrointestinal, 2, false},
	"blood in stool":       {SystemGastrointestinal, 7, true},
	"melena":               {SystemGastrointestinal, 7, true},
	"fever":                {SystemGeneral, 4, false},
	"chills":               {SystemGeneral, 3, false},
	"fatigue":              {SystemGeneral, 3, false},
	"night sweats":         {SystemGeneral, 5, false},
	"sweating":             {SystemGeneral, 4, false},
	"weight loss":          {SystemGeneral, 5, false},
	"swelling":             {SystemGeneral, 4, false},
	"rash":                 {SystemDermatological, 3, false},
	"itching":              {SystemDermatological, 2, false},
	"back pain":            {SystemMusculoskeletal, 3, false},
	"joint pain":           {SystemMusculoskeletal, 3, false},
	"burning urination":    {SystemGenitourinary, 4, false},
	"blood in urine":       {SystemGenitourinary, 6, true},
	"hematuria":            {SystemGenitourinary, 6, true},
	"anxiety":              {SystemPsychiatric, 3, false},
	"insomnia":             {SystemPsychiatric, 3, false},
}

// maxPhraseTokens is the longest lexicon phrase, in tokens.
const maxPhraseTokens = 3

// negationMarkers flip the next symptom within the same clause.
var negationMarkers = map[string]bool{
	"no":      true,
	"denies":  true,
	"denied":  true,
	"without": true,
	"not":     true,
}

// negationBigrams are two-token negation markers.
var negationBigrams = map[string]bool{
	"negative for": true,
}

// clauseBoundaries stop the negation scope scan.
var clauseBoundaries = map[string]bool{
	",":   true,
	".":   true,
	";":   true,
	"but": true,
}

// severity modifiers scale the matched symptom's severity.
var amplifiers = map[string]bool{
	"severe":       true,
	"intense":      true,
	"excruciating": true,
	"crushing":     true,
	"worst":        true,
}

var diminishers = map[string]bool{
	"mild":     true,
	"slight":   true,
	"minor":    true,
	"occasional": true,
}

// differentialRule scores one candidate condition: at least one anchor
// symptom must be present (non-negated), each present support raises
// the probability.
type differentialRule struct {
	Condition  string
	Anchors    []string
	Supports   []string
	Base       float64
	PerSupport float64
}

var differentialRules = []differentialRule{
	{
		Condition:  "Acute Coronary Syndrome",
		Anchors:    []string{"chest pain", "chest pressure", "chest tightness"},
		Supports:   []string{"nausea", "shortness of breath", "dyspnea", "sweating", "palpitations"},
		Base:       0.30,
		PerSupport: 0.15,
	},
	{
		Condition:  "Pulmonary Embolism",
		Anchors:    []string{"shortness of breath", "dyspnea"},
		Supports:   []string{"chest pain", "coughing blood", "hemoptysis", "leg swelling"},
		Base:       0.20,
		PerSupport: 0.15,
	},
	{
		Condition:  "Pneumonia",
		Anchors:    []string{"cough"},
		Supports:   []string{"fever", "shortness of breath", "chills"},
		Base:       0.15,
		PerSupport: 0.15,
	},
	{
		Condition:  "Stroke",
		Anchors:    []string{"slurred speech", "facial droop", "weakness"},
		Supports:   []string{"numbness", "confusion", "vision loss", "headache"},
		Base:       0.25,
		PerSupport: 0.15,
	},
	{
		Condition:  "Gastrointestinal Bleed",
		Anchors:    []string{"vomiting blood", "hematemesis", "blood in stool", "melena"},
		Supports:   []string{"dizziness", "fatigue", "abdominal pain"},
		Base:       0.35,
		PerSupport: 0.12,
	},
	{
		Condition:  "Migraine",
		Anchors:    []string{"headache"},
		Supports:   []string{"nausea", "vision loss"},
		Base:       0.20,
		PerSupport: 0.12,
	},
	{
		Condition:  "Gastroenteritis",
		Anchors:    []string{"diarrhea", "vomiting"},
		Supports:   []string{"nausea", "fever", "abdominal pain", "chills"},
		Base:       0.20,
		PerSupport: 0.12,
	},
	{
		Condition:  "Urinary Tract Infection",
		Anchors:    []string{"burning urination"},
		Supports:   []string{"fever", "blood in urine", "hematuria"},
		Base:       0.30,
		PerSupport: 0.15,
	},
	{
		Condition:  "Appendicitis",
		Anchors:    []string{"abdominal pain", "stomach pain"},
		Supports:   []string{"fever", "nausea", "vomiting"},
		Base:       0.15,
		PerSupport: 0.12,
	},
}

// systemQuestions suggests follow-up questions per involved body
// system.
var systemQuestions = map[string][]string{
	SystemCardiovascular:   {"Does the pain radiate to the arm, jaw, or back?", "Does exertion make it worse?"},
	SystemRespiratory:      {"Is the breathing difficulty worse when lying flat?", "Any recent long travel or immobilization?"},
	SystemNeurological:     {"When exactly did the symptoms start?", "Any recent head injury?"},
	SystemGastrointestinal: {"Any blood in vomit or stool?", "When was the last normal meal?"},
	SystemGenitourinary:    {"Any fever or flank pain?"},
	SystemGeneral:          {"Any recent infections or travel?"},
}
