package domain

import "time"

// Config is the full engine configuration tree, loaded by
// internal/config. The numeric entries are clinical tuning parameters,
// not architecture: they carry documented defaults and may be overridden
// per deployment.
type Config struct {
	Logging     LoggingConfig     `mapstructure:"logging"`
	Risk        RiskConfig        `mapstructure:"risk"`
	Interaction InteractionConfig `mapstructure:"interaction"`
	Complaint   ComplaintConfig   `mapstructure:"complaint"`
	Training    TrainingConfig    `mapstructure:"training"`
	Dataset     DatasetConfig     `mapstructure:"dataset"`
}

// LoggingConfig controls the shared logrus logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RiskConfig holds the score cutoffs shared by the neural model and the
// ensemble, plus the ensemble trust weights.
type RiskConfig struct {
	// Cutoffs between LOW/MEDIUM, MEDIUM/HIGH and HIGH/CRITICAL.
	MediumCutoff   float64 `mapstructure:"medium_cutoff"`
	HighCutoff     float64 `mapstructure:"high_cutoff"`
	CriticalCutoff float64 `mapstructure:"critical_cutoff"`

	// Sub-model trust weights before availability renormalization.
	HeuristicWeight      float64 `mapstructure:"heuristic_weight"`
	NeuralWeight         float64 `mapstructure:"neural_weight"`
	NeuralFallbackWeight float64 `mapstructure:"neural_fallback_weight"`
	ComplaintWeight      float64 `mapstructure:"complaint_weight"`
	InteractionWeight    float64 `mapstructure:"interaction_weight"`
	LabWeight            float64 `mapstructure:"lab_weight"`
}

// RiskLevelForScore maps a [0,100] score onto the categorical scale
// using the configured cutoffs.
func (c RiskConfig) RiskLevelForScore(score float64) RiskLevel {
	switch {
	case score >= c.CriticalCutoff:
		return RISK_CRITICAL
	case score >= c.HighCutoff:
		return RISK_HIGH
	case score >= c.MediumCutoff:
		return RISK_MEDIUM
	default:
		return RISK_LOW
	}
}

// InteractionConfig holds the rule-based fallback scoring bonuses and
// the severity thresholds of the drug-interaction classifier.
type InteractionConfig struct {
	SharedCYPBonus        int `mapstructure:"shared_cyp_bonus"`
	ProteinBindingBonus   int `mapstructure:"protein_binding_bonus"`
	HepatotoxicityBonus   int `mapstructure:"hepatotoxicity_bonus"`
	NephrotoxicityBonus   int `mapstructure:"nephrotoxicity_bonus"`
	QTBonus               int `mapstructure:"qt_bonus"`
	MAOISerotonergicBonus int `mapstructure:"maoi_serotonergic_bonus"`
	OpioidBenzoBonus      int `mapstructure:"opioid_benzo_bonus"`
	AnticoagAntiplatBonus int `mapstructure:"anticoag_antiplatelet_bonus"`
	AnticoagNSAIDBonus    int `mapstructure:"anticoag_nsaid_bonus"`

	MajorThreshold    int `mapstructure:"major_threshold"`
	ModerateThreshold int `mapstructure:"moderate_threshold"`
	MinorThreshold    int `mapstructure:"minor_threshold"`
}

// ComplaintConfig tunes the chief-complaint analyzer.
type ComplaintConfig struct {
	// NegationWindow is the number of preceding tokens scanned for a
	// negation marker.
	NegationWindow int `mapstructure:"negation_window"`
	// ConfidencePerMatch is added per non-negated lexicon match, clamped
	// to [0,100].
	ConfidencePerMatch float64 `mapstructure:"confidence_per_match"`
	// Chronicity bucket boundaries in days.
	AcuteMaxDays   float64 `mapstructure:"acute_max_days"`
	ChronicMinDays float64 `mapstructure:"chronic_min_days"`
}

// TrainingConfig holds the hyperparameters shared by both trainable
// models.
type TrainingConfig struct {
	Epochs       int     `mapstructure:"epochs"`
	LearningRate float64 `mapstructure:"learning_rate"`
	Seed         int64   `mapstructure:"seed"`
	// ProgressEvery reports a progress event each N epochs.
	ProgressEvery int `mapstructure:"progress_every"`
}

// DatasetConfig configures the optional supplementary-dataset fetch
// performed at training time.
type DatasetConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit int           `mapstructure:"rate_limit"`
	CacheSize int           `mapstructure:"cache_size"`
}
