// Package config loads the engine configuration via Viper: YAML file,
// CLINRISK_-prefixed environment overrides, and documented defaults for
// every clinical tuning constant.
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/clinrisk-ensemble-engine/internal/domain"
)

// Manager loads and validates the engine configuration.
type Manager struct {
	config *domain.Config
}

// NewManager creates a configuration manager and loads configuration
// from file, environment and defaults.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// Default returns a manager carrying only the built-in defaults. Used
// by library consumers that do not ship a config file.
func Default() *Manager {
	m, err := NewManager()
	if err != nil {
		// Defaults alone always unmarshal; an error here means a broken
		// config file on disk, which library embedding must not inherit.
		v := viper.New()
		setDefaultsOn(v)
		cfg := &domain.Config{}
		_ = v.Unmarshal(cfg)
		return &Manager{config: cfg}
	}
	return m
}

func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/clinrisk-engine/")

	viper.SetEnvPrefix("CLINRISK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaultsOn(nil)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; defaults and environment apply.
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaultsOn registers every default. A nil receiver targets the
// global viper instance.
func setDefaultsOn(v *viper.Viper) {
	set := viper.SetDefault
	if v != nil {
		set = v.SetDefault
	}

	// Logging defaults
	set("logging.level", "info")
	set("logging.format", "json")

	// Risk cutoffs and ensemble trust weights. The cutoffs 30/60/80 are
	// carried over from the reference rule set as tunable policy.
	set("risk.medium_cutoff", 30.0)
	set("risk.high_cutoff", 60.0)
	set("risk.critical_cutoff", 80.0)
	set("risk.heuristic_weight", 0.30)
	set("risk.neural_weight", 0.35)
	set("risk.neural_fallback_weight", 0.15)
	set("risk.complaint_weight", 0.20)
	set("risk.interaction_weight", 0.15)
	set("risk.lab_weight", 0.15)

	// Interaction fallback bonuses and thresholds (tunable policy).
	set("interaction.shared_cyp_bonus", 2)
	set("interaction.protein_binding_bonus", 1)
	set("interaction.hepatotoxicity_bonus", 1)
	set("interaction.nephrotoxicity_bonus", 1)
	set("interaction.qt_bonus", 2)
	set("interaction.maoi_serotonergic_bonus", 4)
	set("interaction.opioid_benzo_bonus", 3)
	set("interaction.anticoag_antiplatelet_bonus", 2)
	set("interaction.anticoag_nsaid_bonus", 3)
	set("interaction.major_threshold", 5)
	set("interaction.moderate_threshold", 3)
	set("interaction.minor_threshold", 1)

	// Chief-complaint analyzer tuning.
	set("complaint.negation_window", 3)
	set("complaint.confidence_per_match", 18.0)
	set("complaint.acute_max_days", 7.0)
	set("complaint.chronic_min_days", 90.0)

	// Training hyperparameters shared by both trainable models.
	set("training.epochs", 300)
	set("training.learning_rate", 0.05)
	set("training.seed", 42)
	set("training.progress_every", 50)

	// Supplementary training dataset endpoint.
	set("dataset.enabled", false)
	set("dataset.base_url", "https://clinical-datasets.example.org/v1/")
	set("dataset.timeout", "10s")
	set("dataset.rate_limit", 5)
	set("dataset.cache_size", 32)
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetRiskConfig returns the risk cutoff and weight configuration.
func (m *Manager) GetRiskConfig() domain.RiskConfig {
	return m.config.Risk
}

// GetInteractionConfig returns the interaction classifier configuration.
func (m *Manager) GetInteractionConfig() domain.InteractionConfig {
	return m.config.Interaction
}

// GetTrainingConfig returns the training hyperparameters.
func (m *Manager) GetTrainingConfig() domain.TrainingConfig {
	return m.config.Training
}

// NewLogger builds a logrus logger from the logging configuration.
func (m *Manager) NewLogger() *logrus.Logger {
	logger := logrus.New()

	if level, err := logrus.ParseLevel(m.config.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	if strings.EqualFold(m.config.Logging.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

// Validate checks configuration invariants before the engine starts.
func (m *Manager) Validate() error {
	cfg := m.config

	if cfg.Risk.MediumCutoff <= 0 || cfg.Risk.MediumCutoff >= cfg.Risk.HighCutoff {
		return fmt.Errorf("risk cutoffs must satisfy 0 < medium < high, got %.1f/%.1f",
			cfg.Risk.MediumCutoff, cfg.Risk.HighCutoff)
	}
	if cfg.Risk.HighCutoff >= cfg.Risk.CriticalCutoff || cfg.Risk.CriticalCutoff > 100 {
		return fmt.Errorf("risk cutoffs must satisfy high < critical <= 100, got %.1f/%.1f",
			cfg.Risk.HighCutoff, cfg.Risk.CriticalCutoff)
	}

	ic := cfg.Interaction
	if ic.MinorThreshold < 1 || ic.ModerateThreshold <= ic.MinorThreshold || ic.MajorThreshold <= ic.ModerateThreshold {
		return fmt.Errorf("interaction thresholds must ascend minor < moderate < major, got %d/%d/%d",
			ic.MinorThreshold, ic.ModerateThreshold, ic.MajorThreshold)
	}

	if cfg.Complaint.NegationWindow < 1 {
		return fmt.Errorf("negation window must be at least 1, got %d", cfg.Complaint.NegationWindow)
	}
	if cfg.Complaint.AcuteMaxDays >= cfg.Complaint.ChronicMinDays {
		return fmt.Errorf("chronicity boundaries must satisfy acute < chronic, got %.0f/%.0f",
			cfg.Complaint.AcuteMaxDays, cfg.Complaint.ChronicMinDays)
	}

	if cfg.Training.Epochs <= 0 {
		return fmt.Errorf("training epochs must be positive, got %d", cfg.Training.Epochs)
	}
	if cfg.Training.LearningRate <= 0 || cfg.Training.LearningRate >= 1 {
		return fmt.Errorf("learning rate must be in (0,1), got %f", cfg.Training.LearningRate)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(cfg.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}

	if cfg.Dataset.Enabled && cfg.Dataset.BaseURL == "" {
		return fmt.Errorf("dataset base URL is required when the dataset fetch is enabled")
	}

	return nil
}
