// Package domain contains the core business entities for the clinical risk
// ensemble engine: the patient snapshot contract, sub-model outputs, and the
// consensus risk assessment combining them.
package domain

// RiskLevel is the categorical consensus risk of a patient assessment.
type RiskLevel string

const (
	RISK_LOW      RiskLevel = "LOW"
	RISK_MEDIUM   RiskLevel = "MEDIUM"
	RISK_HIGH     RiskLevel = "HIGH"
	RISK_CRITICAL RiskLevel = "CRITICAL"
)

// IsValid validates the risk level. Only valid levels may reach
// clinical decision-making.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RISK_LOW, RISK_MEDIUM, RISK_HIGH, RISK_CRITICAL:
		return true
	default:
		return false
	}
}

// String returns the string representation for logging and audit trails.
func (r RiskLevel) String() string {
	return string(r)
}

// Rank returns the ordering of risk levels, LOW lowest.
func (r RiskLevel) Rank() int {
	switch r {
	case RISK_LOW:
		return 0
	case RISK_MEDIUM:
		return 1
	case RISK_HIGH:
		return 2
	case RISK_CRITICAL:
		return 3
	default:
		return -1
	}
}

// RequiresEscalation reports whether the level warrants immediate
// clinical follow-up.
func (r RiskLevel) RequiresEscalation() bool {
	return r == RISK_HIGH || r == RISK_CRITICAL
}

// MaxRiskLevel returns the higher-ranked of two levels.
func MaxRiskLevel(a, b RiskLevel) RiskLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// FlagSeverity grades an individual clinical flag.
type FlagSeverity string

const (
	FLAG_INFO     FlagSeverity = "info"
	FLAG_WARNING  FlagSeverity = "warning"
	FLAG_CRITICAL FlagSeverity = "critical"
)

// IsValid validates the flag severity.
func (s FlagSeverity) IsValid() bool {
	switch s {
	case FLAG_INFO, FLAG_WARNING, FLAG_CRITICAL:
		return true
	default:
		return false
	}
}

func (s FlagSeverity) String() string {
	return string(s)
}

// InteractionSeverity is the four-class outcome of the drug-interaction
// classifier.
type InteractionSeverity string

const (
	INTERACTION_NONE     InteractionSeverity = "none"
	INTERACTION_MINOR    InteractionSeverity = "minor"
	INTERACTION_MODERATE InteractionSeverity = "moderate"
	INTERACTION_MAJOR    InteractionSeverity = "major"
)

// InteractionSeverities lists the classifier classes in ascending order.
// The index of each class doubles as its output-layer position.
var InteractionSeverities = []InteractionSeverity{
	INTERACTION_NONE,
	INTERACTION_MINOR,
	INTERACTION_MODERATE,
	INTERACTION_MAJOR,
}

// IsValid validates the interaction severity.
func (s InteractionSeverity) IsValid() bool {
	switch s {
	case INTERACTION_NONE, INTERACTION_MINOR, INTERACTION_MODERATE, INTERACTION_MAJOR:
		return true
	default:
		return false
	}
}

func (s InteractionSeverity) String() string {
	return string(s)
}

// Rank returns the ordering of interaction severities, none lowest.
func (s InteractionSeverity) Rank() int {
	switch s {
	case INTERACTION_NONE:
		return 0
	case INTERACTION_MINOR:
		return 1
	case INTERACTION_MODERATE:
		return 2
	case INTERACTION_MAJOR:
		return 3
	default:
		return -1
	}
}

// AlertType categorizes an allergy alert by how the match was made,
// from most to least specific.
type AlertType string

const (
	ALERT_DIRECT         AlertType = "direct"
	ALERT_CROSS_REACTIVE AlertType = "cross-reactive"
	ALERT_CLASS_BASED    AlertType = "class-based"
	ALERT_EXCIPIENT      AlertType = "excipient"
)

// IsValid validates the alert type.
func (t AlertType) IsValid() bool {
	switch t {
	case ALERT_DIRECT, ALERT_CROSS_REACTIVE, ALERT_CLASS_BASED, ALERT_EXCIPIENT:
		return true
	default:
		return false
	}
}

func (t AlertType) String() string {
	return string(t)
}

// Acuity is the urgency classification of a chief complaint.
type Acuity string

const (
	ACUITY_ROUTINE     Acuity = "routine"
	ACUITY_SEMI_URGENT Acuity = "semi-urgent"
	ACUITY_URGENT      Acuity = "urgent"
	ACUITY_EMERGENT    Acuity = "emergent"
)

// IsValid validates the acuity level.
func (a Acuity) IsValid() bool {
	switch a {
	case ACUITY_ROUTINE, ACUITY_SEMI_URGENT, ACUITY_URGENT, ACUITY_EMERGENT:
		return true
	default:
		return false
	}
}

func (a Acuity) String() string {
	return string(a)
}

// Rank returns the ordering of acuity levels, routine lowest.
func (a Acuity) Rank() int {
	switch a {
	case ACUITY_ROUTINE:
		return 0
	case ACUITY_SEMI_URGENT:
		return 1
	case ACUITY_URGENT:
		return 2
	case ACUITY_EMERGENT:
		return 3
	default:
		return -1
	}
}

// Escalate raises the acuity one level, saturating at emergent.
func (a Acuity) Escalate() Acuity {
	switch a {
	case ACUITY_ROUTINE:
		return ACUITY_SEMI_URGENT
	case ACUITY_SEMI_URGENT:
		return ACUITY_URGENT
	case ACUITY_URGENT, ACUITY_EMERGENT:
		return ACUITY_EMERGENT
	default:
		return a
	}
}

// Chronicity buckets a complaint duration.
type Chronicity string

const (
	COURSE_ACUTE    Chronicity = "acute"
	COURSE_SUBACUTE Chronicity = "subacute"
	COURSE_CHRONIC  Chronicity = "chronic"
)

// IsValid validates the chronicity bucket.
func (c Chronicity) IsValid() bool {
	switch c {
	case COURSE_ACUTE, COURSE_SUBACUTE, COURSE_CHRONIC:
		return true
	default:
		return false
	}
}

func (c Chronicity) String() string {
	return string(c)
}

// TrainingState is the lifecycle state of a trainable sub-model.
type TrainingState string

const (
	STATE_UNTRAINED TrainingState = "UNTRAINED"
	STATE_TRAINING  TrainingState = "TRAINING"
	STATE_TRAINED   TrainingState = "TRAINED"
	STATE_ERROR     TrainingState = "ERROR"
)

// IsValid validates the training state.
func (s TrainingState) IsValid() bool {
	switch s {
	case STATE_UNTRAINED, STATE_TRAINING, STATE_TRAINED, STATE_ERROR:
		return true
	default:
		return false
	}
}

func (s TrainingState) String() string {
	return string(s)
}

// UsesFallback reports whether predictions in this state must route to
// the model's deterministic fallback.
func (s TrainingState) UsesFallback() bool {
	return s != STATE_TRAINED
}
