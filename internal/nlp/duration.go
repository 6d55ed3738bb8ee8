package nlp

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/clinrisk-ensemble-engine/internal/domain"
)

var durationPattern = regexp.MustCompile(`(\d+)\s*(day|week|month|year)s?`)

var unitDays = map[string]float64{
	"day":   1,
	"week":  7,
	"month": 30,
	"year":  365,
}

// parseDuration extracts an onset duration from the raw complaint text.
// Numeric expressions ("3 days", "2 weeks") win over qualitative cues
// ("today" is acute, "chronic" or a bare "years" is chronic). Returns
// nil when the text carries no duration signal.
func parseDuration(text string, cfg domain.ComplaintConfig) *domain.DurationEstimate {
	lower := strings.ToLower(text)

	if m := durationPattern.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			days := float64(n) * unitDays[m[2]]
			return &domain.DurationEstimate{
				EstimatedDays: days,
				Course:        courseForDays(days, cfg),
			}
		}
	}

	switch {
	case strings.Contains(lower, "today") || strings.Contains(lower, "just now") ||
		strings.Contains(lower, "sudden"):
		return &domain.DurationEstimate{EstimatedDays: 0.5, Course: domain.COURSE_ACUTE}
	case strings.Contains(lower, "yesterday"):
		return &domain.DurationEstimate{EstimatedDays: 1, Course: domain.COURSE_ACUTE}
	case strings.Contains(lower, "chronic") || strings.Contains(lower, "years"):
		return &domain.DurationEstimate{
			EstimatedDays: cfg.ChronicMinDays * 2,
			Course:        domain.COURSE_CHRONIC,
		}
	}
	return nil
}

// courseForDays buckets a duration into the three-way chronicity scale.
func courseForDays(days float64, cfg domain.ComplaintConfig) domain.Chronicity {
	switch {
	case days < cfg.AcuteMaxDays:
		return domain.COURSE_ACUTE
	case days <= cfg.ChronicMinDays:
		return domain.COURSE_SUBACUTE
	default:
		return domain.COURSE_CHRONIC
	}
}
