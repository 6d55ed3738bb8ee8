package service

import (
	"fmt"

	"github.com/clinrisk-ensemble-engine/internal/domain"
)

// vitalsFlags applies the blood pressure and BMI thresholds.
func vitalsFlags(p *domain.PatientSnapshot) []domain.Flag {
	var flags []domain.Flag

	switch {
	case p.SystolicBP >= 180 || p.DiastolicBP >= 110:
		flags = append(flags, domain.Flag{
			Severity: domain.FLAG_CRITICAL,
			Category: "blood_pressure",
			Message:  fmt.Sprintf("Blood pressure %d/%d is in hypertensive crisis range.", p.SystolicBP, p.DiastolicBP),
		})
	case p.SystolicBP >= 160 || p.DiastolicBP >= 100:
		flags = append(flags, domain.Flag{
			Severity: domain.FLAG_WARNING,
			Category: "blood_pressure",
			Message:  fmt.Sprintf("Blood pressure %d/%d suggests uncontrolled hypertension.", p.SystolicBP, p.DiastolicBP),
		})
	case p.SystolicBP >= 140 || p.DiastolicBP >= 90:
		flags = append(flags, domain.Flag{
			Severity: domain.FLAG_INFO,
			Category: "blood_pressure",
			Message:  fmt.Sprintf("Blood pressure %d/%d is elevated; monitor closely.", p.SystolicBP, p.DiastolicBP),
		})
	}

	switch {
	case p.BMI >= 35:
		flags = append(flags, domain.Flag{
			Severity: domain.FLAG_WARNING,
			Category: "bmi",
			Message:  fmt.Sprintf("BMI %.1f indicates class 2 obesity; review dosing and cardiovascular risk.", p.BMI),
		})
	case p.BMI >= 30:
		flags = append(flags, domain.Flag{
			Severity: domain.FLAG_INFO,
			Category: "bmi",
			Message:  fmt.Sprintf("BMI %.1f indicates obesity; encourage lifestyle optimization.", p.BMI),
		})
	}

	return flags
}

// polypharmacyFlag fires at five or more distinct medications.
func polypharmacyFlag(p *domain.PatientSnapshot) []domain.Flag {
	count := len(p.MedicationNames())
	if count < 5 {
		return nil
	}
	severity := domain.FLAG_WARNING
	if count >= 10 {
		severity = domain.FLAG_CRITICAL
	}
	return []domain.Flag{{
		Severity: severity,
		Category: "polypharmacy",
		Message:  fmt.Sprintf("%d concurrent medications; review for deprescribing opportunities.", count),
	}}
}

// labFlags applies the renal, hepatic and coagulation thresholds. A nil
// or malformed panel yields no flags; the caller reports the lab source
// unavailable instead.
func labFlags(labs *domain.LabPanel) []domain.Flag {
	if labs == nil || !labs.IsFinite() {
		return nil
	}
	var flags []domain.Flag

	switch {
	case labs.INR > 4.5:
		flags = append(flags, domain.Flag{
			Severity: domain.FLAG_CRITICAL,
			Category: "coagulation",
			Message:  fmt.Sprintf("INR %.1f is critically elevated; bleeding risk, hold anticoagulation and recheck.", labs.INR),
		})
	case labs.INR > 3.0:
		flags = append(flags, domain.Flag{
			Severity: domain.FLAG_WARNING,
			Category: "coagulation",
			Message:  fmt.Sprintf("INR %.1f is supratherapeutic; adjust anticoagulation.", labs.INR),
		})
	}

	switch {
	case labs.EGFR > 0 && labs.EGFR < 30:
		flags = append(flags, domain.Flag{
			Severity: domain.FLAG_CRITICAL,
			Category: "renal",
			Message:  fmt.Sprintf("eGFR %.0f indicates severe renal impairment; avoid nephrotoxic agents and renally dose.", labs.EGFR),
		})
	case labs.EGFR > 0 && labs.EGFR < 60:
		flags = append(flags, domain.Flag{
			Severity: domain.FLAG_WARNING,
			Category: "renal",
			Message:  fmt.Sprintf("eGFR %.0f indicates reduced renal function; review renally cleared medications.", labs.EGFR),
		})
	case labs.CreatinineMgDL > 1.5:
		flags = append(flags, domain.Flag{
			Severity: domain.FLAG_WARNING,
			Category: "renal",
			Message:  fmt.Sprintf("Creatinine %.1f mg/dL is elevated; assess renal function.", labs.CreatinineMgDL),
		})
	}

	if labs.ASTUnitsL > 120 || labs.ALTUnitsL > 120 {
		flags = append(flags, domain.Flag{
			Severity: domain.FLAG_WARNING,
			Category: "hepatic",
			Message:  "Transaminases above three times the reference limit; review hepatotoxic medications.",
		})
	} else if labs.ASTUnitsL > 80 || labs.ALTUnitsL > 80 {
		flags = append(flags, domain.Flag{
			Severity: domain.FLAG_INFO,
			Category: "hepatic",
			Message:  "Mildly elevated transaminases; monitor liver function.",
		})
	}

	return flags
}

// complaintFlags surfaces the analyzer's red flags.
func complaintFlags(analysis *domain.ComplaintAnalysis) []domain.Flag {
	if analysis == nil {
		return nil
	}
	var flags []domain.Flag
	for _, term := range analysis.RedFlags {
		severity := domain.FLAG_WARNING
		if analysis.Acuity == domain.ACUITY_EMERGENT {
			severity = domain.FLAG_CRITICAL
		}
		flags = append(flags, domain.Flag{
			Severity: severity,
			Category: "red_flag_symptom",
			Message:  fmt.Sprintf("Red-flag symptom reported: %s.", term),
		})
	}
	return flags
}

// interactionFlags surfaces the high-severity predicted interactions.
func interactionFlags(predictions []domain.InteractionPrediction) []domain.Flag {
	var flags []domain.Flag
	for _, p := range predictions {
		switch p.Severity {
		case domain.INTERACTION_MAJOR:
			flags = append(flags, domain.Flag{
				Severity: domain.FLAG_CRITICAL,
				Category: "drug_interaction",
				Message:  fmt.Sprintf("Major interaction predicted between %s and %s: %s.", p.DrugA, p.DrugB, p.Rationale),
			})
		case domain.INTERACTION_MODERATE:
			flags = append(flags, domain.Flag{
				Severity: domain.FLAG_WARNING,
				Category: "drug_interaction",
				Message:  fmt.Sprintf("Moderate interaction predicted between %s and %s.", p.DrugA, p.DrugB),
			})
		}
	}
	return flags
}

// allergyFlags converts allergy alerts into clinical flags. A direct
// match is an absolute contraindication.
func allergyFlags(report domain.AllergyReport) []domain.Flag {
	var flags []domain.Flag
	for _, alert := range report.Alerts {
		severity := domain.FLAG_WARNING
		if alert.Type == domain.ALERT_DIRECT {
			severity = domain.FLAG_CRITICAL
		}
		flags = append(flags, domain.Flag{
			Severity: severity,
			Category: "allergy",
			Message:  alert.Message,
		})
	}
	return flags
}

// worstFlagScore converts a flag set into a sub-model score on the
// ensemble scale.
func worstFlagScore(flags []domain.Flag) float64 {
	score := 10.0
	for _, f := range flags {
		switch f.Severity {
		case domain.FLAG_CRITICAL:
			if score < 90 {
				score = 90
			}
		case domain.FLAG_WARNING:
			if score < 60 {
				score = 60
			}
		case domain.FLAG_INFO:
			if score < 35 {
				score = 35
			}
		}
	}
	return score
}
