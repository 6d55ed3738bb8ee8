package risk

import "github.com/clinrisk-ensemble-engine/internal/domain"

// bundledCohort spans the input space the regressor must cover: young
// healthy patients through elderly multimorbid ones. Targets come from
// the heuristic scorer at training time, so the regressor learns a
// smooth approximation of the deterministic policy and the two models
// stay on one scale.
var bundledCohort = []domain.PatientSnapshot{
	{Age: 22, WeightKg: 68, HeightCm: 175, SystolicBP: 112, DiastolicBP: 72, HeartRate: 64, Exercise: "regular"},
	{Age: 30, WeightKg: 75, HeightCm: 180, SystolicBP: 118, DiastolicBP: 76, HeartRate: 70, Exercise: "regular"},
	{Age: 35, WeightKg: 90, HeightCm: 170, SystolicBP: 128, DiastolicBP: 82, HeartRate: 74, Smoking: "former"},
	{Age: 41, WeightKg: 102, HeightCm: 168, SystolicBP: 138, DiastolicBP: 88, HeartRate: 78, Conditions: []string{"hypertension"}},
	{Age: 48, WeightKg: 85, HeightCm: 172, SystolicBP: 144, DiastolicBP: 92, HeartRate: 80, Conditions: []string{"diabetes"}, Smoking: "current"},
	{
		Age: 55, WeightKg: 95, HeightCm: 170, SystolicBP: 150, DiastolicBP: 94, HeartRate: 82,
		Conditions:  []string{"hypertension", "diabetes"},
		Medications: []domain.Medication{{Name: "metformin"}, {Name: "lisinopril"}},
	},
	{
		Age: 62, WeightKg: 88, HeightCm: 165, SystolicBP: 158, DiastolicBP: 96, HeartRate: 86,
		Conditions:  []string{"heart disease", "hypertension"},
		Medications: []domain.Medication{{Name: "aspirin"}, {Name: "atorvastatin"}, {Name: "metoprolol"}},
		Smoking:     "former",
	},
	{
		Age: 68, WeightKg: 80, HeightCm: 162, SystolicBP: 166, DiastolicBP: 98, HeartRate: 88,
		Conditions:  []string{"kidney disease", "hypertension", "diabetes"},
		Medications: []domain.Medication{{Name: "lisinopril"}, {Name: "furosemide"}, {Name: "metformin"}, {Name: "amlodipine"}},
		Labs:        &domain.LabPanel{CreatinineMgDL: 1.8, EGFR: 48},
	},
	{
		Age: 74, WeightKg: 78, HeightCm: 168, SystolicBP: 172, DiastolicBP: 100, HeartRate: 92,
		Conditions:  []string{"heart disease", "atrial fibrillation", "hypertension"},
		Medications: []domain.Medication{{Name: "warfarin"}, {Name: "metoprolol"}, {Name: "furosemide"}, {Name: "atorvastatin"}, {Name: "omeprazole"}},
		Labs:        &domain.LabPanel{INR: 2.8},
		Alcohol:     "moderate",
	},
	{
		Age: 79, WeightKg: 70, HeightCm: 160, SystolicBP: 182, DiastolicBP: 104, HeartRate: 98,
		Conditions:  []string{"heart failure", "kidney disease", "copd", "diabetes"},
		Medications: []domain.Medication{{Name: "furosemide"}, {Name: "lisinopril"}, {Name: "metformin"}, {Name: "tiotropium"}, {Name: "aspirin"}, {Name: "atorvastatin"}},
		Labs:        &domain.LabPanel{CreatinineMgDL: 2.2, EGFR: 28},
		Smoking:     "current",
		Exercise:    "none",
	},
	{
		Age: 84, WeightKg: 64, HeightCm: 158, SystolicBP: 148, DiastolicBP: 86, HeartRate: 74,
		Conditions:  []string{"stroke", "hypertension", "atrial fibrillation"},
		Medications: []domain.Medication{{Name: "apixaban"}, {Name: "amlodipine"}, {Name: "sertraline"}},
		Exercise:    "none",
	},
	{
		Age: 88, WeightKg: 58, HeightCm: 155, SystolicBP: 176, DiastolicBP: 102, HeartRate: 96,
		Conditions:  []string{"heart disease", "kidney disease", "liver disease", "cancer"},
		Medications: []domain.Medication{{Name: "oxycodone"}, {Name: "lorazepam"}, {Name: "furosemide"}, {Name: "omeprazole"}, {Name: "sertraline"}},
		Labs:        &domain.LabPanel{CreatinineMgDL: 2.6, EGFR: 24, ASTUnitsL: 130, ALTUnitsL: 110, INR: 3.4},
		Exercise:    "none",
	},
}
