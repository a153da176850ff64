package entities

// Lifestyle holds self-reported lifestyle flags.
type Lifestyle struct {
	Smoking       bool `json:"smoking"`
	Alcohol       bool `json:"alcohol"`
	Exercise      bool `json:"exercise"`
	CalciumIntake bool `json:"calciumIntake"`
}

// PatientContext is the structured patient data supplied alongside a scan.
type PatientContext struct {
	Age               float64    `json:"age" validate:"gte=0,lte=150"`
	Gender            string     `json:"gender" validate:"required,max=50"`
	PreviousFractures int        `json:"previousFractures,omitempty" validate:"gte=0,lte=100"`
	Medications       []string   `json:"medications,omitempty"`
	FamilyHistory     []string   `json:"familyHistory,omitempty"`
	Lifestyle         *Lifestyle `json:"lifestyle,omitempty"`
}
