package entities

// Report is a radiology report submitted for scan analysis.
type Report struct {
	PatientID       string  `json:"patientId" validate:"max=100"`
	ReportText      string  `json:"reportText" validate:"required,min=10,max=20000"`
	ScanType        string  `json:"scanType,omitempty" validate:"max=100"`
	PatientAge      float64 `json:"patientAge,omitempty" validate:"gte=0,lte=150"`
	PatientGender   string  `json:"patientGender,omitempty" validate:"max=50"`
	ClinicalHistory string  `json:"clinicalHistory,omitempty" validate:"max=5000"`
}
