package dto

// Request DTOs

type AssessSymptomsRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// Response DTOs

type AssessmentResponse struct {
	MatchedSymptoms         []string `json:"matched_symptoms"`
	Score                   float64  `json:"score"`
	Level                   string   `json:"level"`
	NeedsAmbulance          bool     `json:"needs_ambulance"`
	NeedsImmediateAttention bool     `json:"needs_immediate_attention"`
	Department              string   `json:"department"`
	FirstAidTips            []string `json:"first_aid_tips"`
	Notes                   string   `json:"notes"`
}
