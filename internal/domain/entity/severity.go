package entity

// SeverityLevel is the triage output bucket.
type SeverityLevel string

const (
	SeverityCritical  SeverityLevel = "CRITICAL"
	SeverityUrgent    SeverityLevel = "URGENT"
	SeverityNonUrgent SeverityLevel = "NON_URGENT"
)

// SymptomEntry is one row of the symptom lexicon: a lowercase phrase, its
// severity weight in (0,1], the department it points at, and the override
// flags. Entries are fixed at load time.
type SymptomEntry struct {
	Phrase            string  `json:"phrase"`
	Weight            float64 `json:"weight"`
	Department        string  `json:"department"`
	ForcesCritical    bool    `json:"forces_critical"`
	AmbulanceOverride bool    `json:"ambulance_override"`
}

// SeverityAssessment is the immutable result of scoring one inbound message.
// It is handed to the caller and never persisted by the core.
type SeverityAssessment struct {
	MatchedSymptoms         []string      `json:"matched_symptoms"`
	Score                   float64       `json:"score"`
	Level                   SeverityLevel `json:"level"`
	NeedsAmbulance          bool          `json:"needs_ambulance"`
	NeedsImmediateAttention bool          `json:"needs_immediate_attention"`
	Department              string        `json:"department"`
	FirstAidTips            []string      `json:"first_aid_tips"`
	Notes                   string        `json:"notes"`
}
