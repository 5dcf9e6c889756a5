package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CaseStatus is the dispatch state of an emergency case.
type CaseStatus string

const (
	CaseStatusPending    CaseStatus = "PENDING"
	CaseStatusDispatched CaseStatus = "DISPATCHED"
	CaseStatusArrived    CaseStatus = "ARRIVED"
	CaseStatusCompleted  CaseStatus = "COMPLETED"
)

// LocationUnknown marks a case whose location collection timed out.
const LocationUnknown = "UNKNOWN"

// caseTransitions is the forward-only transition table. Direct resolve to
// COMPLETED is allowed from any non-terminal state; everything else must step
// PENDING → DISPATCHED → ARRIVED → COMPLETED.
var caseTransitions = map[CaseStatus][]CaseStatus{
	CaseStatusPending:    {CaseStatusDispatched, CaseStatusCompleted},
	CaseStatusDispatched: {CaseStatusArrived, CaseStatusCompleted},
	CaseStatusArrived:    {CaseStatusCompleted},
	CaseStatusCompleted:  {},
}

// CaseTransition is one entry of the per-case transition log.
type CaseTransition struct {
	Status    CaseStatus `json:"status"`
	Actor     string     `json:"actor"`
	Timestamp time.Time  `json:"timestamp"`
}

// ChannelDelivery records the outcome of one notification channel send.
type ChannelDelivery struct {
	Channel    string    `json:"channel"`
	Target     string    `json:"target"`
	Attempts   int       `json:"attempts"`
	Delivered  bool      `json:"delivered"`
	LastError  string    `json:"last_error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// EmergencyCase is owned exclusively by the orchestrator until it reaches
// COMPLETED, then handed to the persistence collaborator.
type EmergencyCase struct {
	ID          uuid.UUID          `json:"id"`
	Severity    SeverityAssessment `json:"severity"`
	Contact     string             `json:"contact"`
	Location    string             `json:"location,omitempty"`
	Status      CaseStatus         `json:"status"`
	Notes       []string           `json:"notes,omitempty"`
	Transitions []CaseTransition   `json:"transitions"`
	Deliveries  []ChannelDelivery  `json:"deliveries,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// CanTransition reports whether moving from the current status to the target
// is allowed by the transition table.
func (c *EmergencyCase) CanTransition(to CaseStatus) bool {
	for _, next := range caseTransitions[c.Status] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplyTransition moves the case to the target status and appends to the
// transition log. The caller must hold the per-case lock and must have
// validated the transition first.
func (c *EmergencyCase) ApplyTransition(to CaseStatus, actor string, now time.Time) {
	c.Status = to
	c.Transitions = append(c.Transitions, CaseTransition{
		Status:    to,
		Actor:     actor,
		Timestamp: now,
	})
}

// IsTerminal reports whether the case has reached its final state.
func (c *EmergencyCase) IsTerminal() bool {
	return c.Status == CaseStatusCompleted
}

// AddNote appends a free-text note to the case.
func (c *EmergencyCase) AddNote(note string) {
	c.Notes = append(c.Notes, note)
}

// EmergencyCaseRecord is the persisted shape of a case, written once the case
// reaches its terminal state. Structured fields are flattened into JSONB.
type EmergencyCaseRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Severity   string    `gorm:"type:varchar(20);not null;index" json:"severity"`
	Score      float64   `gorm:"not null" json:"score"`
	Department string    `gorm:"type:varchar(100)" json:"department"`
	Symptoms   string    `gorm:"type:text" json:"symptoms"`
	Contact    string    `gorm:"type:varchar(100)" json:"contact"`
	Location   string    `gorm:"type:varchar(255)" json:"location"`
	Status     string    `gorm:"type:varchar(20);not null" json:"status"`
	Detail     JSON      `gorm:"type:jsonb" json:"detail,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	ClosedAt   time.Time `gorm:"autoCreateTime" json:"closed_at"`
}

func (EmergencyCaseRecord) TableName() string {
	return "emergency_cases"
}

// ToRecord flattens the case for the persistence collaborator.
func (c *EmergencyCase) ToRecord() *EmergencyCaseRecord {
	transitions := make([]interface{}, 0, len(c.Transitions))
	for _, t := range c.Transitions {
		transitions = append(transitions, map[string]interface{}{
			"status":    string(t.Status),
			"actor":     t.Actor,
			"timestamp": t.Timestamp,
		})
	}
	deliveries := make([]interface{}, 0, len(c.Deliveries))
	for _, d := range c.Deliveries {
		deliveries = append(deliveries, map[string]interface{}{
			"channel":   d.Channel,
			"attempts":  d.Attempts,
			"delivered": d.Delivered,
			"error":     d.LastError,
		})
	}
	return &EmergencyCaseRecord{
		ID:         c.ID,
		Severity:   string(c.Severity.Level),
		Score:      c.Severity.Score,
		Department: c.Severity.Department,
		Symptoms:   strings.Join(c.Severity.MatchedSymptoms, ", "),
		Contact:    c.Contact,
		Location:   c.Location,
		Status:     string(c.Status),
		Detail: JSON{
			"notes":       c.Notes,
			"transitions": transitions,
			"deliveries":  deliveries,
		},
		CreatedAt: c.CreatedAt,
	}
}

// ToCase rebuilds a case from its persisted record so completed cases read
// through the same path as active ones. Detail values arrive either as the
// typed values ToRecord stored or as their JSONB round-trip shapes; both are
// accepted.
func (r *EmergencyCaseRecord) ToCase() *EmergencyCase {
	var symptoms []string
	if r.Symptoms != "" {
		symptoms = strings.Split(r.Symptoms, ", ")
	}
	level := SeverityLevel(r.Severity)
	return &EmergencyCase{
		ID: r.ID,
		Severity: SeverityAssessment{
			MatchedSymptoms:         symptoms,
			Score:                   r.Score,
			Level:                   level,
			NeedsAmbulance:          level == SeverityCritical,
			NeedsImmediateAttention: true,
			Department:              r.Department,
		},
		Contact:     r.Contact,
		Location:    r.Location,
		Status:      CaseStatus(r.Status),
		Notes:       r.detailNotes(),
		Transitions: r.detailTransitions(),
		Deliveries:  r.detailDeliveries(),
		CreatedAt:   r.CreatedAt,
	}
}

func (r *EmergencyCaseRecord) detailNotes() []string {
	switch v := r.Detail["notes"].(type) {
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		notes := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				notes = append(notes, s)
			}
		}
		return notes
	}
	return nil
}

func (r *EmergencyCaseRecord) detailTransitions() []CaseTransition {
	items, _ := r.Detail["transitions"].([]interface{})
	var transitions []CaseTransition
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		t := CaseTransition{}
		if s, ok := m["status"].(string); ok {
			t.Status = CaseStatus(s)
		}
		if s, ok := m["actor"].(string); ok {
			t.Actor = s
		}
		switch ts := m["timestamp"].(type) {
		case time.Time:
			t.Timestamp = ts
		case string:
			t.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		}
		transitions = append(transitions, t)
	}
	return transitions
}

func (r *EmergencyCaseRecord) detailDeliveries() []ChannelDelivery {
	items, _ := r.Detail["deliveries"].([]interface{})
	var deliveries []ChannelDelivery
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		d := ChannelDelivery{}
		if s, ok := m["channel"].(string); ok {
			d.Channel = s
		}
		switch n := m["attempts"].(type) {
		case int:
			d.Attempts = n
		case float64:
			d.Attempts = int(n)
		}
		if b, ok := m["delivered"].(bool); ok {
			d.Delivered = b
		}
		if s, ok := m["error"].(string); ok {
			d.LastError = s
		}
		deliveries = append(deliveries, d)
	}
	return deliveries
}
