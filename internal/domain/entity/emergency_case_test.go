package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCaseTransitionTable(t *testing.T) {
	tests := []struct {
		from    CaseStatus
		to      CaseStatus
		allowed bool
	}{
		{CaseStatusPending, CaseStatusDispatched, true},
		{CaseStatusPending, CaseStatusCompleted, true},
		{CaseStatusPending, CaseStatusArrived, false},
		{CaseStatusDispatched, CaseStatusArrived, true},
		{CaseStatusDispatched, CaseStatusCompleted, true},
		{CaseStatusDispatched, CaseStatusPending, false},
		{CaseStatusArrived, CaseStatusCompleted, true},
		{CaseStatusArrived, CaseStatusDispatched, false},
		{CaseStatusArrived, CaseStatusPending, false},
		{CaseStatusCompleted, CaseStatusPending, false},
		{CaseStatusCompleted, CaseStatusDispatched, false},
		{CaseStatusCompleted, CaseStatusArrived, false},
		{CaseStatusCompleted, CaseStatusCompleted, false},
	}
	for _, tt := range tests {
		c := &EmergencyCase{Status: tt.from}
		assert.Equal(t, tt.allowed, c.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestApplyTransitionAppendsLog(t *testing.T) {
	now := time.Now()
	c := &EmergencyCase{ID: uuid.New(), Status: CaseStatusPending}

	c.ApplyTransition(CaseStatusDispatched, "nurse-1", now)
	c.ApplyTransition(CaseStatusArrived, "driver-7", now.Add(time.Minute))

	assert.Equal(t, CaseStatusArrived, c.Status)
	assert.Len(t, c.Transitions, 2)
	assert.Equal(t, CaseStatusDispatched, c.Transitions[0].Status)
	assert.Equal(t, "nurse-1", c.Transitions[0].Actor)
	assert.Equal(t, CaseStatusArrived, c.Transitions[1].Status)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, (&EmergencyCase{Status: CaseStatusPending}).IsTerminal())
	assert.False(t, (&EmergencyCase{Status: CaseStatusDispatched}).IsTerminal())
	assert.False(t, (&EmergencyCase{Status: CaseStatusArrived}).IsTerminal())
	assert.True(t, (&EmergencyCase{Status: CaseStatusCompleted}).IsTerminal())
}

func TestToRecordFlattensCase(t *testing.T) {
	now := time.Now()
	c := &EmergencyCase{
		ID: uuid.New(),
		Severity: SeverityAssessment{
			MatchedSymptoms: []string{"chest pain", "dizziness"},
			Score:           0.9,
			Level:           SeverityCritical,
			Department:      "Cardiology",
		},
		Contact:   "+1555000111",
		Location:  "12 Main St",
		Status:    CaseStatusCompleted,
		Notes:     []string{"patient conscious"},
		CreatedAt: now,
	}
	c.ApplyTransition(CaseStatusCompleted, "system", now)

	record := c.ToRecord()

	assert.Equal(t, c.ID, record.ID)
	assert.Equal(t, "CRITICAL", record.Severity)
	assert.Equal(t, 0.9, record.Score)
	assert.Equal(t, "Cardiology", record.Department)
	assert.Equal(t, "chest pain, dizziness", record.Symptoms)
	assert.Equal(t, "COMPLETED", record.Status)
	assert.Equal(t, now, record.CreatedAt)
	assert.Contains(t, record.Detail, "transitions")
	assert.Contains(t, record.Detail, "notes")
}
