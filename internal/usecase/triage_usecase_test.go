package usecase

import (
	"context"
	"testing"

	"medassist/config"
	"medassist/internal/domain/entity"
	"medassist/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTriage(t *testing.T) TriageUsecase {
	t.Helper()
	lexicon, err := service.LoadLexicon("")
	require.NoError(t, err)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewTriageUsecase(log, lexicon, config.TriageConfig{
		ScoreCap:          2.0,
		CriticalThreshold: 0.7,
		UrgentThreshold:   0.4,
	})
}

func TestAssessNoMatches(t *testing.T) {
	triage := newTestTriage(t)

	assessment := triage.Assess(context.Background(), "I feel perfectly fine today")

	assert.Empty(t, assessment.MatchedSymptoms)
	assert.Zero(t, assessment.Score)
	assert.Equal(t, entity.SeverityNonUrgent, assessment.Level)
	assert.False(t, assessment.NeedsAmbulance)
	assert.False(t, assessment.NeedsImmediateAttention)
	assert.Equal(t, service.DepartmentGeneral, assessment.Department)
}

func TestAssessEmptyText(t *testing.T) {
	triage := newTestTriage(t)

	assessment := triage.Assess(context.Background(), "   ")

	assert.Empty(t, assessment.MatchedSymptoms)
	assert.Equal(t, entity.SeverityNonUrgent, assessment.Level)
}

func TestAssessMildSymptomIsNonUrgent(t *testing.T) {
	triage := newTestTriage(t)

	assessment := triage.Assess(context.Background(), "mild headache since morning")

	// Overlapping phrases both count: "mild headache" and "headache".
	assert.Equal(t, []string{"headache", "mild headache"}, assessment.MatchedSymptoms)
	assert.Equal(t, entity.SeverityNonUrgent, assessment.Level)
	assert.False(t, assessment.NeedsAmbulance)
	assert.False(t, assessment.NeedsImmediateAttention)
	assert.Equal(t, "Neurology", assessment.Department)
}

func TestAssessForcedCriticalOverridesScore(t *testing.T) {
	triage := newTestTriage(t)

	assessment := triage.Assess(context.Background(), "he is choking on food")

	// Raw weight 0.95 over a cap of 2.0 stays below the critical threshold,
	// but a forced-critical match always escalates.
	assert.Less(t, assessment.Score, 0.7)
	assert.Equal(t, entity.SeverityCritical, assessment.Level)
	assert.True(t, assessment.NeedsAmbulance)
	assert.True(t, assessment.NeedsImmediateAttention)
}

func TestAssessApostropheNormalization(t *testing.T) {
	triage := newTestTriage(t)

	assessment := triage.Assess(context.Background(), "Help, I CAN'T BREATHE!")

	assert.Contains(t, assessment.MatchedSymptoms, "cant breathe")
	assert.Equal(t, entity.SeverityCritical, assessment.Level)
	assert.True(t, assessment.NeedsAmbulance)
	assert.Equal(t, "Pulmonology", assessment.Department)
}

func TestAssessDepartmentByWeightSum(t *testing.T) {
	triage := newTestTriage(t)

	// Cardiology 1.0 beats Pulmonology 0.95.
	assessment := triage.Assess(context.Background(), "severe chest pain, can't breathe")

	assert.Equal(t, "Cardiology", assessment.Department)
	assert.Equal(t, entity.SeverityCritical, assessment.Level)
	assert.True(t, assessment.NeedsAmbulance)
	assert.NotEmpty(t, assessment.FirstAidTips)
}

func TestAssessDepartmentTieBreaksLexically(t *testing.T) {
	triage := newTestTriage(t)

	// "fever" and "back pain" both weigh 0.4 in different departments.
	assessment := triage.Assess(context.Background(), "fever and back pain")

	assert.Equal(t, "General Medicine", assessment.Department)
}

func TestAssessScoreMonotonicUnderAddedSymptoms(t *testing.T) {
	triage := newTestTriage(t)
	ctx := context.Background()

	base := triage.Assess(ctx, "fever")
	more := triage.Assess(ctx, "fever and vomiting")
	evenMore := triage.Assess(ctx, "fever and vomiting and dizziness")

	assert.LessOrEqual(t, base.Score, more.Score)
	assert.LessOrEqual(t, more.Score, evenMore.Score)
}

func TestAssessScoreNeverExceedsOne(t *testing.T) {
	triage := newTestTriage(t)

	assessment := triage.Assess(context.Background(),
		"chest pain heart attack stroke unconscious severe bleeding seizure gunshot")

	assert.LessOrEqual(t, assessment.Score, 1.0)
	assert.Equal(t, entity.SeverityCritical, assessment.Level)
}

func TestAssessUrgentBand(t *testing.T) {
	triage := newTestTriage(t)

	// high fever 0.7 + fever 0.4 = 1.1 raw, 0.55 normalized: urgent band.
	assessment := triage.Assess(context.Background(), "high fever all night")

	assert.Equal(t, entity.SeverityUrgent, assessment.Level)
	assert.False(t, assessment.NeedsAmbulance)
	assert.True(t, assessment.NeedsImmediateAttention)
}

func TestAssessFirstAidFromTopMatch(t *testing.T) {
	triage := newTestTriage(t)

	assessment := triage.Assess(context.Background(), "sudden chest pain")

	require.NotEmpty(t, assessment.FirstAidTips)
	assert.Contains(t, assessment.FirstAidTips, "Have the patient sit upright and stay calm")
}

func TestAssessFirstAidFallsBackToGeneric(t *testing.T) {
	triage := newTestTriage(t)

	// "back pain" carries no dedicated guidance, so the level-generic tips apply.
	assessment := triage.Assess(context.Background(), "back pain")

	lexicon, err := service.LoadLexicon("")
	require.NoError(t, err)
	assert.Equal(t, lexicon.GenericFirstAid(assessment.Level), assessment.FirstAidTips)
}

func TestAssessDeterministic(t *testing.T) {
	triage := newTestTriage(t)
	ctx := context.Background()

	first := triage.Assess(ctx, "severe headache and blurred vision and vomiting")
	for i := 0; i < 10; i++ {
		again := triage.Assess(ctx, "severe headache and blurred vision and vomiting")
		assert.Equal(t, first, again)
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Can't breathe!", "cant breathe"},
		{"  CHEST   PAIN  ", "chest pain"},
		{"fever, vomiting... dizziness", "fever vomiting dizziness"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeText(tt.in), "input %q", tt.in)
	}
}
