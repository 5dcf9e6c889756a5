package converter

import (
	"medassist/internal/delivery/dto"
	"medassist/internal/domain/entity"
)

// AssessmentToResponse converts a SeverityAssessment to its response DTO
func AssessmentToResponse(assessment *entity.SeverityAssessment) *dto.AssessmentResponse {
	if assessment == nil {
		return nil
	}
	return &dto.AssessmentResponse{
		MatchedSymptoms:         assessment.MatchedSymptoms,
		Score:                   assessment.Score,
		Level:                   string(assessment.Level),
		NeedsAmbulance:          assessment.NeedsAmbulance,
		NeedsImmediateAttention: assessment.NeedsImmediateAttention,
		Department:              assessment.Department,
		FirstAidTips:            assessment.FirstAidTips,
		Notes:                   assessment.Notes,
	}
}
