package handler

import (
	"encoding/json"
	"net/http"

	"medassist/internal/converter"
	"medassist/internal/delivery/dto"
	"medassist/internal/usecase"
	"medassist/pkg/response"
	"medassist/pkg/validator"
)

type TriageHandler struct {
	triageUsecase usecase.TriageUsecase
	validator     *validator.CustomValidator
}

func NewTriageHandler(triageUsecase usecase.TriageUsecase, validator *validator.CustomValidator) *TriageHandler {
	return &TriageHandler{
		triageUsecase: triageUsecase,
		validator:     validator,
	}
}

func (h *TriageHandler) AssessSymptoms(w http.ResponseWriter, r *http.Request) {
	var req dto.AssessSymptomsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	assessment := h.triageUsecase.Assess(r.Context(), req.Text)

	response.Success(w, http.StatusOK, "Symptoms assessed successfully", converter.AssessmentToResponse(assessment))
}
