package handler

import (
	"encoding/json"
	"net/http"

	"medassist/internal/converter"
	"medassist/internal/delivery/dto"
	"medassist/internal/domain/entity"
	"medassist/internal/usecase"
	"medassist/pkg/response"
	"medassist/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type EmergencyHandler struct {
	triageUsecase    usecase.TriageUsecase
	emergencyUsecase usecase.EmergencyUsecase
	validator        *validator.CustomValidator
}

func NewEmergencyHandler(
	triageUsecase usecase.TriageUsecase,
	emergencyUsecase usecase.EmergencyUsecase,
	validator *validator.CustomValidator,
) *EmergencyHandler {
	return &EmergencyHandler{
		triageUsecase:    triageUsecase,
		emergencyUsecase: emergencyUsecase,
		validator:        validator,
	}
}

// OpenEmergency assesses the symptom text and escalates it into a tracked
// case. Non-emergency text is rejected with the assessment attached so the
// caller can fall back to booking.
func (h *EmergencyHandler) OpenEmergency(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenEmergencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	assessment := h.triageUsecase.Assess(r.Context(), req.Text)
	if !assessment.NeedsImmediateAttention {
		response.Error(w, http.StatusUnprocessableEntity, "Symptoms do not require emergency escalation",
			converter.AssessmentToResponse(assessment))
		return
	}

	emergencyCase, err := h.emergencyUsecase.Open(r.Context(), &usecase.OpenEmergencyInput{
		Assessment: assessment,
		Contact:    req.Contact,
		Location:   req.Location,
	})
	if err != nil {
		respondError(w, err, "Failed to open emergency case")
		return
	}

	response.Success(w, http.StatusCreated, "Emergency case opened", converter.EmergencyCaseToResponse(emergencyCase))
}

func (h *EmergencyHandler) GetEmergency(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	caseID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid case ID", nil)
		return
	}

	emergencyCase, err := h.emergencyUsecase.Get(r.Context(), caseID)
	if err != nil {
		respondError(w, err, "Failed to get emergency case")
		return
	}

	response.Success(w, http.StatusOK, "Emergency case retrieved successfully", converter.EmergencyCaseToResponse(emergencyCase))
}

func (h *EmergencyHandler) ListActiveEmergencies(w http.ResponseWriter, r *http.Request) {
	cases := h.emergencyUsecase.ListActive(r.Context())

	response.Success(w, http.StatusOK, "Active emergency cases retrieved successfully", dto.EmergencyListResponse{
		Cases: converter.EmergencyCasesToResponses(cases),
		Total: len(cases),
	})
}

func (h *EmergencyHandler) UpdateEmergencyStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	caseID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid case ID", nil)
		return
	}

	var req dto.UpdateEmergencyStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	emergencyCase, err := h.emergencyUsecase.UpdateStatus(r.Context(), caseID, entity.CaseStatus(req.Status), req.Actor)
	if err != nil {
		respondError(w, err, "Failed to update emergency case status")
		return
	}

	response.Success(w, http.StatusOK, "Emergency case status updated", converter.EmergencyCaseToResponse(emergencyCase))
}

func (h *EmergencyHandler) ProvideLocation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	caseID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid case ID", nil)
		return
	}

	var req dto.ProvideLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	emergencyCase, err := h.emergencyUsecase.ProvideLocation(r.Context(), caseID, req.Location)
	if err != nil {
		respondError(w, err, "Failed to record location")
		return
	}

	response.Success(w, http.StatusOK, "Location recorded", converter.EmergencyCaseToResponse(emergencyCase))
}
