package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"medassist/internal/converter"
	"medassist/internal/delivery/dto"
	"medassist/internal/usecase"
	"medassist/pkg/response"
	"medassist/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	bookingUsecase usecase.BookingUsecase
	validator      *validator.CustomValidator
}

func NewAppointmentHandler(bookingUsecase usecase.BookingUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

func (h *AppointmentHandler) LockSlot(w http.ResponseWriter, r *http.Request) {
	var req dto.LockSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	expiresAt, err := h.bookingUsecase.LockSlot(r.Context(), req.DoctorID, req.StartAt, req.HolderToken)
	if err != nil {
		respondError(w, err, "Failed to lock slot")
		return
	}

	response.Success(w, http.StatusOK, "Slot locked successfully", dto.LockSlotResponse{
		Locked:    true,
		ExpiresAt: expiresAt,
	})
}

func (h *AppointmentHandler) ReleaseSlot(w http.ResponseWriter, r *http.Request) {
	var req dto.ReleaseSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if err := h.bookingUsecase.ReleaseSlot(r.Context(), req.DoctorID, req.StartAt, req.HolderToken); err != nil {
		respondError(w, err, "Failed to release slot")
		return
	}

	response.Success(w, http.StatusOK, "Slot released successfully", nil)
}

func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.bookingUsecase.Book(r.Context(), &usecase.BookAppointmentInput{
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		StartAt:     req.StartAt,
		Duration:    req.Duration,
		HolderToken: req.HolderToken,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(w, err, "Failed to book appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", converter.AppointmentToResponse(appointment))
}

func (h *AppointmentHandler) RescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	var req dto.RescheduleAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.bookingUsecase.Reschedule(r.Context(), appointmentID, req.NewStartAt, req.HolderToken)
	if err != nil {
		respondError(w, err, "Failed to reschedule appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment rescheduled successfully", converter.AppointmentToResponse(appointment))
}

func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	if err := h.bookingUsecase.Cancel(r.Context(), appointmentID); err != nil {
		respondError(w, err, "Failed to cancel appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", nil)
}

func (h *AppointmentHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := uuid.Parse(vars["doctorId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	dateStr := r.URL.Query().Get("date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid or missing date, use YYYY-MM-DD", nil)
		return
	}

	duration := 0
	if d := r.URL.Query().Get("duration"); d != "" {
		duration, err = strconv.Atoi(d)
		if err != nil || duration <= 0 {
			response.Error(w, http.StatusBadRequest, "Invalid duration", nil)
			return
		}
	}

	slots, err := h.bookingUsecase.AvailableSlots(r.Context(), doctorID, date, duration)
	if err != nil {
		respondError(w, err, "Failed to get available slots")
		return
	}

	slotResponses := make([]dto.SlotResponse, 0, len(slots))
	for _, slot := range slots {
		slotResponses = append(slotResponses, dto.SlotResponse{
			StartAt: slot.StartAt,
			EndAt:   slot.EndAt,
		})
	}

	response.Success(w, http.StatusOK, "Available slots retrieved successfully", dto.AvailableSlotsResponse{
		DoctorID: doctorID,
		Date:     dateStr,
		Duration: duration,
		Slots:    slotResponses,
		Total:    len(slotResponses),
	})
}
