package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/booking-portal/internal/application"
)

type professionalService interface {
	ListProfessionals(ctx context.Context, principal application.Principal, query string) ([]application.Professional, error)
	GetProfessional(ctx context.Context, principal application.Principal, id string) (application.Professional, error)
	Availability(ctx context.Context, principal application.Principal, id string) (application.AvailabilityIndex, error)
}

type bookingService interface {
	Book(ctx context.Context, params application.BookParams) (application.BookingResult, error)
}

type ProfessionalHandler struct {
	service   professionalService
	bookings  bookingService
	responder responder
	logger    *slog.Logger
}

func NewProfessionalHandler(service professionalService, bookings bookingService, logger *slog.Logger) *ProfessionalHandler {
	base := defaultLogger(logger)
	return &ProfessionalHandler{service: service, bookings: bookings, responder: newResponder(base), logger: base}
}

func (h *ProfessionalHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ProfessionalHandler", operation, attrs...)
}

func (h *ProfessionalHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query().Get("q")
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID, "query", query)

	professionals, err := h.service.ListProfessionals(r.Context(), principal, query)
	if err != nil {
		logger.ErrorContext(r.Context(), "professional list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(professionals)).InfoContext(r.Context(), "professionals listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listProfessionalsResponse{Professionals: toProfessionalDTOs(professionals)})
}

func (h *ProfessionalHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := h.professionalID(w, r, "Get")
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	professional, err := h.service.GetProfessional(r.Context(), principal, id)
	if err != nil {
		h.log(r.Context(), "Get", "principal_id", principal.UserID, "professional_id", id).
			ErrorContext(r.Context(), "professional lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, professionalResponse{Professional: toProfessionalDTO(professional)})
}

func (h *ProfessionalHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := h.professionalID(w, r, "Availability")
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	index, err := h.service.Availability(r.Context(), principal, id)
	if err != nil {
		h.log(r.Context(), "Availability", "principal_id", principal.UserID, "professional_id", id).
			ErrorContext(r.Context(), "availability lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dates := make([]dateGroupDTO, 0, len(index.Groups))
	for _, g := range index.Groups {
		dates = append(dates, dateGroupDTO{Date: g.Date, Slots: toSlotDTOs(g.Slots)})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{
		ProfessionalID: id,
		OpenSlots:      index.OpenSlotCount(),
		Dates:          dates,
	})
}

// Book handles POST /professionals/{id}/bookings.
func (h *ProfessionalHandler) Book(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := h.professionalID(w, r, "Book")
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Book", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Book", "principal_id", principal.UserID, "professional_id", id, "slot_id", req.SlotID)

	result, err := h.bookings.Book(r.Context(), application.BookParams{
		Principal:      principal,
		ProfessionalID: id,
		SlotID:         strings.TrimSpace(req.SlotID),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("appointment_id", result.Appointment.ID).InfoContext(r.Context(), "appointment booked")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{
		Appointment:   toAppointmentDTO(result.Appointment),
		SlotPersisted: result.SlotPersisted,
	})
}

func (h *ProfessionalHandler) professionalID(w http.ResponseWriter, r *http.Request, operation string) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.log(r.Context(), operation, "error_kind", "bad_request").ErrorContext(r.Context(), "missing professional id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProfessional)
		return "", false
	}
	return id, true
}

type bookingRequest struct {
	SlotID string `json:"slot_id"`
}

type bookingResponse struct {
	Appointment   appointmentDTO `json:"appointment"`
	SlotPersisted bool           `json:"slot_persisted"`
}

type listProfessionalsResponse struct {
	Professionals []professionalDTO `json:"professionals"`
}

type professionalResponse struct {
	Professional professionalDTO `json:"professional"`
}

type availabilityResponse struct {
	ProfessionalID string         `json:"professional_id"`
	OpenSlots      int            `json:"open_slots"`
	Dates          []dateGroupDTO `json:"dates"`
}

type dateGroupDTO struct {
	Date  string    `json:"date"`
	Slots []slotDTO `json:"slots"`
}

type slotDTO struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsBooked  bool   `json:"is_booked"`
}

type professionalDTO struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Profession     string    `json:"profession"`
	Experience     int       `json:"experience"`
	Rating         float64   `json:"rating"`
	Description    string    `json:"description"`
	Avatar         string    `json:"avatar"`
	IsActive       bool      `json:"is_active"`
	AvailableSlots []slotDTO `json:"available_slots"`
}

type appointmentDTO struct {
	ID                     string `json:"id"`
	UserID                 string `json:"user_id"`
	ProfessionalID         string `json:"professional_id"`
	ProfessionalName       string `json:"professional_name"`
	ProfessionalProfession string `json:"professional_profession"`
	Date                   string `json:"date"`
	StartTime              string `json:"start_time"`
	EndTime                string `json:"end_time"`
	Status                 string `json:"status"`
	CreatedAt              string `json:"created_at"`
}

func toSlotDTOs(slots []application.TimeSlot) []slotDTO {
	out := make([]slotDTO, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotDTO{
			ID:        s.ID,
			Date:      s.Date,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			IsBooked:  s.IsBooked,
		})
	}
	return out
}

func toProfessionalDTO(p application.Professional) professionalDTO {
	return professionalDTO{
		ID:             p.ID,
		Name:           p.Name,
		Email:          p.Email,
		Profession:     p.Profession,
		Experience:     p.Experience,
		Rating:         p.Rating,
		Description:    p.Description,
		Avatar:         p.Avatar,
		IsActive:       p.IsActive,
		AvailableSlots: toSlotDTOs(p.AvailableSlots),
	}
}

func toProfessionalDTOs(professionals []application.Professional) []professionalDTO {
	out := make([]professionalDTO, 0, len(professionals))
	for _, p := range professionals {
		out = append(out, toProfessionalDTO(p))
	}
	return out
}

func toAppointmentDTO(a application.Appointment) appointmentDTO {
	dto := appointmentDTO{
		ID:                     a.ID,
		UserID:                 a.UserID,
		ProfessionalID:         a.ProfessionalID,
		ProfessionalName:       a.ProfessionalName,
		ProfessionalProfession: a.ProfessionalProfession,
		Date:                   a.Date,
		StartTime:              a.StartTime,
		EndTime:                a.EndTime,
		Status:                 string(a.Status),
	}
	if !a.CreatedAt.IsZero() {
		dto.CreatedAt = a.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return dto
}

func toAppointmentDTOs(appointments []application.Appointment) []appointmentDTO {
	out := make([]appointmentDTO, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, toAppointmentDTO(a))
	}
	return out
}
