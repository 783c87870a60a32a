package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/booking-portal/internal/application"
)

type adminService interface {
	SetProfessionalActive(ctx context.Context, params application.SetProfessionalActiveParams) (application.Professional, error)
	ToggleProfessional(ctx context.Context, principal application.Principal, id string) (application.Professional, error)
	ExportAppointmentsCSV(ctx context.Context, principal application.Principal, w io.Writer) error
}

type reconcileService interface {
	ReconcileSlots(ctx context.Context, principal application.Principal) (application.ReconciliationReport, error)
}

type AdminHandler struct {
	service   adminService
	reconcile reconcileService
	responder responder
	logger    *slog.Logger
}

func NewAdminHandler(service adminService, reconcile reconcileService, logger *slog.Logger) *AdminHandler {
	base := defaultLogger(logger)
	return &AdminHandler{service: service, reconcile: reconcile, responder: newResponder(base), logger: base}
}

func (h *AdminHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AdminHandler", operation, attrs...)
}

// SetActive handles PUT /admin/professionals/{id}/active.
func (h *AdminHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProfessional)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	var req activeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		h.log(r.Context(), "SetActive", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode activation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SetActive", "principal_id", principal.UserID, "professional_id", id, "is_active", *req.IsActive)
	professional, err := h.service.SetProfessionalActive(r.Context(), application.SetProfessionalActiveParams{
		Principal:      principal,
		ProfessionalID: id,
		Active:         *req.IsActive,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "activation update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "professional activation updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, professionalResponse{Professional: toProfessionalDTO(professional)})
}

// Toggle handles POST /admin/professionals/{id}/toggle.
func (h *AdminHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProfessional)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Toggle", "principal_id", principal.UserID, "professional_id", id)

	professional, err := h.service.ToggleProfessional(r.Context(), principal, id)
	if err != nil {
		logger.ErrorContext(r.Context(), "toggle failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("is_active", professional.IsActive).InfoContext(r.Context(), "professional toggled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, professionalResponse{Professional: toProfessionalDTO(professional)})
}

// ExportCSV handles GET /admin/appointments.csv. The export is buffered so
// failures still produce a JSON error.
func (h *AdminHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	var buf bytes.Buffer
	if err := h.service.ExportAppointmentsCSV(r.Context(), principal, &buf); err != nil {
		h.log(r.Context(), "ExportCSV", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "csv export failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="appointments.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.log(r.Context(), "ExportCSV").ErrorContext(r.Context(), "failed to write csv", "error", err)
	}
}

// Reconciliation handles GET /admin/reconciliation.
func (h *AdminHandler) Reconciliation(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.reconcile == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	report, err := h.reconcile.ReconcileSlots(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Reconciliation", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "reconciliation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	issues := make([]reconciliationIssueDTO, 0, len(report.Issues))
	for _, issue := range report.Issues {
		issues = append(issues, reconciliationIssueDTO{
			Kind:           issue.Kind,
			ProfessionalID: issue.ProfessionalID,
			SlotID:         issue.SlotID,
			Date:           issue.Date,
			StartTime:      issue.StartTime,
			EndTime:        issue.EndTime,
			AppointmentIDs: issue.AppointmentIDs,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reconciliationResponse{
		GeneratedAt:   report.GeneratedAt.UTC().Format(time.RFC3339),
		Professionals: report.Professionals,
		Slots:         report.Slots,
		BookedSlots:   report.BookedSlots,
		Appointments:  report.Appointments,
		Counts:        report.Counts(),
		Issues:        issues,
	})
}

type activeRequest struct {
	IsActive *bool `json:"is_active"`
}

type reconciliationIssueDTO struct {
	Kind           string   `json:"kind"`
	ProfessionalID string   `json:"professional_id"`
	SlotID         string   `json:"slot_id,omitempty"`
	Date           string   `json:"date"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time"`
	AppointmentIDs []string `json:"appointment_ids,omitempty"`
}

type reconciliationResponse struct {
	GeneratedAt   string                   `json:"generated_at"`
	Professionals int                      `json:"professionals"`
	Slots         int                      `json:"slots"`
	BookedSlots   int                      `json:"booked_slots"`
	Appointments  int                      `json:"appointments"`
	Counts        map[string]int           `json:"counts"`
	Issues        []reconciliationIssueDTO `json:"issues"`
}
