package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/booking-portal/internal/application"
)

type dashboardService interface {
	UserDashboard(ctx context.Context, principal application.Principal) (application.UserDashboard, error)
	ProfessionalDashboard(ctx context.Context, principal application.Principal) (application.ProfessionalDashboard, error)
	AdminDashboard(ctx context.Context, principal application.Principal) (application.AdminDashboard, error)
}

type DashboardHandler struct {
	service   dashboardService
	responder responder
	logger    *slog.Logger
}

func NewDashboardHandler(service dashboardService, logger *slog.Logger) *DashboardHandler {
	base := defaultLogger(logger)
	return &DashboardHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *DashboardHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "DashboardHandler", operation, attrs...)
}

func (h *DashboardHandler) User(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	dashboard, err := h.service.UserDashboard(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "User", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "user dashboard failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, userDashboardResponse{
		Stats:        toStatsDTO(dashboard.Stats),
		Appointments: toAppointmentDTOs(dashboard.Appointments),
	})
}

func (h *DashboardHandler) Professional(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	dashboard, err := h.service.ProfessionalDashboard(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Professional", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "professional dashboard failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := professionalDashboardResponse{
		Stats:        toStatsDTO(dashboard.Stats),
		OpenSlots:    dashboard.OpenSlots,
		Appointments: toAppointmentDTOs(dashboard.Appointments),
	}
	if dashboard.Professional != nil {
		dto := toProfessionalDTO(*dashboard.Professional)
		resp.Professional = &dto
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	dashboard, err := h.service.AdminDashboard(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Admin", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "admin dashboard failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	bookings := make([]providerBookingsDTO, 0, len(dashboard.BookingsByProvider))
	for _, b := range dashboard.BookingsByProvider {
		bookings = append(bookings, providerBookingsDTO{ProfessionalID: b.ProfessionalID, Name: b.Name, Bookings: b.Bookings})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, adminDashboardResponse{
		Stats: adminStatsDTO{
			TotalUsers:         dashboard.Stats.TotalUsers,
			TotalProfessionals: dashboard.Stats.TotalProfessionals,
			TotalAppointments:  dashboard.Stats.TotalAppointments,
			ActiveAppointments: dashboard.Stats.ActiveAppointments,
		},
		BookingsByProvider: bookings,
		RecentAppointments: toAppointmentDTOs(dashboard.RecentAppointments),
		Professionals:      toProfessionalDTOs(dashboard.Professionals),
	})
}

type statsDTO struct {
	Total     int `json:"total"`
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
}

func toStatsDTO(s application.DashboardStats) statsDTO {
	return statsDTO{Total: s.Total, Upcoming: s.Upcoming, Completed: s.Completed}
}

type userDashboardResponse struct {
	Stats        statsDTO         `json:"stats"`
	Appointments []appointmentDTO `json:"appointments"`
}

type professionalDashboardResponse struct {
	Professional *professionalDTO `json:"professional"`
	Stats        statsDTO         `json:"stats"`
	OpenSlots    int              `json:"open_slots"`
	Appointments []appointmentDTO `json:"appointments"`
}

type adminStatsDTO struct {
	TotalUsers         int `json:"total_users"`
	TotalProfessionals int `json:"total_professionals"`
	TotalAppointments  int `json:"total_appointments"`
	ActiveAppointments int `json:"active_appointments"`
}

type providerBookingsDTO struct {
	ProfessionalID string `json:"professional_id"`
	Name           string `json:"name"`
	Bookings       int    `json:"bookings"`
}

type adminDashboardResponse struct {
	Stats              adminStatsDTO         `json:"stats"`
	BookingsByProvider []providerBookingsDTO `json:"bookings_by_provider"`
	RecentAppointments []appointmentDTO      `json:"recent_appointments"`
	Professionals      []professionalDTO     `json:"professionals"`
}
