package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"clinicbook/backend/internal/domain"
	"clinicbook/backend/internal/service/scheduling"
)

type schedulingService interface {
	Create(ctx context.Context, in scheduling.CreateInput) (domain.Appointment, error)
	Update(ctx context.Context, in scheduling.UpdateInput) (domain.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]domain.Appointment, error)
	ListByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]domain.Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Appointment, error)
}

type AppointmentsHandler struct {
	svc schedulingService
	log *slog.Logger
}

func NewAppointmentsHandler(svc schedulingService, log *slog.Logger) *AppointmentsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AppointmentsHandler{
		svc: svc,
		log: log.With(slog.String("component", "http.appointments")),
	}
}

func (h *AppointmentsHandler) Register(g *echo.Group) {
	g.POST("/appointments", h.Create)
	g.GET("/appointments/:id", h.Get)
	g.PUT("/appointments/:id", h.Update)
	g.DELETE("/appointments/:id", h.Delete)
	g.GET("/doctors/:id/appointments", h.ListByDoctor)
	g.GET("/patients/:id/appointments", h.ListByPatient)
}

type appointmentRequest struct {
	DoctorName      string    `json:"doctor_name"`
	PatientName     string    `json:"patient_name"`
	AppointmentDate time.Time `json:"appointment_date"`
}

type appointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	PatientID       uuid.UUID `json:"patient_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toAppointmentResponse(a domain.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:              a.ID,
		DoctorID:        a.DoctorID,
		PatientID:       a.PatientID,
		AppointmentDate: a.AppointmentDate,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toAppointmentResponses(appts []domain.Appointment) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

func (h *AppointmentsHandler) Create(c echo.Context) error {
	log := h.log.With(slog.String("handler", "Create"))

	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("malformed body", slog.String("error", err.Error()))
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "body.malformed"})
	}

	appt, err := h.svc.Create(c.Request().Context(), scheduling.CreateInput{
		DoctorName:      req.DoctorName,
		PatientName:     req.PatientName,
		AppointmentDate: req.AppointmentDate,
	})
	if err != nil {
		var rej *domain.Rejection
		if errors.As(err, &rej) {
			log.Info("booking rejected",
				slog.String("rule", rej.Rule),
				slog.String("doctor_name", req.DoctorName),
				slog.Time("appointment_date", req.AppointmentDate),
			)
		} else {
			log.Error("booking failed", slog.String("error", err.Error()))
		}
		return writeError(c, err)
	}

	log.Info("appointment booked",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("doctor_id", appt.DoctorID.String()),
		slog.Time("appointment_date", appt.AppointmentDate),
	)
	return c.JSON(http.StatusCreated, toAppointmentResponse(appt))
}

func (h *AppointmentsHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "appointment.id.invalid"})
	}
	appt, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAppointmentResponse(appt))
}

func (h *AppointmentsHandler) Update(c echo.Context) error {
	log := h.log.With(slog.String("handler", "Update"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "appointment.id.invalid"})
	}
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("malformed body", slog.String("error", err.Error()))
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "body.malformed"})
	}

	appt, err := h.svc.Update(c.Request().Context(), scheduling.UpdateInput{
		ID:              id,
		DoctorName:      req.DoctorName,
		PatientName:     req.PatientName,
		AppointmentDate: req.AppointmentDate,
	})
	if err != nil {
		var rej *domain.Rejection
		if errors.As(err, &rej) {
			log.Info("reschedule rejected", slog.String("rule", rej.Rule), slog.String("appointment_id", id.String()))
		} else {
			log.Error("reschedule failed", slog.String("error", err.Error()))
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAppointmentResponse(appt))
}

func (h *AppointmentsHandler) Delete(c echo.Context) error {
	log := h.log.With(slog.String("handler", "Delete"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "appointment.id.invalid"})
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		var rej *domain.Rejection
		if errors.As(err, &rej) {
			log.Info("delete rejected", slog.String("rule", rej.Rule), slog.String("appointment_id", id.String()))
		} else {
			log.Error("delete failed", slog.String("error", err.Error()))
		}
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListByDoctor returns all of a doctor's appointments, or only those
// inside [from, to] when both query parameters are present.
func (h *AppointmentsHandler) ListByDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "doctor.id.invalid"})
	}

	fromStr, toStr := c.QueryParam("from"), c.QueryParam("to")
	var appts []domain.Appointment
	if fromStr != "" || toStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "range.from.invalid"})
		}
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "range.to.invalid"})
		}
		appts, err = h.svc.ListByDoctorBetween(c.Request().Context(), id, from, to)
		if err != nil {
			return writeError(c, err)
		}
	} else {
		appts, err = h.svc.ListByDoctor(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
	}
	return c.JSON(http.StatusOK, toAppointmentResponses(appts))
}

func (h *AppointmentsHandler) ListByPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "patient.id.invalid"})
	}
	appts, err := h.svc.ListByPatient(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAppointmentResponses(appts))
}
