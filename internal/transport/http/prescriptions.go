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
	"clinicbook/backend/internal/service/prescriptions"
)

type prescriptionsService interface {
	Add(ctx context.Context, in prescriptions.AddInput) (domain.Prescription, error)
	Update(ctx context.Context, in prescriptions.UpdateInput) (domain.Prescription, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Prescription, error)
	GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (domain.Prescription, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]domain.Prescription, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Prescription, error)
}

type PrescriptionsHandler struct {
	svc prescriptionsService
	log *slog.Logger
}

func NewPrescriptionsHandler(svc prescriptionsService, log *slog.Logger) *PrescriptionsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &PrescriptionsHandler{
		svc: svc,
		log: log.With(slog.String("component", "http.prescriptions")),
	}
}

func (h *PrescriptionsHandler) Register(g *echo.Group) {
	g.POST("/prescriptions", h.Add)
	g.GET("/prescriptions/:id", h.Get)
	g.PUT("/prescriptions/:id", h.Update)
	g.DELETE("/prescriptions/:id", h.Delete)
	g.GET("/appointments/:id/prescription", h.GetByAppointment)
	g.GET("/doctors/:id/prescriptions", h.ListByDoctor)
	g.GET("/patients/:id/prescriptions", h.ListByPatient)
}

type addPrescriptionRequest struct {
	DoctorID      uuid.UUID `json:"doctor_id"`
	PatientID     uuid.UUID `json:"patient_id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	IssuedAt      time.Time `json:"issued_at"`
	Notes         string    `json:"notes"`
}

type updatePrescriptionRequest struct {
	IssuedAt time.Time `json:"issued_at"`
	Notes    string    `json:"notes"`
}

type prescriptionResponse struct {
	ID            uuid.UUID `json:"id"`
	DoctorID      uuid.UUID `json:"doctor_id"`
	PatientID     uuid.UUID `json:"patient_id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	IssuedAt      time.Time `json:"issued_at"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toPrescriptionResponse(p domain.Prescription) prescriptionResponse {
	return prescriptionResponse{
		ID:            p.ID,
		DoctorID:      p.DoctorID,
		PatientID:     p.PatientID,
		AppointmentID: p.AppointmentID,
		IssuedAt:      p.IssuedAt,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toPrescriptionResponses(ps []domain.Prescription) []prescriptionResponse {
	out := make([]prescriptionResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPrescriptionResponse(p))
	}
	return out
}

func (h *PrescriptionsHandler) Add(c echo.Context) error {
	log := h.log.With(slog.String("handler", "Add"))

	var req addPrescriptionRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("malformed body", slog.String("error", err.Error()))
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "body.malformed"})
	}

	p, err := h.svc.Add(c.Request().Context(), prescriptions.AddInput{
		DoctorID:      req.DoctorID,
		PatientID:     req.PatientID,
		AppointmentID: req.AppointmentID,
		IssuedAt:      req.IssuedAt,
		Notes:         req.Notes,
	})
	if err != nil {
		var rej *domain.Rejection
		if errors.As(err, &rej) {
			log.Info("prescription rejected",
				slog.String("rule", rej.Rule),
				slog.String("appointment_id", req.AppointmentID.String()),
			)
		} else {
			log.Error("prescription add failed", slog.String("error", err.Error()))
		}
		return writeError(c, err)
	}

	log.Info("prescription issued",
		slog.String("prescription_id", p.ID.String()),
		slog.String("appointment_id", p.AppointmentID.String()),
	)
	return c.JSON(http.StatusCreated, toPrescriptionResponse(p))
}

func (h *PrescriptionsHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "prescription.id.invalid"})
	}
	p, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPrescriptionResponse(p))
}

func (h *PrescriptionsHandler) Update(c echo.Context) error {
	log := h.log.With(slog.String("handler", "Update"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "prescription.id.invalid"})
	}
	var req updatePrescriptionRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("malformed body", slog.String("error", err.Error()))
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "body.malformed"})
	}

	p, err := h.svc.Update(c.Request().Context(), prescriptions.UpdateInput{
		ID:       id,
		IssuedAt: req.IssuedAt,
		Notes:    req.Notes,
	})
	if err != nil {
		var rej *domain.Rejection
		if errors.As(err, &rej) {
			log.Info("prescription update rejected", slog.String("rule", rej.Rule), slog.String("prescription_id", id.String()))
		} else {
			log.Error("prescription update failed", slog.String("error", err.Error()))
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPrescriptionResponse(p))
}

func (h *PrescriptionsHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "prescription.id.invalid"})
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PrescriptionsHandler) GetByAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "appointment.id.invalid"})
	}
	p, err := h.svc.GetByAppointmentID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPrescriptionResponse(p))
}

func (h *PrescriptionsHandler) ListByDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "doctor.id.invalid"})
	}
	ps, err := h.svc.ListByDoctor(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPrescriptionResponses(ps))
}

func (h *PrescriptionsHandler) ListByPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "patient.id.invalid"})
	}
	ps, err := h.svc.ListByPatient(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPrescriptionResponses(ps))
}
