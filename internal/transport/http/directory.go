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
	"clinicbook/backend/internal/service/directory"
)

type directoryService interface {
	RegisterDoctor(ctx context.Context, in directory.RegisterDoctorInput) (domain.Doctor, error)
	UpdateDoctor(ctx context.Context, in directory.UpdateDoctorInput) (domain.Doctor, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (domain.Doctor, error)
	ListDoctors(ctx context.Context) ([]domain.Doctor, error)
	DeleteDoctor(ctx context.Context, id uuid.UUID) error
	RegisterPatient(ctx context.Context, in directory.RegisterPatientInput) (domain.Patient, error)
	UpdatePatient(ctx context.Context, in directory.UpdatePatientInput) (domain.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (domain.Patient, error)
	ListPatients(ctx context.Context) ([]domain.Patient, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
}

type DirectoryHandler struct {
	svc directoryService
	log *slog.Logger
}

func NewDirectoryHandler(svc directoryService, log *slog.Logger) *DirectoryHandler {
	if log == nil {
		log = slog.Default()
	}
	return &DirectoryHandler{
		svc: svc,
		log: log.With(slog.String("component", "http.directory")),
	}
}

func (h *DirectoryHandler) Register(g *echo.Group) {
	g.POST("/doctors", h.RegisterDoctor)
	g.GET("/doctors", h.ListDoctors)
	g.GET("/doctors/:id", h.GetDoctor)
	g.PUT("/doctors/:id", h.UpdateDoctor)
	g.DELETE("/doctors/:id", h.DeleteDoctor)
	g.POST("/patients", h.RegisterPatient)
	g.GET("/patients", h.ListPatients)
	g.GET("/patients/:id", h.GetPatient)
	g.PUT("/patients/:id", h.UpdatePatient)
	g.DELETE("/patients/:id", h.DeletePatient)
}

type doctorRequest struct {
	Name        string           `json:"name"`
	Phone       string           `json:"phone"`
	AttendTime  domain.TimeOfDay `json:"attend_time"`
	LeaveTime   domain.TimeOfDay `json:"leave_time"`
	WorkingDays []int16          `json:"working_days"`
}

type doctorResponse struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Phone       string           `json:"phone"`
	AttendTime  domain.TimeOfDay `json:"attend_time"`
	LeaveTime   domain.TimeOfDay `json:"leave_time"`
	WorkingDays []int16          `json:"working_days"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func toDoctorResponse(d domain.Doctor) doctorResponse {
	return doctorResponse{
		ID:          d.ID,
		Name:        d.Name,
		Phone:       d.Phone,
		AttendTime:  d.AttendTime,
		LeaveTime:   d.LeaveTime,
		WorkingDays: d.WorkingDays,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type patientRequest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Gender string `json:"gender"`
	Age    int    `json:"age"`
	Status string `json:"status"`
}

type patientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Gender    string    `json:"gender"`
	Age       int       `json:"age"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPatientResponse(p domain.Patient) patientResponse {
	return patientResponse{
		ID:        p.ID,
		Name:      p.Name,
		Phone:     p.Phone,
		Gender:    p.Gender,
		Age:       p.Age,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (h *DirectoryHandler) RegisterDoctor(c echo.Context) error {
	log := h.log.With(slog.String("handler", "RegisterDoctor"))

	var req doctorRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("malformed body", slog.String("error", err.Error()))
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "body.malformed"})
	}

	doc, err := h.svc.RegisterDoctor(c.Request().Context(), directory.RegisterDoctorInput{
		Name:        req.Name,
		Phone:       req.Phone,
		AttendTime:  req.AttendTime,
		LeaveTime:   req.LeaveTime,
		WorkingDays: req.WorkingDays,
	})
	if err != nil {
		var rej *domain.Rejection
		if errors.As(err, &rej) {
			log.Info("doctor registration rejected", slog.String("rule", rej.Rule), slog.String("name", req.Name))
		} else {
			log.Error("doctor registration failed", slog.String("error", err.Error()))
		}
		return writeError(c, err)
	}

	log.Info("doctor registered", slog.String("doctor_id", doc.ID.String()), slog.String("name", doc.Name))
	return c.JSON(http.StatusCreated, toDoctorResponse(doc))
}

func (h *DirectoryHandler) ListDoctors(c echo.Context) error {
	docs, err := h.svc.ListDoctors(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]doctorResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDoctorResponse(d))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DirectoryHandler) GetDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "doctor.id.invalid"})
	}
	doc, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toDoctorResponse(doc))
}

func (h *DirectoryHandler) UpdateDoctor(c echo.Context) error {
	log := h.log.With(slog.String("handler", "UpdateDoctor"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "doctor.id.invalid"})
	}
	var req doctorRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("malformed body", slog.String("error", err.Error()))
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "body.malformed"})
	}

	doc, err := h.svc.UpdateDoctor(c.Request().Context(), directory.UpdateDoctorInput{
		ID:          id,
		Name:        req.Name,
		Phone:       req.Phone,
		AttendTime:  req.AttendTime,
		LeaveTime:   req.LeaveTime,
		WorkingDays: req.WorkingDays,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toDoctorResponse(doc))
}

func (h *DirectoryHandler) DeleteDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "doctor.id.invalid"})
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *DirectoryHandler) RegisterPatient(c echo.Context) error {
	log := h.log.With(slog.String("handler", "RegisterPatient"))

	var req patientRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("malformed body", slog.String("error", err.Error()))
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "body.malformed"})
	}

	p, err := h.svc.RegisterPatient(c.Request().Context(), directory.RegisterPatientInput{
		Name:   req.Name,
		Phone:  req.Phone,
		Gender: req.Gender,
		Age:    req.Age,
		Status: req.Status,
	})
	if err != nil {
		var rej *domain.Rejection
		if errors.As(err, &rej) {
			log.Info("patient registration rejected", slog.String("rule", rej.Rule), slog.String("name", req.Name))
		} else {
			log.Error("patient registration failed", slog.String("error", err.Error()))
		}
		return writeError(c, err)
	}

	log.Info("patient registered", slog.String("patient_id", p.ID.String()), slog.String("name", p.Name))
	return c.JSON(http.StatusCreated, toPatientResponse(p))
}

func (h *DirectoryHandler) ListPatients(c echo.Context) error {
	ps, err := h.svc.ListPatients(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]patientResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPatientResponse(p))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DirectoryHandler) GetPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "patient.id.invalid"})
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPatientResponse(p))
}

func (h *DirectoryHandler) UpdatePatient(c echo.Context) error {
	log := h.log.With(slog.String("handler", "UpdatePatient"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "patient.id.invalid"})
	}
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("malformed body", slog.String("error", err.Error()))
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "body.malformed"})
	}

	p, err := h.svc.UpdatePatient(c.Request().Context(), directory.UpdatePatientInput{
		ID:     id,
		Name:   req.Name,
		Phone:  req.Phone,
		Gender: req.Gender,
		Age:    req.Age,
		Status: req.Status,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPatientResponse(p))
}

func (h *DirectoryHandler) DeletePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Code: string(domain.RejectInvalidRequest), Rule: "patient.id.invalid"})
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
