package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"clinicbook/backend/internal/domain"
	"clinicbook/backend/internal/service/scheduling"
)

type fakeSchedulingService struct {
	createFn              func(ctx context.Context, in scheduling.CreateInput) (domain.Appointment, error)
	updateFn              func(ctx context.Context, in scheduling.UpdateInput) (domain.Appointment, error)
	deleteFn              func(ctx context.Context, id uuid.UUID) error
	getByIDFn             func(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	listByDoctorFn        func(ctx context.Context, doctorID uuid.UUID) ([]domain.Appointment, error)
	listByDoctorBetweenFn func(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]domain.Appointment, error)
	listByPatientFn       func(ctx context.Context, patientID uuid.UUID) ([]domain.Appointment, error)
}

func (f *fakeSchedulingService) Create(ctx context.Context, in scheduling.CreateInput) (domain.Appointment, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, in)
}

func (f *fakeSchedulingService) Update(ctx context.Context, in scheduling.UpdateInput) (domain.Appointment, error) {
	if f.updateFn == nil {
		panic("Update not configured")
	}
	return f.updateFn(ctx, in)
}

func (f *fakeSchedulingService) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteFn == nil {
		panic("Delete not configured")
	}
	return f.deleteFn(ctx, id)
}

func (f *fakeSchedulingService) GetByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	if f.getByIDFn == nil {
		panic("GetByID not configured")
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeSchedulingService) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]domain.Appointment, error) {
	if f.listByDoctorFn == nil {
		panic("ListByDoctor not configured")
	}
	return f.listByDoctorFn(ctx, doctorID)
}

func (f *fakeSchedulingService) ListByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]domain.Appointment, error) {
	if f.listByDoctorBetweenFn == nil {
		panic("ListByDoctorBetween not configured")
	}
	return f.listByDoctorBetweenFn(ctx, doctorID, from, to)
}

func (f *fakeSchedulingService) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Appointment, error) {
	if f.listByPatientFn == nil {
		panic("ListByPatient not configured")
	}
	return f.listByPatientFn(ctx, patientID)
}

func newJSONContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAppointmentsCreate_Created(t *testing.T) {
	apptID := uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	date := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	svc := &fakeSchedulingService{
		createFn: func(ctx context.Context, in scheduling.CreateInput) (domain.Appointment, error) {
			if in.DoctorName != "Dr. Salem" || in.PatientName != "Mona" {
				t.Fatalf("input = %+v", in)
			}
			return domain.Appointment{ID: apptID, AppointmentDate: in.AppointmentDate.UTC()}, nil
		},
	}
	h := NewAppointmentsHandler(svc, nil)

	body := `{"doctor_name":"Dr. Salem","patient_name":"Mona","appointment_date":"2026-01-05T10:00:00Z"}`
	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/appointments", body)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var resp appointmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != apptID || !resp.AppointmentDate.Equal(date) {
		t.Fatalf("response = %+v", resp)
	}
}

func TestAppointmentsCreate_StatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid request", domain.Rejected(domain.RejectInvalidRequest, "doctor.name.required", "doctor"), http.StatusBadRequest},
		{"unknown doctor", domain.Rejected(domain.RejectNotFound, "doctor.name.not_found", "doctor"), http.StatusNotFound},
		{"conflict", domain.Rejected(domain.RejectSchedulingConflict, "appointment.too_close_to_existing", "appointment"), http.StatusConflict},
		{"outside window", domain.Rejected(domain.RejectOutsideWorkingWindow, "doctor.not_working_that_day", "doctor"), http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeSchedulingService{
				createFn: func(ctx context.Context, in scheduling.CreateInput) (domain.Appointment, error) {
					return domain.Appointment{}, tc.err
				},
			}
			h := NewAppointmentsHandler(svc, nil)

			body := `{"doctor_name":"Dr. Salem","patient_name":"Mona","appointment_date":"2026-01-05T10:00:00Z"}`
			c, rec := newJSONContext(t, http.MethodPost, "/api/v1/appointments", body)
			if err := h.Create(c); err != nil {
				t.Fatalf("Create error: %v", err)
			}
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}

			var body2 errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body2); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body2.Rule == "" {
				t.Fatalf("error body missing rule: %+v", body2)
			}
		})
	}
}

func TestAppointmentsCreate_MalformedBody(t *testing.T) {
	h := NewAppointmentsHandler(&fakeSchedulingService{}, nil)

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/appointments", `{"appointment_date":"not-a-date"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAppointmentsGet_InvalidID(t *testing.T) {
	h := NewAppointmentsHandler(&fakeSchedulingService{}, nil)

	c, rec := newJSONContext(t, http.MethodGet, "/api/v1/appointments/nope", "")
	c.SetParamNames("id")
	c.SetParamValues("nope")
	if err := h.Get(c); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAppointmentsDelete_NoContent(t *testing.T) {
	apptID := uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	svc := &fakeSchedulingService{
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			if id != apptID {
				t.Fatalf("id = %s, want %s", id, apptID)
			}
			return nil
		},
	}
	h := NewAppointmentsHandler(svc, nil)

	c, rec := newJSONContext(t, http.MethodDelete, "/api/v1/appointments/"+apptID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(apptID.String())
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestAppointmentsDelete_LinkedPrescription(t *testing.T) {
	svc := &fakeSchedulingService{
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			return domain.Rejected(domain.RejectInvalidRequest, "appointment.has_linked_prescription", "prescription")
		},
	}
	h := NewAppointmentsHandler(svc, nil)

	id := uuid.MustParse("00000000-0000-0000-0000-0000000000a1").String()
	c, rec := newJSONContext(t, http.MethodDelete, "/api/v1/appointments/"+id, "")
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAppointmentsListByDoctor(t *testing.T) {
	doctorID := uuid.MustParse("00000000-0000-0000-0000-0000000000d1")
	svc := &fakeSchedulingService{
		listByDoctorFn: func(ctx context.Context, id uuid.UUID) ([]domain.Appointment, error) {
			return []domain.Appointment{
				{ID: uuid.MustParse("00000000-0000-0000-0000-0000000000a1"), DoctorID: id},
				{ID: uuid.MustParse("00000000-0000-0000-0000-0000000000a2"), DoctorID: id},
			}, nil
		},
	}
	h := NewAppointmentsHandler(svc, nil)

	c, rec := newJSONContext(t, http.MethodGet, "/api/v1/doctors/"+doctorID.String()+"/appointments", "")
	c.SetParamNames("id")
	c.SetParamValues(doctorID.String())
	if err := h.ListByDoctor(c); err != nil {
		t.Fatalf("ListByDoctor error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp []appointmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("len = %d, want 2", len(resp))
	}
}

func TestAppointmentsListByDoctor_DateRange(t *testing.T) {
	doctorID := uuid.MustParse("00000000-0000-0000-0000-0000000000d1")
	from := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 11, 23, 59, 59, 0, time.UTC)
	svc := &fakeSchedulingService{
		listByDoctorBetweenFn: func(ctx context.Context, id uuid.UUID, gotFrom, gotTo time.Time) ([]domain.Appointment, error) {
			if !gotFrom.Equal(from) || !gotTo.Equal(to) {
				t.Fatalf("range = %v..%v, want %v..%v", gotFrom, gotTo, from, to)
			}
			return []domain.Appointment{{ID: uuid.MustParse("00000000-0000-0000-0000-0000000000a1")}}, nil
		},
	}
	h := NewAppointmentsHandler(svc, nil)

	uri := "/api/v1/doctors/" + doctorID.String() + "/appointments?from=2026-01-05T00:00:00Z&to=2026-01-11T23:59:59Z"
	c, rec := newJSONContext(t, http.MethodGet, uri, "")
	c.SetParamNames("id")
	c.SetParamValues(doctorID.String())
	if err := h.ListByDoctor(c); err != nil {
		t.Fatalf("ListByDoctor error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAppointmentsListByDoctor_BadRange(t *testing.T) {
	doctorID := uuid.MustParse("00000000-0000-0000-0000-0000000000d1")
	h := NewAppointmentsHandler(&fakeSchedulingService{}, nil)

	uri := "/api/v1/doctors/" + doctorID.String() + "/appointments?from=yesterday&to=2026-01-11T23:59:59Z"
	c, rec := newJSONContext(t, http.MethodGet, uri, "")
	c.SetParamNames("id")
	c.SetParamValues(doctorID.String())
	if err := h.ListByDoctor(c); err != nil {
		t.Fatalf("ListByDoctor error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
