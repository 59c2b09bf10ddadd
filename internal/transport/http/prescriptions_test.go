package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"clinicbook/backend/internal/domain"
	"clinicbook/backend/internal/service/prescriptions"
)

type fakePrescriptionsService struct {
	addFn                func(ctx context.Context, in prescriptions.AddInput) (domain.Prescription, error)
	updateFn             func(ctx context.Context, in prescriptions.UpdateInput) (domain.Prescription, error)
	deleteFn             func(ctx context.Context, id uuid.UUID) error
	getByIDFn            func(ctx context.Context, id uuid.UUID) (domain.Prescription, error)
	getByAppointmentIDFn func(ctx context.Context, appointmentID uuid.UUID) (domain.Prescription, error)
}

func (f *fakePrescriptionsService) Add(ctx context.Context, in prescriptions.AddInput) (domain.Prescription, error) {
	if f.addFn == nil {
		panic("Add not configured")
	}
	return f.addFn(ctx, in)
}

func (f *fakePrescriptionsService) Update(ctx context.Context, in prescriptions.UpdateInput) (domain.Prescription, error) {
	if f.updateFn == nil {
		panic("Update not configured")
	}
	return f.updateFn(ctx, in)
}

func (f *fakePrescriptionsService) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteFn == nil {
		panic("Delete not configured")
	}
	return f.deleteFn(ctx, id)
}

func (f *fakePrescriptionsService) GetByID(ctx context.Context, id uuid.UUID) (domain.Prescription, error) {
	if f.getByIDFn == nil {
		panic("GetByID not configured")
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakePrescriptionsService) GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (domain.Prescription, error) {
	if f.getByAppointmentIDFn == nil {
		panic("GetByAppointmentID not configured")
	}
	return f.getByAppointmentIDFn(ctx, appointmentID)
}

func (f *fakePrescriptionsService) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]domain.Prescription, error) {
	panic("not used")
}

func (f *fakePrescriptionsService) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Prescription, error) {
	panic("not used")
}

func TestPrescriptionsAdd_Created(t *testing.T) {
	docID := uuid.MustParse("00000000-0000-0000-0000-0000000000d1")
	patID := uuid.MustParse("00000000-0000-0000-0000-0000000000f1")
	apptID := uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	svc := &fakePrescriptionsService{
		addFn: func(ctx context.Context, in prescriptions.AddInput) (domain.Prescription, error) {
			if in.DoctorID != docID || in.PatientID != patID || in.AppointmentID != apptID || in.Notes != "rest and fluids" {
				t.Fatalf("input = %+v", in)
			}
			return domain.Prescription{
				ID:            uuid.MustParse("00000000-0000-0000-0000-0000000000e1"),
				AppointmentID: in.AppointmentID,
				IssuedAt:      time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC),
				Notes:         in.Notes,
			}, nil
		},
	}
	h := NewPrescriptionsHandler(svc, nil)

	body := `{"doctor_id":"` + docID.String() + `","patient_id":"` + patID.String() + `","appointment_id":"` + apptID.String() + `","notes":"rest and fluids"}`
	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/prescriptions", body)
	if err := h.Add(c); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var resp prescriptionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AppointmentID != apptID {
		t.Fatalf("appointment_id = %s, want %s", resp.AppointmentID, apptID)
	}
}

func TestPrescriptionsAdd_StatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"duplicate linkage", domain.Rejected(domain.RejectDuplicateLinkage, "prescription.appointment.already_linked", "prescription"), http.StatusConflict},
		{"issued before appointment", domain.Rejected(domain.RejectTemporalOrdering, "prescription.issued_before_appointment", "prescription"), http.StatusUnprocessableEntity},
		{"unknown appointment", domain.Rejected(domain.RejectNotFound, "appointment.id.not_found", "appointment"), http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakePrescriptionsService{
				addFn: func(ctx context.Context, in prescriptions.AddInput) (domain.Prescription, error) {
					return domain.Prescription{}, tc.err
				},
			}
			h := NewPrescriptionsHandler(svc, nil)

			body := `{"doctor_id":"00000000-0000-0000-0000-0000000000d1","patient_id":"00000000-0000-0000-0000-0000000000f1","appointment_id":"00000000-0000-0000-0000-0000000000a1"}`
			c, rec := newJSONContext(t, http.MethodPost, "/api/v1/prescriptions", body)
			if err := h.Add(c); err != nil {
				t.Fatalf("Add error: %v", err)
			}
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestPrescriptionsGetByAppointment(t *testing.T) {
	apptID := uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	svc := &fakePrescriptionsService{
		getByAppointmentIDFn: func(ctx context.Context, id uuid.UUID) (domain.Prescription, error) {
			return domain.Prescription{
				ID:            uuid.MustParse("00000000-0000-0000-0000-0000000000e1"),
				AppointmentID: id,
			}, nil
		},
	}
	h := NewPrescriptionsHandler(svc, nil)

	c, rec := newJSONContext(t, http.MethodGet, "/api/v1/appointments/"+apptID.String()+"/prescription", "")
	c.SetParamNames("id")
	c.SetParamValues(apptID.String())
	if err := h.GetByAppointment(c); err != nil {
		t.Fatalf("GetByAppointment error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
