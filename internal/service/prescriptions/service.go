// Package prescriptions issues and manages prescriptions linked to
// completed or upcoming appointments. Every prescription references
// exactly one appointment, and an appointment carries at most one
// prescription.
package prescriptions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"clinicbook/backend/internal/domain"
	"clinicbook/backend/internal/store"
)

type Service struct {
	prescriptions store.PrescriptionRepository
	appointments  store.AppointmentRepository
	doctors       store.DoctorRepository
	patients      store.PatientRepository

	now func() time.Time
}

func NewService(prescriptions store.PrescriptionRepository, appts store.AppointmentRepository, doctors store.DoctorRepository, patients store.PatientRepository) *Service {
	return &Service{
		prescriptions: prescriptions,
		appointments:  appts,
		doctors:       doctors,
		patients:      patients,
		now:           time.Now,
	}
}

type AddInput struct {
	DoctorID      uuid.UUID
	PatientID     uuid.UUID
	AppointmentID uuid.UUID
	IssuedAt      time.Time
	Notes         string
}

// dayTruncate drops the time-of-day component. Issue dates compare at
// calendar-day granularity against the appointment date.
func dayTruncate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Add issues a prescription for an appointment. The appointment must
// not already carry one, and the issue date may not fall on a calendar
// day before the appointment's day. A zero IssuedAt defaults to the
// current time.
func (s *Service) Add(ctx context.Context, in AddInput) (domain.Prescription, error) {
	if in.DoctorID == uuid.Nil {
		return domain.Prescription{}, domain.Rejected(domain.RejectInvalidRequest, "doctor.id.required", "doctor")
	}
	if in.PatientID == uuid.Nil {
		return domain.Prescription{}, domain.Rejected(domain.RejectInvalidRequest, "patient.id.required", "patient")
	}
	if in.AppointmentID == uuid.Nil {
		return domain.Prescription{}, domain.Rejected(domain.RejectInvalidRequest, "appointment.id.required", "appointment")
	}

	doctor, err := s.doctors.FindByID(ctx, in.DoctorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Prescription{}, domain.Rejected(domain.RejectNotFound, "doctor.id.not_found", "doctor")
		}
		return domain.Prescription{}, err
	}
	patient, err := s.patients.FindByID(ctx, in.PatientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Prescription{}, domain.Rejected(domain.RejectNotFound, "patient.id.not_found", "patient")
		}
		return domain.Prescription{}, err
	}
	appt, err := s.appointments.FindByID(ctx, in.AppointmentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Prescription{}, domain.Rejected(domain.RejectNotFound, "appointment.id.not_found", "appointment")
		}
		return domain.Prescription{}, err
	}

	_, err = s.prescriptions.FindByAppointmentID(ctx, appt.ID)
	switch {
	case err == nil:
		return domain.Prescription{}, domain.Rejected(domain.RejectDuplicateLinkage, "prescription.appointment.already_linked", "prescription")
	case !errors.Is(err, store.ErrNotFound):
		return domain.Prescription{}, err
	}

	issuedAt := in.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = s.now()
	}
	issuedAt = issuedAt.UTC()
	if dayTruncate(issuedAt).Before(dayTruncate(appt.AppointmentDate)) {
		return domain.Prescription{}, domain.Rejected(domain.RejectTemporalOrdering, "prescription.issued_before_appointment", "prescription")
	}

	created, err := s.prescriptions.Create(ctx, domain.Prescription{
		DoctorID:      doctor.ID,
		PatientID:     patient.ID,
		AppointmentID: appt.ID,
		IssuedAt:      issuedAt,
		Notes:         in.Notes,
	})
	if errors.Is(err, store.ErrDuplicateLinkage) {
		return domain.Prescription{}, domain.Rejected(domain.RejectDuplicateLinkage, "prescription.appointment.already_linked", "prescription")
	}
	if err != nil {
		return domain.Prescription{}, err
	}
	return created, nil
}

type UpdateInput struct {
	ID       uuid.UUID
	IssuedAt time.Time
	Notes    string
}

// Update changes the issue date or notes of an existing prescription.
// The appointment linkage is immutable; re-linking means deleting and
// issuing a new prescription.
func (s *Service) Update(ctx context.Context, in UpdateInput) (domain.Prescription, error) {
	if in.ID == uuid.Nil {
		return domain.Prescription{}, domain.Rejected(domain.RejectInvalidRequest, "prescription.id.required", "prescription")
	}

	existing, err := s.prescriptions.FindByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Prescription{}, domain.Rejected(domain.RejectNotFound, "prescription.id.not_found", "prescription")
		}
		return domain.Prescription{}, err
	}

	if !in.IssuedAt.IsZero() {
		issuedAt := in.IssuedAt.UTC()
		appt, err := s.appointments.FindByID(ctx, existing.AppointmentID)
		if err != nil {
			return domain.Prescription{}, err
		}
		if dayTruncate(issuedAt).Before(dayTruncate(appt.AppointmentDate)) {
			return domain.Prescription{}, domain.Rejected(domain.RejectTemporalOrdering, "prescription.issued_before_appointment", "prescription")
		}
		existing.IssuedAt = issuedAt
	}
	existing.Notes = in.Notes

	updated, err := s.prescriptions.Update(ctx, existing)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Prescription{}, domain.Rejected(domain.RejectNotFound, "prescription.id.not_found", "prescription")
	}
	if err != nil {
		return domain.Prescription{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return domain.Rejected(domain.RejectInvalidRequest, "prescription.id.required", "prescription")
	}
	err := s.prescriptions.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Rejected(domain.RejectNotFound, "prescription.id.not_found", "prescription")
	}
	return err
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.Prescription, error) {
	if id == uuid.Nil {
		return domain.Prescription{}, domain.Rejected(domain.RejectInvalidRequest, "prescription.id.required", "prescription")
	}
	p, err := s.prescriptions.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Prescription{}, domain.Rejected(domain.RejectNotFound, "prescription.id.not_found", "prescription")
	}
	return p, err
}

func (s *Service) GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (domain.Prescription, error) {
	if appointmentID == uuid.Nil {
		return domain.Prescription{}, domain.Rejected(domain.RejectInvalidRequest, "appointment.id.required", "appointment")
	}
	p, err := s.prescriptions.FindByAppointmentID(ctx, appointmentID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Prescription{}, domain.Rejected(domain.RejectNotFound, "prescription.appointment.not_found", "prescription")
	}
	return p, err
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]domain.Prescription, error) {
	if doctorID == uuid.Nil {
		return nil, domain.Rejected(domain.RejectInvalidRequest, "doctor.id.required", "doctor")
	}
	return s.prescriptions.ListByDoctor(ctx, doctorID)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Prescription, error) {
	if patientID == uuid.Nil {
		return nil, domain.Rejected(domain.RejectInvalidRequest, "patient.id.required", "patient")
	}
	return s.prescriptions.ListByPatient(ctx, patientID)
}
