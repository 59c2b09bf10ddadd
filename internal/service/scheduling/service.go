package scheduling

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"clinicbook/backend/internal/domain"
	"clinicbook/backend/internal/store"
)

// Service sequences the lookups and the validate-then-commit path for
// appointments. Validation itself is pure; the appointment repository
// supplies the doctor-day snapshot and the locking that keeps the
// sequence atomic against concurrent bookings.
type Service struct {
	appointments  store.AppointmentRepository
	doctors       store.DoctorRepository
	patients      store.PatientRepository
	prescriptions store.PrescriptionRepository

	now func() time.Time
}

func NewService(appts store.AppointmentRepository, doctors store.DoctorRepository, patients store.PatientRepository, prescriptions store.PrescriptionRepository) *Service {
	return &Service{
		appointments:  appts,
		doctors:       doctors,
		patients:      patients,
		prescriptions: prescriptions,
		now:           time.Now,
	}
}

type CreateInput struct {
	ID              uuid.UUID
	DoctorName      string
	PatientName     string
	AppointmentDate time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Appointment, error) {
	if in.ID != uuid.Nil {
		return domain.Appointment{}, domain.Rejected(domain.RejectInvalidRequest, "appointment.id.not_allowed", "appointment")
	}
	if in.AppointmentDate.IsZero() {
		return domain.Appointment{}, domain.Rejected(domain.RejectInvalidRequest, "appointment.date.required", "appointment")
	}
	doctorName := strings.TrimSpace(in.DoctorName)
	if doctorName == "" {
		return domain.Appointment{}, domain.Rejected(domain.RejectInvalidRequest, "doctor.name.required", "doctor")
	}
	patientName := strings.TrimSpace(in.PatientName)
	if patientName == "" {
		return domain.Appointment{}, domain.Rejected(domain.RejectInvalidRequest, "patient.name.required", "patient")
	}

	doctor, err := s.doctors.FindByName(ctx, doctorName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Appointment{}, domain.Rejected(domain.RejectNotFound, "doctor.name.not_found", "doctor")
		}
		return domain.Appointment{}, err
	}
	patient, err := s.patients.FindByName(ctx, patientName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Appointment{}, domain.Rejected(domain.RejectNotFound, "patient.name.not_found", "patient")
		}
		return domain.Appointment{}, err
	}

	date := in.AppointmentDate.UTC()
	var out domain.Appointment
	err = s.appointments.InDoctorDayTransaction(ctx, doctor.ID, date, func(ctx context.Context, tx store.ScheduleTx) error {
		dayStart, dayEnd := domain.DayWindow(date)
		sameDay, err := tx.ListDoctorDay(ctx, doctor.ID, dayStart, dayEnd)
		if err != nil {
			return err
		}
		if r := domain.ValidateCreate(doctor, date, s.now().UTC(), sameDay); r != nil {
			return r
		}
		created, err := tx.CreateAppointment(ctx, domain.Appointment{
			DoctorID:        doctor.ID,
			PatientID:       patient.ID,
			AppointmentDate: date,
		})
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

type UpdateInput struct {
	ID              uuid.UUID
	DoctorName      string
	PatientName     string
	AppointmentDate time.Time
}

// Update re-validates the appointment against the new doctor and date.
// The comparison set excludes the appointment itself, so moving it
// onto its own slot is always allowed. When PatientName is empty the
// current patient link is kept.
func (s *Service) Update(ctx context.Context, in UpdateInput) (domain.Appointment, error) {
	if in.ID == uuid.Nil {
		return domain.Appointment{}, domain.Rejected(domain.RejectInvalidRequest, "appointment.id.required", "appointment")
	}
	if in.AppointmentDate.IsZero() {
		return domain.Appointment{}, domain.Rejected(domain.RejectInvalidRequest, "appointment.date.required", "appointment")
	}
	doctorName := strings.TrimSpace(in.DoctorName)
	if doctorName == "" {
		return domain.Appointment{}, domain.Rejected(domain.RejectInvalidRequest, "doctor.name.required", "doctor")
	}

	existing, err := s.appointments.FindByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Appointment{}, domain.Rejected(domain.RejectNotFound, "appointment.id.not_found", "appointment")
		}
		return domain.Appointment{}, err
	}

	doctor, err := s.doctors.FindByName(ctx, doctorName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Appointment{}, domain.Rejected(domain.RejectNotFound, "doctor.name.not_found", "doctor")
		}
		return domain.Appointment{}, err
	}

	patientID := existing.PatientID
	if name := strings.TrimSpace(in.PatientName); name != "" {
		patient, err := s.patients.FindByName(ctx, name)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Appointment{}, domain.Rejected(domain.RejectNotFound, "patient.name.not_found", "patient")
			}
			return domain.Appointment{}, err
		}
		patientID = patient.ID
	}

	date := in.AppointmentDate.UTC()
	var out domain.Appointment
	err = s.appointments.InDoctorDayTransaction(ctx, doctor.ID, date, func(ctx context.Context, tx store.ScheduleTx) error {
		dayStart, dayEnd := domain.DayWindow(date)
		sameDay, err := tx.ListDoctorDay(ctx, doctor.ID, dayStart, dayEnd)
		if err != nil {
			return err
		}
		if r := domain.ValidateUpdate(doctor, date, s.now().UTC(), sameDay, existing.ID); r != nil {
			return r
		}
		existing.DoctorID = doctor.ID
		existing.PatientID = patientID
		existing.AppointmentDate = date
		updated, err := tx.UpdateAppointment(ctx, existing)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

// Delete refuses to remove an appointment that still has a linked
// prescription; the caller must delete the prescription first. The
// foreign key on prescriptions.appointment_id backstops the check.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return domain.Rejected(domain.RejectInvalidRequest, "appointment.id.required", "appointment")
	}

	if _, err := s.appointments.FindByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Rejected(domain.RejectNotFound, "appointment.id.not_found", "appointment")
		}
		return err
	}

	_, err := s.prescriptions.FindByAppointmentID(ctx, id)
	switch {
	case err == nil:
		return domain.Rejected(domain.RejectInvalidRequest, "appointment.has_linked_prescription", "prescription")
	case !errors.Is(err, store.ErrNotFound):
		return err
	}

	err = s.appointments.Delete(ctx, id)
	if errors.Is(err, store.ErrLinkedRecords) {
		return domain.Rejected(domain.RejectInvalidRequest, "appointment.has_linked_prescription", "prescription")
	}
	if errors.Is(err, store.ErrNotFound) {
		return domain.Rejected(domain.RejectNotFound, "appointment.id.not_found", "appointment")
	}
	return err
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]domain.Appointment, error) {
	if doctorID == uuid.Nil {
		return nil, domain.Rejected(domain.RejectInvalidRequest, "doctor.id.required", "doctor")
	}
	return s.appointments.ListByDoctor(ctx, doctorID)
}

// ListByDoctorBetween lists a doctor's appointments within an
// inclusive date range.
func (s *Service) ListByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]domain.Appointment, error) {
	if doctorID == uuid.Nil {
		return nil, domain.Rejected(domain.RejectInvalidRequest, "doctor.id.required", "doctor")
	}
	if from.IsZero() || to.IsZero() {
		return nil, domain.Rejected(domain.RejectInvalidRequest, "range.required", "appointment")
	}
	if to.Before(from) {
		return nil, domain.Rejected(domain.RejectInvalidRequest, "range.inverted", "appointment")
	}
	return s.appointments.FindByDoctorAndDateRange(ctx, doctorID, from.UTC(), to.UTC())
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Appointment, error) {
	if patientID == uuid.Nil {
		return nil, domain.Rejected(domain.RejectInvalidRequest, "patient.id.required", "patient")
	}
	return s.appointments.ListByPatient(ctx, patientID)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	if id == uuid.Nil {
		return domain.Appointment{}, domain.Rejected(domain.RejectInvalidRequest, "appointment.id.required", "appointment")
	}
	appt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Appointment{}, domain.Rejected(domain.RejectNotFound, "appointment.id.not_found", "appointment")
		}
		return domain.Appointment{}, err
	}
	return appt, nil
}
