package store

import (
	"context"

	"github.com/google/uuid"

	"clinicbook/backend/internal/domain"
)

type PrescriptionRepository interface {
	Create(ctx context.Context, p domain.Prescription) (domain.Prescription, error)
	Update(ctx context.Context, p domain.Prescription) (domain.Prescription, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Prescription, error)
	// FindByAppointmentID returns ErrNotFound when the appointment has
	// no linked prescription.
	FindByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (domain.Prescription, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]domain.Prescription, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Prescription, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
