package store

import (
	"context"

	"github.com/google/uuid"

	"clinicbook/backend/internal/domain"
)

type DoctorRepository interface {
	Create(ctx context.Context, doc domain.Doctor) (domain.Doctor, error)
	Update(ctx context.Context, doc domain.Doctor) (domain.Doctor, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Doctor, error)
	FindByName(ctx context.Context, name string) (domain.Doctor, error)
	List(ctx context.Context) ([]domain.Doctor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PatientRepository interface {
	Create(ctx context.Context, p domain.Patient) (domain.Patient, error)
	Update(ctx context.Context, p domain.Patient) (domain.Patient, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Patient, error)
	FindByName(ctx context.Context, name string) (domain.Patient, error)
	List(ctx context.Context) ([]domain.Patient, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
