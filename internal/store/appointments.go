package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"clinicbook/backend/internal/domain"
)

// ScheduleTx is the slice of appointment storage visible inside a
// doctor-day transaction. Everything read through it sees a snapshot
// no concurrent booking for the same doctor and day can invalidate.
type ScheduleTx interface {
	ListDoctorDay(ctx context.Context, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]domain.Appointment, error)
	CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	UpdateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
}

type AppointmentRepository interface {
	// InDoctorDayTransaction runs fn inside a transaction that holds
	// an exclusive lock scoped to (doctorID, day's calendar date),
	// serializing the read-validate-write sequence against other
	// bookings for the same doctor and day.
	InDoctorDayTransaction(ctx context.Context, doctorID uuid.UUID, day time.Time, fn func(ctx context.Context, tx ScheduleTx) error) error

	FindByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]domain.Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Appointment, error)
	FindByDoctorAndDateRange(ctx context.Context, doctorID uuid.UUID, startInclusive, endInclusive time.Time) ([]domain.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
