package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Prescription links one doctor, one patient, and exactly one
// appointment. An appointment carries at most one prescription; the
// store enforces that with a unique index on appointment_id.
type Prescription struct {
	bun.BaseModel `bun:"table:prescriptions"`

	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	DoctorID      uuid.UUID `bun:"doctor_id,notnull,type:uuid"`
	PatientID     uuid.UUID `bun:"patient_id,notnull,type:uuid"`
	AppointmentID uuid.UUID `bun:"appointment_id,notnull,type:uuid"`
	IssuedAt      time.Time `bun:"issued_at,notnull"`
	Notes         string    `bun:"notes"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}

func (p *Prescription) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if p.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			p.ID = id
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		p.UpdatedAt = now
	}
	return nil
}
