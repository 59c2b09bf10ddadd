package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"clinicbook/backend/internal/domain"
	"clinicbook/backend/internal/store"
)

type PrescriptionRepo struct {
	db *bun.DB
}

func NewPrescriptionRepo(db *bun.DB) *PrescriptionRepo {
	return &PrescriptionRepo{db: db}
}

func (r *PrescriptionRepo) Create(ctx context.Context, p domain.Prescription) (domain.Prescription, error) {
	_, err := r.db.NewInsert().Model(&p).Exec(ctx)
	if err != nil {
		return domain.Prescription{}, mapPrescriptionWriteError(err)
	}
	return p, nil
}

func (r *PrescriptionRepo) Update(ctx context.Context, p domain.Prescription) (domain.Prescription, error) {
	res, err := r.db.NewUpdate().
		Model(&p).
		Column("doctor_id", "patient_id", "issued_at", "notes", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.Prescription{}, mapPrescriptionWriteError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Prescription{}, err
	}
	if affected == 0 {
		return domain.Prescription{}, store.ErrNotFound
	}
	return p, nil
}

func (r *PrescriptionRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.Prescription, error) {
	var p domain.Prescription
	err := r.db.NewSelect().Model(&p).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Prescription{}, store.ErrNotFound
		}
		return domain.Prescription{}, err
	}
	return p, nil
}

func (r *PrescriptionRepo) FindByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (domain.Prescription, error) {
	var p domain.Prescription
	err := r.db.NewSelect().Model(&p).Where("appointment_id = ?", appointmentID).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Prescription{}, store.ErrNotFound
		}
		return domain.Prescription{}, err
	}
	return p, nil
}

func (r *PrescriptionRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]domain.Prescription, error) {
	var rows []domain.Prescription
	err := r.db.NewSelect().
		Model(&rows).
		Where("doctor_id = ?", doctorID).
		OrderExpr("issued_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PrescriptionRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Prescription, error) {
	var rows []domain.Prescription
	err := r.db.NewSelect().
		Model(&rows).
		Where("patient_id = ?", patientID).
		OrderExpr("issued_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PrescriptionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.Prescription)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// The unique index on prescriptions.appointment_id backstops the
// lookup-before-insert linkage check under concurrent adds.
func mapPrescriptionWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return store.ErrDuplicateLinkage
	}
	return err
}
