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

type DoctorRepo struct {
	db *bun.DB
}

func NewDoctorRepo(db *bun.DB) *DoctorRepo {
	return &DoctorRepo{db: db}
}

func (r *DoctorRepo) Create(ctx context.Context, doc domain.Doctor) (domain.Doctor, error) {
	_, err := r.db.NewInsert().Model(&doc).Exec(ctx)
	if err != nil {
		return domain.Doctor{}, mapUniqueError(err)
	}
	return doc, nil
}

func (r *DoctorRepo) Update(ctx context.Context, doc domain.Doctor) (domain.Doctor, error) {
	res, err := r.db.NewUpdate().
		Model(&doc).
		Column("name", "phone", "attend_time", "leave_time", "working_days", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.Doctor{}, mapUniqueError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Doctor{}, err
	}
	if affected == 0 {
		return domain.Doctor{}, store.ErrNotFound
	}
	return doc, nil
}

func (r *DoctorRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.Doctor, error) {
	var doc domain.Doctor
	err := r.db.NewSelect().Model(&doc).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Doctor{}, store.ErrNotFound
		}
		return domain.Doctor{}, err
	}
	return doc, nil
}

func (r *DoctorRepo) FindByName(ctx context.Context, name string) (domain.Doctor, error) {
	var doc domain.Doctor
	err := r.db.NewSelect().Model(&doc).Where("name = ?", name).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Doctor{}, store.ErrNotFound
		}
		return domain.Doctor{}, err
	}
	return doc, nil
}

func (r *DoctorRepo) List(ctx context.Context) ([]domain.Doctor, error) {
	var rows []domain.Doctor
	err := r.db.NewSelect().Model(&rows).OrderExpr("name ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DoctorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.Doctor)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return store.ErrLinkedRecords
		}
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

type PatientRepo struct {
	db *bun.DB
}

func NewPatientRepo(db *bun.DB) *PatientRepo {
	return &PatientRepo{db: db}
}

func (r *PatientRepo) Create(ctx context.Context, p domain.Patient) (domain.Patient, error) {
	_, err := r.db.NewInsert().Model(&p).Exec(ctx)
	if err != nil {
		return domain.Patient{}, mapUniqueError(err)
	}
	return p, nil
}

func (r *PatientRepo) Update(ctx context.Context, p domain.Patient) (domain.Patient, error) {
	res, err := r.db.NewUpdate().
		Model(&p).
		Column("name", "phone", "gender", "age", "status", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.Patient{}, mapUniqueError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Patient{}, err
	}
	if affected == 0 {
		return domain.Patient{}, store.ErrNotFound
	}
	return p, nil
}

func (r *PatientRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.Patient, error) {
	var p domain.Patient
	err := r.db.NewSelect().Model(&p).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Patient{}, store.ErrNotFound
		}
		return domain.Patient{}, err
	}
	return p, nil
}

func (r *PatientRepo) FindByName(ctx context.Context, name string) (domain.Patient, error) {
	var p domain.Patient
	err := r.db.NewSelect().Model(&p).Where("name = ?", name).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Patient{}, store.ErrNotFound
		}
		return domain.Patient{}, err
	}
	return p, nil
}

func (r *PatientRepo) List(ctx context.Context) ([]domain.Patient, error) {
	var rows []domain.Patient
	err := r.db.NewSelect().Model(&rows).OrderExpr("name ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PatientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.Patient)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return store.ErrLinkedRecords
		}
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

// mapUniqueError translates unique-violation writes on names and
// phones into the already-exists sentinel.
func mapUniqueError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return store.ErrAlreadyExists
	}
	return err
}
