package postgres

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"clinicbook/backend/internal/domain"
	"clinicbook/backend/internal/store"
)

func TestPostgresIntegration_BookingAndPrescriptionFlow(t *testing.T) {
	databaseURL := strings.TrimSpace(os.Getenv("CLINICBOOK_TEST_DATABASE_URL"))
	if databaseURL == "" {
		t.Skip("CLINICBOOK_TEST_DATABASE_URL not set")
	}

	db, err := Open(databaseURL, PoolConfig{MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close(db)
	})

	schema := "clinicbook_test_" + randomHex(t, 8)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, _ = db.NewRaw("DROP SCHEMA IF EXISTS " + schema + " CASCADE").Exec(ctx)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewRaw("CREATE SCHEMA " + schema).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewRaw("SET LOCAL search_path TO " + schema).Exec(ctx); err != nil {
			return err
		}
		if err := applyMigrations(ctx, tx); err != nil {
			return err
		}

		doctorID := uuid.MustParse("00000000-0000-0000-0000-000000000901")
		patientID := uuid.MustParse("00000000-0000-0000-0000-000000000902")

		doctor := domain.Doctor{
			ID:          doctorID,
			Name:        "Dr. Salem",
			Phone:       "01012345678",
			AttendTime:  domain.NewTimeOfDay(9, 0),
			LeaveTime:   domain.NewTimeOfDay(17, 0),
			WorkingDays: []int16{1, 2, 3, 4, 5},
		}
		if _, err := tx.NewInsert().Model(&doctor).Exec(ctx); err != nil {
			return err
		}
		patient := domain.Patient{
			ID:     patientID,
			Name:   "Mona",
			Phone:  "01512345678",
			Gender: "female",
			Age:    30,
			Status: "active",
		}
		if _, err := tx.NewInsert().Model(&patient).Exec(ctx); err != nil {
			return err
		}

		s := scheduleTx{tx: tx}
		slot := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

		a1, err := s.CreateAppointment(ctx, domain.Appointment{
			ID:              uuid.MustParse("00000000-0000-0000-0000-000000000911"),
			DoctorID:        doctorID,
			PatientID:       patientID,
			AppointmentDate: slot,
		})
		if err != nil {
			return err
		}
		if a1.CreatedAt.IsZero() || a1.UpdatedAt.IsZero() {
			return fmt.Errorf("created appointment has zero timestamps: created_at=%v updated_at=%v", a1.CreatedAt, a1.UpdatedAt)
		}

		dayStart, dayEnd := domain.DayWindow(slot)
		rows, err := s.ListDoctorDay(ctx, doctorID, dayStart, dayEnd)
		if err != nil {
			return err
		}
		if len(rows) != 1 {
			return fmt.Errorf("len(rows) = %d, want 1", len(rows))
		}
		if rows[0].ID != a1.ID {
			return fmt.Errorf("listed id = %s, want %s", rows[0].ID, a1.ID)
		}

		// The unique (doctor_id, appointment_date) index backstops the
		// exact-double-booking check. Failed statements abort the
		// enclosing transaction, so each expected failure runs under
		// a savepoint.
		err = withSavepoint(ctx, tx, "double_book", func() error {
			_, err := s.CreateAppointment(ctx, domain.Appointment{
				ID:              uuid.MustParse("00000000-0000-0000-0000-000000000912"),
				DoctorID:        doctorID,
				PatientID:       patientID,
				AppointmentDate: slot,
			})
			return err
		})
		if err != store.ErrConflict {
			return fmt.Errorf("double-book err = %v, want %v", err, store.ErrConflict)
		}

		p := domain.Prescription{
			ID:            uuid.MustParse("00000000-0000-0000-0000-000000000921"),
			DoctorID:      doctorID,
			PatientID:     patientID,
			AppointmentID: a1.ID,
			IssuedAt:      slot.Add(time.Hour),
		}
		if _, err := tx.NewInsert().Model(&p).Exec(ctx); err != nil {
			return err
		}

		// Second prescription for the same appointment violates the
		// unique appointment_id index.
		err = withSavepoint(ctx, tx, "duplicate_linkage", func() error {
			p2 := domain.Prescription{
				ID:            uuid.MustParse("00000000-0000-0000-0000-000000000922"),
				DoctorID:      doctorID,
				PatientID:     patientID,
				AppointmentID: a1.ID,
				IssuedAt:      slot.Add(2 * time.Hour),
			}
			_, err := tx.NewInsert().Model(&p2).Exec(ctx)
			return mapPrescriptionWriteError(err)
		})
		if err != store.ErrDuplicateLinkage {
			return fmt.Errorf("duplicate linkage err = %v, want %v", err, store.ErrDuplicateLinkage)
		}

		// The FK on prescriptions.appointment_id blocks deleting a
		// prescribed appointment.
		err = withSavepoint(ctx, tx, "fk_restrict", func() error {
			_, err := tx.NewDelete().
				Model((*domain.Appointment)(nil)).
				Where("id = ?", a1.ID).
				Exec(ctx)
			return err
		})
		if err == nil {
			return fmt.Errorf("expected FK violation deleting prescribed appointment")
		}

		return nil
	})
	if err != nil {
		t.Fatalf("tx error: %v", err)
	}
}

func withSavepoint(ctx context.Context, tx bun.Tx, name string, fn func() error) error {
	if _, err := tx.NewRaw("SAVEPOINT " + name).Exec(ctx); err != nil {
		return err
	}
	err := fn()
	if err != nil {
		if _, rbErr := tx.NewRaw("ROLLBACK TO SAVEPOINT " + name).Exec(ctx); rbErr != nil {
			return rbErr
		}
		return err
	}
	_, relErr := tx.NewRaw("RELEASE SAVEPOINT " + name).Exec(ctx)
	return relErr
}

func randomHex(t *testing.T, bytesLen int) string {
	t.Helper()
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read error: %v", err)
	}
	return hex.EncodeToString(b)
}

type rawExecutor interface {
	NewRaw(query string, args ...any) *bun.RawQuery
}

func applyMigrations(ctx context.Context, exec rawExecutor) error {
	dir, err := migrationsDir()
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type mig struct {
		name string
		path string
	}
	migs := make([]mig, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		migs = append(migs, mig{name: e.Name(), path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(migs, func(i, j int) bool { return migs[i].name < migs[j].name })

	for _, m := range migs {
		b, err := os.ReadFile(m.path)
		if err != nil {
			return err
		}
		upSQL, err := extractGooseUp(string(b))
		if err != nil {
			return err
		}
		for _, stmt := range splitSQLStatements(upSQL) {
			if _, err := exec.NewRaw(stmt).Exec(ctx); err != nil {
				return err
			}
		}
	}

	return nil
}

func migrationsDir() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("runtime.Caller failed")
	}
	base := filepath.Dir(file)
	return filepath.Clean(filepath.Join(base, "..", "..", "..", "migrations")), nil
}

func extractGooseUp(sql string) (string, error) {
	upMarker := "-- +goose Up"
	downMarker := "-- +goose Down"

	upIdx := strings.Index(sql, upMarker)
	if upIdx < 0 {
		return "", fmt.Errorf("missing goose up marker")
	}
	afterUp := sql[upIdx+len(upMarker):]
	afterUp = strings.TrimLeft(afterUp, "\r\n")

	downIdx := strings.Index(afterUp, downMarker)
	if downIdx < 0 {
		return strings.TrimSpace(afterUp), nil
	}
	return strings.TrimSpace(afterUp[:downIdx]), nil
}

func splitSQLStatements(sql string) []string {
	parts := strings.Split(sql, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
