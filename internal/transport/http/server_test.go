package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinicbook/backend/internal/domain"
)

func newTestServer(directorySvc directoryService, requestTimeout time.Duration) *Server {
	return NewServer(Handlers{
		Appointments:  NewAppointmentsHandler(&fakeSchedulingService{}, nil),
		Prescriptions: NewPrescriptionsHandler(&fakePrescriptionsService{}, nil),
		Directory:     NewDirectoryHandler(directorySvc, nil),
	}, requestTimeout, nil)
}

func TestServer_RequestTimeoutBoundsHandlerContext(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	svc := &fakeDirectoryService{
		listDoctorsFn: func(ctx context.Context) ([]domain.Doctor, error) {
			deadline, hasDeadline = ctx.Deadline()
			return nil, nil
		},
	}
	srv := newTestServer(svc, 250*time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors", nil)
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !hasDeadline {
		t.Fatal("handler context has no deadline")
	}
	if remaining := time.Until(deadline); remaining > 250*time.Millisecond {
		t.Fatalf("deadline %v from now, want at most 250ms", remaining)
	}
}

func TestServer_ZeroTimeoutLeavesContextUnbounded(t *testing.T) {
	var hasDeadline bool
	svc := &fakeDirectoryService{
		listDoctorsFn: func(ctx context.Context) ([]domain.Doctor, error) {
			_, hasDeadline = ctx.Deadline()
			return nil, nil
		},
	}
	srv := newTestServer(svc, 0)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors", nil)
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if hasDeadline {
		t.Fatal("handler context has a deadline, want none")
	}
}
