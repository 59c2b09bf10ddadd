// Package directory manages the registry of doctors and patients that
// the scheduling and prescription flows resolve names against.
package directory

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"

	"clinicbook/backend/internal/domain"
	"clinicbook/backend/internal/store"
)

// phonePattern accepts the national mobile prefixes followed by eight
// digits, eleven digits total.
var phonePattern = regexp.MustCompile(`^(010|011|012|015)[0-9]{8}$`)

// MinPatientAge is the youngest age the clinic registers directly.
// Younger patients go through a guardian's record.
const MinPatientAge = 12

type Service struct {
	doctors  store.DoctorRepository
	patients store.PatientRepository
}

func NewService(doctors store.DoctorRepository, patients store.PatientRepository) *Service {
	return &Service{doctors: doctors, patients: patients}
}

type RegisterDoctorInput struct {
	Name        string
	Phone       string
	AttendTime  domain.TimeOfDay
	LeaveTime   domain.TimeOfDay
	WorkingDays []int16
}

// normalizeWorkingDays deduplicates and sorts ISO weekday numbers.
// Returns false when the list is empty or contains a value outside
// 1..7.
func normalizeWorkingDays(days []int16) ([]int16, bool) {
	if len(days) == 0 {
		return nil, false
	}
	out := make([]int16, 0, len(days))
	for _, d := range days {
		if d < 1 || d > 7 {
			return nil, false
		}
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	slices.Sort(out)
	return out, true
}

func validateDoctorShape(name, phone string, attend, leave domain.TimeOfDay) *domain.Rejection {
	if name == "" {
		return domain.Rejected(domain.RejectInvalidRequest, "doctor.name.required", "doctor")
	}
	if !phonePattern.MatchString(phone) {
		return domain.Rejected(domain.RejectInvalidRequest, "doctor.phone.invalid", "doctor")
	}
	if attend <= domain.ClinicOpens {
		return domain.Rejected(domain.RejectInvalidRequest, "doctor.attend_time.before_opening", "doctor")
	}
	if leave >= domain.ClinicCloses {
		return domain.Rejected(domain.RejectInvalidRequest, "doctor.leave_time.after_closing", "doctor")
	}
	if leave <= attend {
		return domain.Rejected(domain.RejectInvalidRequest, "doctor.leave_time.not_after_attend", "doctor")
	}
	return nil
}

func (s *Service) RegisterDoctor(ctx context.Context, in RegisterDoctorInput) (domain.Doctor, error) {
	name := strings.TrimSpace(in.Name)
	if r := validateDoctorShape(name, in.Phone, in.AttendTime, in.LeaveTime); r != nil {
		return domain.Doctor{}, r
	}
	days, ok := normalizeWorkingDays(in.WorkingDays)
	if !ok {
		return domain.Doctor{}, domain.Rejected(domain.RejectInvalidRequest, "doctor.working_days.invalid", "doctor")
	}

	created, err := s.doctors.Create(ctx, domain.Doctor{
		Name:        name,
		Phone:       in.Phone,
		AttendTime:  in.AttendTime,
		LeaveTime:   in.LeaveTime,
		WorkingDays: days,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Doctor{}, domain.Rejected(domain.RejectAlreadyExists, "doctor.name.taken", "doctor")
	}
	if err != nil {
		return domain.Doctor{}, err
	}
	return created, nil
}

type UpdateDoctorInput struct {
	ID          uuid.UUID
	Name        string
	Phone       string
	AttendTime  domain.TimeOfDay
	LeaveTime   domain.TimeOfDay
	WorkingDays []int16
}

func (s *Service) UpdateDoctor(ctx context.Context, in UpdateDoctorInput) (domain.Doctor, error) {
	if in.ID == uuid.Nil {
		return domain.Doctor{}, domain.Rejected(domain.RejectInvalidRequest, "doctor.id.required", "doctor")
	}
	name := strings.TrimSpace(in.Name)
	if r := validateDoctorShape(name, in.Phone, in.AttendTime, in.LeaveTime); r != nil {
		return domain.Doctor{}, r
	}
	days, ok := normalizeWorkingDays(in.WorkingDays)
	if !ok {
		return domain.Doctor{}, domain.Rejected(domain.RejectInvalidRequest, "doctor.working_days.invalid", "doctor")
	}

	existing, err := s.doctors.FindByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Doctor{}, domain.Rejected(domain.RejectNotFound, "doctor.id.not_found", "doctor")
		}
		return domain.Doctor{}, err
	}

	existing.Name = name
	existing.Phone = in.Phone
	existing.AttendTime = in.AttendTime
	existing.LeaveTime = in.LeaveTime
	existing.WorkingDays = days

	updated, err := s.doctors.Update(ctx, existing)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Doctor{}, domain.Rejected(domain.RejectAlreadyExists, "doctor.name.taken", "doctor")
	}
	if errors.Is(err, store.ErrNotFound) {
		return domain.Doctor{}, domain.Rejected(domain.RejectNotFound, "doctor.id.not_found", "doctor")
	}
	if err != nil {
		return domain.Doctor{}, err
	}
	return updated, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (domain.Doctor, error) {
	if id == uuid.Nil {
		return domain.Doctor{}, domain.Rejected(domain.RejectInvalidRequest, "doctor.id.required", "doctor")
	}
	doc, err := s.doctors.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Doctor{}, domain.Rejected(domain.RejectNotFound, "doctor.id.not_found", "doctor")
	}
	return doc, err
}

func (s *Service) GetDoctorByName(ctx context.Context, name string) (domain.Doctor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Doctor{}, domain.Rejected(domain.RejectInvalidRequest, "doctor.name.required", "doctor")
	}
	doc, err := s.doctors.FindByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Doctor{}, domain.Rejected(domain.RejectNotFound, "doctor.name.not_found", "doctor")
	}
	return doc, err
}

func (s *Service) ListDoctors(ctx context.Context) ([]domain.Doctor, error) {
	return s.doctors.List(ctx)
}

// DeleteDoctor removes a doctor with no remaining appointments or
// prescriptions. Linked records surface as an invalid_request
// rejection via the foreign keys.
func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return domain.Rejected(domain.RejectInvalidRequest, "doctor.id.required", "doctor")
	}
	err := s.doctors.Delete(ctx, id)
	if errors.Is(err, store.ErrLinkedRecords) {
		return domain.Rejected(domain.RejectInvalidRequest, "doctor.has_linked_records", "doctor")
	}
	if errors.Is(err, store.ErrNotFound) {
		return domain.Rejected(domain.RejectNotFound, "doctor.id.not_found", "doctor")
	}
	return err
}

type RegisterPatientInput struct {
	Name   string
	Phone  string
	Gender string
	Age    int
	Status string
}

func validatePatientShape(name string, in RegisterPatientInput) *domain.Rejection {
	if name == "" {
		return domain.Rejected(domain.RejectInvalidRequest, "patient.name.required", "patient")
	}
	if !phonePattern.MatchString(in.Phone) {
		return domain.Rejected(domain.RejectInvalidRequest, "patient.phone.invalid", "patient")
	}
	if in.Age < MinPatientAge {
		return domain.Rejected(domain.RejectInvalidRequest, "patient.age.below_minimum", "patient")
	}
	if strings.TrimSpace(in.Gender) == "" {
		return domain.Rejected(domain.RejectInvalidRequest, "patient.gender.required", "patient")
	}
	if strings.TrimSpace(in.Status) == "" {
		return domain.Rejected(domain.RejectInvalidRequest, "patient.status.required", "patient")
	}
	return nil
}

func (s *Service) RegisterPatient(ctx context.Context, in RegisterPatientInput) (domain.Patient, error) {
	name := strings.TrimSpace(in.Name)
	if r := validatePatientShape(name, in); r != nil {
		return domain.Patient{}, r
	}

	created, err := s.patients.Create(ctx, domain.Patient{
		Name:   name,
		Phone:  in.Phone,
		Gender: in.Gender,
		Age:    in.Age,
		Status: in.Status,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Patient{}, domain.Rejected(domain.RejectAlreadyExists, "patient.name.taken", "patient")
	}
	if err != nil {
		return domain.Patient{}, err
	}
	return created, nil
}

type UpdatePatientInput struct {
	ID     uuid.UUID
	Name   string
	Phone  string
	Gender string
	Age    int
	Status string
}

func (s *Service) UpdatePatient(ctx context.Context, in UpdatePatientInput) (domain.Patient, error) {
	if in.ID == uuid.Nil {
		return domain.Patient{}, domain.Rejected(domain.RejectInvalidRequest, "patient.id.required", "patient")
	}
	name := strings.TrimSpace(in.Name)
	if r := validatePatientShape(name, RegisterPatientInput{
		Name:   in.Name,
		Phone:  in.Phone,
		Gender: in.Gender,
		Age:    in.Age,
		Status: in.Status,
	}); r != nil {
		return domain.Patient{}, r
	}

	existing, err := s.patients.FindByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Patient{}, domain.Rejected(domain.RejectNotFound, "patient.id.not_found", "patient")
		}
		return domain.Patient{}, err
	}

	existing.Name = name
	existing.Phone = in.Phone
	existing.Gender = in.Gender
	existing.Age = in.Age
	existing.Status = in.Status

	updated, err := s.patients.Update(ctx, existing)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Patient{}, domain.Rejected(domain.RejectAlreadyExists, "patient.name.taken", "patient")
	}
	if errors.Is(err, store.ErrNotFound) {
		return domain.Patient{}, domain.Rejected(domain.RejectNotFound, "patient.id.not_found", "patient")
	}
	if err != nil {
		return domain.Patient{}, err
	}
	return updated, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (domain.Patient, error) {
	if id == uuid.Nil {
		return domain.Patient{}, domain.Rejected(domain.RejectInvalidRequest, "patient.id.required", "patient")
	}
	p, err := s.patients.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Patient{}, domain.Rejected(domain.RejectNotFound, "patient.id.not_found", "patient")
	}
	return p, err
}

func (s *Service) GetPatientByName(ctx context.Context, name string) (domain.Patient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Patient{}, domain.Rejected(domain.RejectInvalidRequest, "patient.name.required", "patient")
	}
	p, err := s.patients.FindByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Patient{}, domain.Rejected(domain.RejectNotFound, "patient.name.not_found", "patient")
	}
	return p, err
}

func (s *Service) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	return s.patients.List(ctx)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return domain.Rejected(domain.RejectInvalidRequest, "patient.id.required", "patient")
	}
	err := s.patients.Delete(ctx, id)
	if errors.Is(err, store.ErrLinkedRecords) {
		return domain.Rejected(domain.RejectInvalidRequest, "patient.has_linked_records", "patient")
	}
	if errors.Is(err, store.ErrNotFound) {
		return domain.Rejected(domain.RejectNotFound, "patient.id.not_found", "patient")
	}
	return err
}
