package domain

import (
	"time"

	"github.com/google/uuid"
)

// MinSeparation is the buffer required between any two appointments
// for the same doctor on the same day.
const MinSeparation = 30 * time.Minute

// DayWindow returns the inclusive [00:00:00, 23:59:59] bounds of t's
// calendar date. Conflict checks are scoped to this window, so two
// bookings that straddle midnight never conflict even when they are
// minutes apart.
func DayWindow(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24*time.Hour - time.Second)
}

// ValidateBookingTime checks a candidate timestamp against the
// doctor's calendar. Checks run in a fixed order and the first
// failure wins, so identical inputs always surface the same rule.
func ValidateBookingTime(doctor Doctor, candidate, now time.Time) *Rejection {
	candidate = candidate.UTC()

	today, _ := DayWindow(now)
	day, _ := DayWindow(candidate)
	if !day.After(today) {
		return Rejected(RejectOutsideWorkingWindow, "appointment.date.not_future", "appointment")
	}

	if !doctor.WorksOn(ISOWeekday(candidate)) {
		return Rejected(RejectOutsideWorkingWindow, "doctor.not_working_that_day", "doctor")
	}

	// Seconds matter at the boundaries: a candidate at 17:00:59 is
	// past a 17:00 leave time.
	sec := secondOfDay(candidate)
	if sec < doctor.AttendTime.SecondOfDay() {
		return Rejected(RejectOutsideWorkingWindow, "appointment.before_attend_time", "doctor")
	}
	if sec > doctor.LeaveTime.SecondOfDay() {
		return Rejected(RejectOutsideWorkingWindow, "appointment.after_leave_time", "doctor")
	}

	if sec < ClinicOpens.SecondOfDay() || sec > ClinicCloses.SecondOfDay() {
		return Rejected(RejectOutsideWorkingWindow, "appointment.outside_clinic_hours", "clinic")
	}

	return nil
}

func secondOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// DetectConflict compares the candidate timestamp against the
// doctor's appointments for the same calendar day. excludeID removes
// the appointment under modification from the comparison set; pass
// uuid.Nil on create. The separation rule is symmetric.
func DetectConflict(sameDay []Appointment, candidate time.Time, excludeID uuid.UUID) *Rejection {
	candidate = candidate.UTC()
	for _, e := range sameDay {
		if excludeID != uuid.Nil && e.ID == excludeID {
			continue
		}
		if e.AppointmentDate.Equal(candidate) {
			return Rejected(RejectSchedulingConflict, "appointment.exact_double_booking", "appointment")
		}
		diff := e.AppointmentDate.Sub(candidate)
		if diff < 0 {
			diff = -diff
		}
		if diff < MinSeparation {
			return Rejected(RejectSchedulingConflict, "appointment.too_close_to_existing", "appointment")
		}
	}
	return nil
}

// ValidateCreate approves or rejects a new booking. sameDay must hold
// the doctor's appointments within DayWindow(candidate). Deterministic
// over its inputs; the store's transaction supplies the snapshot.
func ValidateCreate(doctor Doctor, candidate, now time.Time, sameDay []Appointment) *Rejection {
	if r := ValidateBookingTime(doctor, candidate, now); r != nil {
		return r
	}
	return DetectConflict(sameDay, candidate, uuid.Nil)
}

// ValidateUpdate is ValidateCreate with the appointment under
// modification excluded, so moving an appointment onto its own slot
// never self-conflicts.
func ValidateUpdate(doctor Doctor, candidate, now time.Time, sameDay []Appointment, selfID uuid.UUID) *Rejection {
	if r := ValidateBookingTime(doctor, candidate, now); r != nil {
		return r
	}
	return DetectConflict(sameDay, candidate, selfID)
}
