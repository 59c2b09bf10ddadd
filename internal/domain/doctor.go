package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Doctor weekdays follow the ISO numbering the scheduling queries use:
// 1=Monday through 7=Sunday.
type Doctor struct {
	bun.BaseModel `bun:"table:doctors"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	Name        string    `bun:"name,notnull"`
	Phone       string    `bun:"phone,notnull"`
	AttendTime  TimeOfDay `bun:"attend_time,notnull"`
	LeaveTime   TimeOfDay `bun:"leave_time,notnull"`
	WorkingDays []int16   `bun:"working_days,array,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

func (d *Doctor) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if d.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			d.ID = id
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}
		if d.UpdatedAt.IsZero() {
			d.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		d.UpdatedAt = now
	}
	return nil
}

// WorksOn reports whether weekday wd (1=Monday..7=Sunday) is in the
// doctor's working-day set.
func (d *Doctor) WorksOn(wd int16) bool {
	for _, w := range d.WorkingDays {
		if w == wd {
			return true
		}
	}
	return false
}

// ISOWeekday maps t's weekday to 1=Monday..7=Sunday.
func ISOWeekday(t time.Time) int16 {
	if wd := t.Weekday(); wd != time.Sunday {
		return int16(wd)
	}
	return 7
}
