package entity

import (
	"time"

	"github.com/google/uuid"
)

// DoctorSchedule represents one working-hours range for a doctor on a date.
// The booking coordinator partitions these ranges into bookable slots.
type DoctorSchedule struct {
	ID           int       `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID     uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	ScheduleDate time.Time `gorm:"type:date;not null;index" json:"schedule_date"`
	StartTime    string    `gorm:"type:time;not null" json:"start_time"`
	EndTime      string    `gorm:"type:time;not null" json:"end_time"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DoctorSchedule) TableName() string {
	return "doctor_schedules"
}

// TimeRange is one absolute working-hours window on a concrete date.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Range resolves the stored date plus HH:MM bounds into an absolute window.
// Malformed time strings yield a zero range, which produces no slots.
func (s *DoctorSchedule) Range() TimeRange {
	start, err1 := time.Parse("15:04", s.StartTime)
	end, err2 := time.Parse("15:04", s.EndTime)
	if err1 != nil || err2 != nil {
		return TimeRange{}
	}
	day := s.ScheduleDate.UTC().Truncate(24 * time.Hour)
	return TimeRange{
		Start: day.Add(time.Duration(start.Hour())*time.Hour + time.Duration(start.Minute())*time.Minute),
		End:   day.Add(time.Duration(end.Hour())*time.Hour + time.Duration(end.Minute())*time.Minute),
	}
}
