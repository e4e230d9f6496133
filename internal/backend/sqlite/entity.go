package sqlite

import (
	"time"

	"gtodo/internal/service"
)

// todoRecord is the persisted form of a todo.
type todoRecord struct {
	ID          int64            `gorm:"primaryKey;autoIncrement"`
	Title       string           `gorm:"size:50;not null"`
	Description string           `gorm:"size:2000;not null"`
	IsDone      bool             `gorm:"not null"`
	Reminders   []reminderRecord `gorm:"foreignKey:TodoID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for todoRecord.
func (todoRecord) TableName() string {
	return "todos"
}

// reminderRecord stores the reminder's wall-clock fields separately so the
// stored value does not depend on the process time zone.
type reminderRecord struct {
	ID     int64 `gorm:"primaryKey;autoIncrement"`
	TodoID int64 `gorm:"index;not null"`
	Minute int   `gorm:"not null"`
	Hour   int   `gorm:"not null"`
	Day    int   `gorm:"not null"`
	Month  int   `gorm:"not null"`
	Year   int   `gorm:"not null"`
}

// TableName returns the table name for reminderRecord.
func (reminderRecord) TableName() string {
	return "reminders"
}

func todoFromService(t service.Todo) todoRecord {
	return todoRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsDone:      t.IsDone,
	}
}

func (r todoRecord) toService() service.Todo {
	return service.Todo{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		IsDone:      r.IsDone,
	}
}

func reminderFromService(r service.Reminder) reminderRecord {
	return reminderRecord{
		ID:     r.ID,
		TodoID: r.TodoID,
		Minute: r.At.Minute(),
		Hour:   r.At.Hour(),
		Day:    r.At.Day(),
		Month:  int(r.At.Month()),
		Year:   r.At.Year(),
	}
}

func (r reminderRecord) toService(loc *time.Location) service.Reminder {
	return service.Reminder{
		ID:     r.ID,
		TodoID: r.TodoID,
		At:     time.Date(r.Year, time.Month(r.Month), r.Day, r.Hour, r.Minute, 0, 0, loc),
	}
}
