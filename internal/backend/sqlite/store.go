// Package sqlite implements service.Service on a local SQLite database
// through gorm.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	driver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gtodo/internal/observable"
	"gtodo/internal/service"
)

// QueryTimeout bounds the queries run to refresh observers.
const QueryTimeout = 5 * time.Second

// Options configures Open.
type Options struct {
	// Logger receives store diagnostics. Nil discards them.
	Logger *slog.Logger

	// Debug enables gorm's SQL logging.
	Debug bool

	// Location is the zone reminders are read back in. Nil means time.Local.
	Location *time.Location
}

// Store is a service.Service backed by SQLite.
type Store struct {
	db      *gorm.DB
	log     *slog.Logger
	loc     *time.Location
	changes observable.Signal
}

var _ service.Service = (*Store)(nil)

// Open opens (creating if needed) the database at path and migrates it.
// Use ":memory:" for a throwaway database.
func Open(path string, opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	level := logger.Silent
	if opts.Debug {
		level = logger.Info
	}
	// SQL traces go through slog
	gormLog := logger.New(slog.NewLogLogger(log.Handler(), slog.LevelDebug), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})

	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on"
	}

	db, err := gorm.Open(driver.Open(dsn), &gorm.Config{
		Logger: gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite serialises writers anyway and an in-memory
	// database lives only as long as its connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := db.AutoMigrate(&todoRecord{}, &reminderRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	s := &Store{
		db:      db,
		log:     log,
		loc:     opts.Location,
		changes: observable.NewSignal(),
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	s.log.Debug("database opened", "path", path)
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListTodos returns all todos in creation order.
func (s *Store) ListTodos(ctx context.Context) ([]service.Todo, error) {
	var records []todoRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	todos := make([]service.Todo, len(records))
	for i, r := range records {
		todos[i] = r.toService()
	}
	return todos, nil
}

// GetTodo returns the todo with id or service.ErrNotFound.
func (s *Store) GetTodo(ctx context.Context, id int64) (service.Todo, error) {
	var r todoRecord
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return service.Todo{}, service.ErrNotFound
		}
		return service.Todo{}, fmt.Errorf("failed to get todo: %w", err)
	}
	return r.toService(), nil
}

// UpsertTodo inserts t when its ID is 0 and updates it in place otherwise.
func (s *Store) UpsertTodo(ctx context.Context, t service.Todo) (int64, error) {
	if t.Title == "" {
		return 0, service.ErrEmptyTitle
	}
	r := todoFromService(t)
	if err := s.db.WithContext(ctx).Save(&r).Error; err != nil {
		return 0, fmt.Errorf("failed to save todo: %w", err)
	}
	s.log.Debug("todo saved", "id", r.ID)
	s.changes.Notify()
	return r.ID, nil
}

// DeleteTodo removes the todo and its reminders.
func (s *Store) DeleteTodo(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("todo_id = ?", id).Delete(&reminderRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete reminders: %w", err)
		}
		result := tx.Delete(&todoRecord{}, "id = ?", id)
		if err := result.Error; err != nil {
			return fmt.Errorf("failed to delete todo: %w", err)
		}
		if result.RowsAffected == 0 {
			return service.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Debug("todo deleted", "id", id)
	s.changes.Notify()
	return nil
}

// ListReminders returns the todo's reminders in chronological order.
func (s *Store) ListReminders(ctx context.Context, todoID int64) ([]service.Reminder, error) {
	var records []reminderRecord
	err := s.db.WithContext(ctx).
		Where("todo_id = ?", todoID).
		Order("year, month, day, hour, minute, id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	reminders := make([]service.Reminder, len(records))
	for i, r := range records {
		reminders[i] = r.toService(s.loc)
	}
	return reminders, nil
}

// GetReminder returns the reminder with id or service.ErrNotFound.
func (s *Store) GetReminder(ctx context.Context, id int64) (*service.Reminder, error) {
	var r reminderRecord
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	rem := r.toService(s.loc)
	return &rem, nil
}

// UpsertReminder inserts r when its ID is 0 and updates it in place
// otherwise. The owning todo must exist.
func (s *Store) UpsertReminder(ctx context.Context, r service.Reminder) (int64, error) {
	rec := reminderFromService(r)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&todoRecord{}).Where("id = ?", r.TodoID).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to look up todo: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("todo %d: %w", r.TodoID, service.ErrNotFound)
		}
		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("failed to save reminder: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Debug("reminder saved", "id", rec.ID, "todo", rec.TodoID)
	s.changes.Notify()
	return rec.ID, nil
}

// DeleteReminder removes the reminder with id.
func (s *Store) DeleteReminder(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&reminderRecord{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	if result.RowsAffected == 0 {
		return service.ErrNotFound
	}
	s.log.Debug("reminder deleted", "id", id)
	s.changes.Notify()
	return nil
}
