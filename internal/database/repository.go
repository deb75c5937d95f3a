package database

import (
	"strings"
	"time"

	"github.com/titlemirror/titlemirror/internal/models"

	"github.com/pkg/errors"
)

// maxErrorLength bounds stored messages in bytes; tool stderr can be long
const maxErrorLength = 2048

// Repository handles all database operations for the diagnostic error log
type Repository struct {
	db  *DB
	now func() time.Time
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// RecordError stores one diagnostic. It implements monitor.ErrorRecorder.
func (r *Repository) RecordError(source, className string, err error) error {
	msg := err.Error()
	if len(msg) > maxErrorLength {
		// drop a multi-byte sequence split by the cut
		msg = strings.ToValidUTF8(msg[:maxErrorLength], "")
	}

	return r.CreateErrorLog(&models.ErrorLog{
		Timestamp: r.now(),
		Source:    source,
		ClassName: className,
		ErrorMsg:  msg,
	})
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// RecentErrors returns up to limit error logs, newest first
func (r *Repository) RecentErrors(limit int) ([]*models.ErrorLog, error) {
	var logs []*models.ErrorLog
	query := r.db.Order("timestamp DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if result := query.Find(&logs); result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}

// CountErrors returns the number of stored error logs
func (r *Repository) CountErrors() (int64, error) {
	var count int64
	if result := r.db.Model(&models.ErrorLog{}).Count(&count); result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to count error logs")
	}
	return count, nil
}

// DeleteErrorsBefore permanently deletes error logs older than before
func (r *Repository) DeleteErrorsBefore(before time.Time) (int64, error) {
	result := r.db.Unscoped().Where("timestamp < ?", before).Delete(&models.ErrorLog{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old error logs")
	}
	return result.RowsAffected, nil
}

// ClearErrors removes all error logs from the database
func (r *Repository) ClearErrors() (int64, error) {
	result := r.db.Exec("DELETE FROM error_logs")
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to clear error logs")
	}
	return result.RowsAffected, nil
}
