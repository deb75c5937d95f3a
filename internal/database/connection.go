package database

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/titlemirror/titlemirror/internal/models"
)

const (
	defaultDBName = "titlemirror.db"
	defaultDBDir  = ".config/titlemirror"

	// The detached monitor writes while the errors commands read
	connParams = "?_busy_timeout=5000&_journal_mode=WAL"
)

// DB is the diagnostic error log store
type DB struct {
	*gorm.DB
	path string
}

// ResolvePath returns dbPath, or ~/.config/titlemirror/titlemirror.db when it is empty,
// creating the parent directory either way
func ResolvePath(dbPath string) (string, error) {
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "failed to get home directory")
		}
		dbPath = filepath.Join(homeDir, defaultDBDir, defaultDBName)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return "", errors.Wrap(err, "failed to create database directory")
	}
	return dbPath, nil
}

// Connect opens the SQLite error log at dbPath (see ResolvePath)
func Connect(dbPath string) (*DB, error) {
	path, err := ResolvePath(dbPath)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(path+connParams), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", path)
	}

	return &DB{DB: db, path: path}, nil
}

// Path returns the resolved database file path
func (db *DB) Path() string {
	return db.path
}

// Initialize creates or migrates the error log table
func (db *DB) Initialize() error {
	if err := db.AutoMigrate(&models.ErrorLog{}); err != nil {
		return errors.Wrap(err, "failed to initialize database schema")
	}
	return nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}
