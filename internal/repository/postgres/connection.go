package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/dom/whats-cookin/internal/domain"
	"github.com/dom/whats-cookin/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

const sqliteScheme = "sqlite://"

// NewConnection opens the database named by databaseURL and migrates the schema.
// URLs starting with sqlite:// open a SQLite file, anything else is handed to the PostgreSQL driver.
func NewConnection(databaseURL string, debug bool, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if path, ok := strings.CutPrefix(databaseURL, sqliteScheme); ok {
		dialector = sqlite.Open(path)
	} else {
		dialector = postgres.Open(databaseURL)
	}

	db, err := Open(dialector, debug, log)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Open wraps gorm.Open with the settings every connection shares. Driver errors such as unique
// violations are translated into gorm's portable errors. SQL logging goes through log.
func Open(dialector gorm.Dialector, debug bool, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log, debug),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// gormWriter feeds gorm's formatted log lines into zap.
type gormWriter struct {
	logger *zap.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func newGormLogger(log *zap.Logger, debug bool) logger.Interface {
	if log == nil {
		log = zap.NewNop()
	}

	level := logger.Warn
	if debug {
		level = logger.Info
	}

	return logger.New(
		gormWriter{logger: log.Named("gorm")},
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Recipe{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:   NewUserRepository(db),
		Recipe: NewRecipeRepository(db),
	}
}
