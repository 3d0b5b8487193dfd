package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"

	"instra/internal/shared/logger"
)

// Runner wraps golang-migrate over the live gorm connection.
type Runner struct {
	migrate *migrate.Migrate
}

func NewRunner(db *gorm.DB, migrationsDir string) (*Runner, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	driver, err := mysql.WithInstance(sqlDB, &mysql.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+migrationsDir,
		"mysql",
		driver,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return &Runner{migrate: m}, nil
}

func (r *Runner) Up() error {
	if err := r.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no pending migrations")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("migrations applied")
	return nil
}

func (r *Runner) Down(steps int) error {
	if steps <= 0 {
		steps = 1
	}
	if err := r.migrate.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("nothing to roll back")
			return nil
		}
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	logger.Info("migrations rolled back", "steps", steps)
	return nil
}

func (r *Runner) Status() (version uint, dirty bool, err error) {
	version, dirty, err = r.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, nil
}

// CreateFiles writes an empty up/down migration pair with a timestamped name.
func CreateFiles(migrationsDir, name string) (string, string, error) {
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create migrations directory: %w", err)
	}

	version := time.Now().UTC().Format("20060102150405")
	upPath := filepath.Join(migrationsDir, fmt.Sprintf("%s_%s.up.sql", version, name))
	downPath := filepath.Join(migrationsDir, fmt.Sprintf("%s_%s.down.sql", version, name))

	for _, path := range []string{upPath, downPath} {
		if err := os.WriteFile(path, []byte("-- "+name+"\n"), 0o644); err != nil {
			return "", "", fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	return upPath, downPath, nil
}
