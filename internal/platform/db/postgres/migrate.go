package postgres

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// MigrationActions は Migrate が受け付ける操作です。
var MigrationActions = []string{"up", "down", "drop", "version"}

// Migrate はステージングスキーマのマイグレーションを実行します。
func Migrate(action, dir, dsn string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !validAction(action) {
		return fmt.Errorf("postgres: unsupported migration action %q", action)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("postgres: resolve path for %s: %w", dir, err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(absDir), dsn)
	if err != nil {
		return fmt.Errorf("postgres: create migrate instance: %w", err)
	}
	defer m.Close()

	switch action {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "drop":
		err = m.Drop()
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			logger.Info("no migration applied")
			return nil
		}
		if verr != nil {
			return fmt.Errorf("postgres: migration version: %w", verr)
		}
		logger.Info("migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: migration %s: %w", action, err)
	}
	logger.Info("migration completed", zap.String("action", action))
	return nil
}

func validAction(action string) bool {
	for _, a := range MigrationActions {
		if a == action {
			return true
		}
	}
	return false
}
