// Package bootstrap は設定から監査サービスの依存関係を組み立てます。
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ogurasousui/payroll-forensics/internal/adapters/repository/postgres"
	"github.com/ogurasousui/payroll-forensics/internal/adapters/source/file"
	"github.com/ogurasousui/payroll-forensics/internal/core/audit"
	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
	"github.com/ogurasousui/payroll-forensics/internal/platform/config"
	dbpostgres "github.com/ogurasousui/payroll-forensics/internal/platform/db/postgres"
)

// App は組み立て済みの監査サービスと後始末です。
type App struct {
	Service *audit.Service
	close   func()
}

// Close は保持している接続を解放します。
func (a *App) Close() {
	if a != nil && a.close != nil {
		a.close()
	}
}

// New は source.driver に応じて Source を選び、監査サービスを生成します。
// files は source.files を種別単位で上書きします。
func New(ctx context.Context, cfg *config.Config, files map[dataset.Kind]string, logger *zap.Logger) (*App, error) {
	switch cfg.Source.Driver {
	case config.DriverPostgres:
		pool, err := dbpostgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		tx := dbpostgres.NewTransactionManager(pool)
		src, err := postgres.NewStagingSource(pool, tx, cfg.TableNames())
		if err != nil {
			pool.Close()
			return nil, err
		}
		return &App{Service: audit.NewService(src, logger, nil, nil, tx), close: pool.Close}, nil
	case config.DriverFile, "":
		paths := cfg.FilePaths()
		for k, p := range files {
			if p != "" {
				paths[k] = p
			}
		}
		return &App{Service: audit.NewService(file.New(paths), logger, nil, nil, nil)}, nil
	default:
		return nil, fmt.Errorf("bootstrap: unsupported source driver %q", cfg.Source.Driver)
	}
}
