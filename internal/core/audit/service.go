package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
	"github.com/ogurasousui/payroll-forensics/internal/core/mapping"
)

// Source は種別ごとに生テーブルを提供します。
// 供給されないテーブルには ErrTableNotSupplied を返します。
type Source interface {
	Load(ctx context.Context, kind dataset.Kind) (*mapping.RawTable, error)
}

// MemorySource はメモリ上の生テーブルをそのまま提供する Source です。
type MemorySource map[dataset.Kind]*mapping.RawTable

// Load は登録済みのテーブルを返します。
func (m MemorySource) Load(_ context.Context, kind dataset.Kind) (*mapping.RawTable, error) {
	raw, ok := m[kind]
	if !ok || raw == nil {
		return nil, ErrTableNotSupplied
	}
	return raw, nil
}

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// IDGenerator は監査実行の識別子を採番します。
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}

// TransactionManager は読み込み全体を 1 つの読み取り専用トランザクションにまとめます。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// RunInput は監査実行の入力です。Mappings は種別ごとの手動対応付けです。
type RunInput struct {
	Params   Params
	Mappings map[dataset.Kind]map[string]string
}

// UseCase は監査ユースケースの公開インターフェースです。
type UseCase interface {
	Run(ctx context.Context, in RunInput) (*Result, error)
}

// Service は Source からテーブルを読み込みルールを評価します。
type Service struct {
	source Source
	logger *zap.Logger
	clock  Clock
	ids    IDGenerator
	tx     TransactionManager
}

var _ UseCase = (*Service)(nil)

// NewService は Service を生成します。
func NewService(source Source, logger *zap.Logger, clock Clock, ids IDGenerator, tx TransactionManager) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = realClock{}
	}
	if ids == nil {
		ids = uuidGenerator{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{source: source, logger: logger, clock: clock, ids: ids, tx: tx}
}

// Run はテーブルを読み込み、対応付けと評価を行います。
func (s *Service) Run(ctx context.Context, in RunInput) (*Result, error) {
	if s.source == nil {
		return nil, ErrSourceNotAvailable
	}
	runID := s.ids.NewID()
	logger := s.logger.With(zap.String("run_id", runID))

	var raws map[dataset.Kind]*mapping.RawTable
	err := s.tx.WithinReadOnly(ctx, func(ctx context.Context) error {
		var loadErr error
		raws, loadErr = s.loadAll(ctx, logger)
		return loadErr
	})
	if err != nil {
		return nil, err
	}

	tables, warnings, err := mapping.BuildTables(raws, in.Mappings)
	if err != nil {
		return nil, fmt.Errorf("audit: mapping: %w", err)
	}
	for _, w := range warnings {
		logger.Warn("column mapping", zap.String("kind", string(w.Kind)), zap.String("field", w.Field), zap.String("message", w.Message))
	}

	res, err := Evaluate(tables, in.Params)
	if err != nil {
		return nil, err
	}
	res.RunID = runID
	res.GeneratedAt = s.clock.Now()
	res.Warnings = warnings

	for _, st := range res.Statuses {
		if st.Ran {
			logger.Info("rule evaluated", zap.String("rule", string(st.Rule)), zap.Int("findings", st.Findings))
		} else {
			logger.Info("rule skipped", zap.String("rule", string(st.Rule)), zap.String("reason", st.Note))
		}
	}
	return res, nil
}

func (s *Service) loadAll(ctx context.Context, logger *zap.Logger) (map[dataset.Kind]*mapping.RawTable, error) {
	raws := make(map[dataset.Kind]*mapping.RawTable, len(dataset.Kinds()))
	for _, kind := range dataset.Kinds() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := s.source.Load(ctx, kind)
		switch {
		case errors.Is(err, ErrTableNotSupplied):
			logger.Debug("table not supplied", zap.String("kind", string(kind)))
			continue
		case err != nil:
			return nil, fmt.Errorf("audit: load %s: %w", kind, err)
		}
		logger.Debug("table loaded",
			zap.String("kind", string(kind)),
			zap.String("name", raw.Name),
			zap.Int("rows", len(raw.Rows)),
		)
		raws[kind] = raw
	}
	return raws, nil
}
