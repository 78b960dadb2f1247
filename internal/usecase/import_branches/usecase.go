package import_branches

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
)

// Результаты прогона для метрик
const (
	resultSuccess        = "success"
	resultInvalidPayload = "invalid_payload"
	resultEmpty          = "empty"
	resultStorageFailure = "storage_failure"
)

// UUIDGenerator генерирует RunID на основе UUID v4
type UUIDGenerator struct{}

// NewID возвращает новый UUID
func (UUIDGenerator) NewID() string {
	return uuid.New().String()
}

type nopMetrics struct{}

func (nopMetrics) RecordImport(string, string, int, int, time.Duration) {}

// UseCase use case импорта справочника отделений
type UseCase struct {
	normalizer   *Normalizer
	branchRepo   BranchRepository
	txManager    TransactionManager
	cache        BranchCache
	metrics      MetricsRecorder
	timeProvider TimeProvider
	idGenerator  IDGenerator
	logger       Logger

	// Импорты выполняются строго по одному
	mu sync.Mutex
}

// NewUseCase создает новый экземпляр use case
// cache и metrics могут быть nil
func NewUseCase(
	normalizer *Normalizer,
	branchRepo BranchRepository,
	txManager TransactionManager,
	cache BranchCache,
	metrics MetricsRecorder,
	logger Logger,
) *UseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &UseCase{
		normalizer:   normalizer,
		branchRepo:   branchRepo,
		txManager:    txManager,
		cache:        cache,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		idGenerator:  UUIDGenerator{},
		logger:       logger,
	}
}

// Execute выполняет полный импорт: нормализация и атомарная замена набора отделений
// Конкурирующие вызовы встают в очередь.
// При ErrEmptyImportResult вместе с ошибкой возвращается отчет с причинами отказа по записям
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	source := req.Source
	if source == "" {
		source = domain.ImportSourceUpload
	}

	startedAt := uc.timeProvider.Now()
	runID := uc.idGenerator.NewID()

	uc.logger.Info("ImportBranches: run=%s source=%s payload=%d bytes", runID, source, len(req.Payload))

	// 1. Нормализация фида
	branches, report, err := uc.normalizer.Normalize(req.Payload)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyImportResult):
			uc.logger.Warn("ImportBranches: run=%s no valid records (total=%d, rejected=%d)",
				runID, report.Total, report.Rejected)
			uc.logFailures(runID, report.Failures)
			uc.metrics.RecordImport(source, resultEmpty, 0, report.Rejected, uc.since(startedAt))

			report.RunID = runID
			report.Source = source
			report.StartedAt = startedAt
			report.FinishedAt = uc.timeProvider.Now()
			return &Response{ImportReport: report}, fmt.Errorf("%w: %d of %d records rejected", ErrEmptyImportResult, report.Rejected, report.Total)
		default:
			uc.logger.Warn("ImportBranches: run=%s invalid payload: %v", runID, err)
			uc.metrics.RecordImport(source, resultInvalidPayload, 0, 0, uc.since(startedAt))
			return nil, err
		}
	}

	uc.logFailures(runID, report.Failures)

	// 2. Отметка времени обновления
	now := uc.timeProvider.Now()
	for _, b := range branches {
		b.LastUpdated = now
	}

	// 3. Атомарная замена набора
	var stored int
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		n, err := uc.branchRepo.ReplaceAll(txCtx, branches)
		if err != nil {
			return err
		}
		stored = n
		return nil
	})
	if err != nil {
		uc.logger.Error("ImportBranches: run=%s failed to replace branches: %v", runID, err)
		uc.metrics.RecordImport(source, resultStorageFailure, 0, report.Rejected, uc.since(startedAt))
		return nil, fmt.Errorf("%w: %v", ErrStorageWriteFailure, err)
	}

	// 4. Сброс кеша чтения
	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			uc.logger.Warn("ImportBranches: run=%s failed to invalidate cache: %v", runID, err)
		}
	}

	finishedAt := uc.timeProvider.Now()
	uc.metrics.RecordImport(source, resultSuccess, report.Accepted, report.Rejected, finishedAt.Sub(startedAt))

	uc.logger.Info("ImportBranches: run=%s done: total=%d accepted=%d rejected=%d stored=%d diagnostics=%d",
		runID, report.Total, report.Accepted, report.Rejected, stored, len(report.Diagnostics))

	report.RunID = runID
	report.Source = source
	report.StartedAt = startedAt
	report.FinishedAt = finishedAt

	return &Response{ImportReport: report, Stored: stored}, nil
}

func (uc *UseCase) logFailures(runID string, failures []domain.RecordFailure) {
	for _, f := range failures {
		uc.logger.Warn("ImportBranches: run=%s record #%d (departmentId=%d) rejected: %s",
			runID, f.Index, f.DepartmentID, f.Message)
	}
}

func (uc *UseCase) since(t time.Time) time.Duration {
	return uc.timeProvider.Now().Sub(t)
}
