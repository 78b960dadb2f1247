package feedimport

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
	importUC "github.com/m04kA/SMC-BranchDirectory/internal/usecase/import_branches"
)

// JobName имя задачи в планировщике
const JobName = "branches-feed-import"

// FeedClient источник фида
type FeedClient interface {
	FetchDepartments(ctx context.Context) ([]byte, error)
}

// ImportUseCase сценарий импорта
type ImportUseCase interface {
	Execute(ctx context.Context, req *importUC.Request) (*importUC.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Job периодически скачивает фид и импортирует его
type Job struct {
	client  FeedClient
	useCase ImportUseCase
	timeout time.Duration
	logger  Logger
}

// NewJob создает задачу импорта фида
// timeout ограничивает один прогон целиком: скачивание и запись
func NewJob(client FeedClient, useCase ImportUseCase, timeout time.Duration, logger Logger) *Job {
	return &Job{
		client:  client,
		useCase: useCase,
		timeout: timeout,
		logger:  logger,
	}
}

// Run выполняет один прогон
func (j *Job) Run(ctx context.Context) (*importUC.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	payload, err := j.client.FetchDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	resp, err := j.useCase.Execute(ctx, &importUC.Request{
		Payload: payload,
		Source:  domain.ImportSourceFeed,
	})
	if err != nil {
		// resp может содержать отчет с причинами отказа
		return resp, fmt.Errorf("import feed: %w", err)
	}

	return resp, nil
}

// Task функция для планировщика; ошибки только логируются, набор в хранилище остается прежним
func (j *Job) Task(ctx context.Context) func() {
	return func() {
		resp, err := j.Run(ctx)
		if err != nil {
			j.logger.Error("Feed import failed: %v", err)
			if resp != nil {
				for _, f := range resp.Failures {
					j.logger.Warn("Feed import run_id=%s record #%d (departmentId=%d) rejected: %s",
						resp.RunID, f.Index, f.DepartmentID, f.Message)
				}
			}
			return
		}

		if resp.Rejected > 0 {
			j.logger.Warn("Feed import run_id=%s rejected %d of %d records", resp.RunID, resp.Rejected, resp.Total)
		}
		j.logger.Info("Feed import run_id=%s finished: stored=%d", resp.RunID, resp.Stored)
	}
}
