package scheduler

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

var (
	ErrEmptyJobName  = errors.New("scheduler: job name is required")
	ErrEmptyCronExpr = errors.New("scheduler: cron expression is required")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Service обертка над gocron для периодических задач
type Service struct {
	scheduler gocron.Scheduler
	log       Logger

	stopOnce sync.Once
	stopErr  error
}

// New создает планировщик; паника в задаче логируется и не роняет процесс
func New(log Logger) (*Service, error) {
	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					log.Error("Scheduler job panicked: job_id=%s, job_name=%s, panic=%v", jobID, jobName, recoverData)
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}

	return &Service{scheduler: sched, log: log}, nil
}

// Start запускает выполнение задач
func (s *Service) Start() {
	s.log.Info("Scheduler starting")
	s.scheduler.Start()
}

// Stop останавливает планировщик и ждет завершения текущих задач
func (s *Service) Stop() error {
	s.stopOnce.Do(func() {
		s.log.Info("Scheduler stopping")
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

// AddJob регистрирует задачу по cron выражению (5 полей)
// Если предыдущий запуск еще идет, очередной пропускается
func (s *Service) AddJob(name, cronExpr string, task func()) (gocron.Job, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyJobName
	}
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}

	job, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.log.Error("Failed to register scheduler job %s (%s): %v", name, cronExpr, err)
		return nil, err
	}

	s.log.Info("Scheduler job registered: %s (%s)", name, cronExpr)
	return job, nil
}
