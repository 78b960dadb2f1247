package feedimport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
	importUC "github.com/m04kA/SMC-BranchDirectory/internal/usecase/import_branches"
)

type fakeClient struct {
	payload []byte
	err     error
}

func (c *fakeClient) FetchDepartments(ctx context.Context) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected deadline")
	}
	return c.payload, c.err
}

type fakeUseCase struct {
	calls   int
	got     *importUC.Request
	err     error
	errResp *importUC.Response
}

func (u *fakeUseCase) Execute(ctx context.Context, req *importUC.Request) (*importUC.Response, error) {
	u.calls++
	u.got = req
	if u.err != nil {
		return u.errResp, u.err
	}
	return &importUC.Response{
		ImportReport: domain.ImportReport{RunID: "run-1", Total: 3, Accepted: 2, Rejected: 1},
		Stored:       2,
	}, nil
}

type recordingLogger struct {
	errors int
	warns  int
}

func (l *recordingLogger) Info(string, ...interface{})  {}
func (l *recordingLogger) Warn(string, ...interface{})  { l.warns++ }
func (l *recordingLogger) Error(string, ...interface{}) { l.errors++ }

func TestJob_Run(t *testing.T) {
	uc := &fakeUseCase{}
	job := NewJob(&fakeClient{payload: []byte(`{"list": []}`)}, uc, time.Second, &recordingLogger{})

	resp, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Stored)
	assert.Equal(t, domain.ImportSourceFeed, uc.got.Source)
	assert.Equal(t, `{"list": []}`, string(uc.got.Payload))
}

func TestJob_RunFetchFailureSkipsImport(t *testing.T) {
	fetchErr := errors.New("feed unavailable")
	uc := &fakeUseCase{}
	job := NewJob(&fakeClient{err: fetchErr}, uc, time.Second, &recordingLogger{})

	_, err := job.Run(context.Background())

	assert.ErrorIs(t, err, fetchErr)
	assert.Equal(t, 0, uc.calls)
}

func TestJob_Task(t *testing.T) {
	log := &recordingLogger{}
	job := NewJob(&fakeClient{payload: []byte(`{}`)}, &fakeUseCase{}, time.Second, log)

	job.Task(context.Background())()
	assert.Equal(t, 0, log.errors)
	assert.Equal(t, 1, log.warns)

	failing := NewJob(&fakeClient{payload: []byte(`{}`)}, &fakeUseCase{err: importUC.ErrEmptyImportResult}, time.Second, log)
	failing.Task(context.Background())()
	assert.Equal(t, 1, log.errors)
}

func TestJob_TaskLogsRejectedRecordsOfEmptyImport(t *testing.T) {
	log := &recordingLogger{}
	uc := &fakeUseCase{
		err: importUC.ErrEmptyImportResult,
		errResp: &importUC.Response{ImportReport: domain.ImportReport{
			RunID:    "run-2",
			Total:    2,
			Rejected: 2,
			Failures: []domain.RecordFailure{
				{Index: 0, DepartmentID: 1, Kind: domain.FailureMalformedTime, Message: "malformed time"},
				{Index: 1, DepartmentID: 2, Kind: domain.FailureUnknownDayName, Message: "unknown day"},
			},
		}},
	}
	job := NewJob(&fakeClient{payload: []byte(`{}`)}, uc, time.Second, log)

	resp, err := job.Run(context.Background())
	assert.ErrorIs(t, err, importUC.ErrEmptyImportResult)
	require.NotNil(t, resp)
	assert.Len(t, resp.Failures, 2)

	job.Task(context.Background())()
	assert.Equal(t, 1, log.errors)
	assert.Equal(t, 2, log.warns)
}
