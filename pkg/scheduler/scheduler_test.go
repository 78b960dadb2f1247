package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestService_AddJob(t *testing.T) {
	s, err := New(nopLogger{})
	require.NoError(t, err)
	s.Start()
	defer func() { _ = s.Stop() }()

	job, err := s.AddJob("feed-import", "*/15 * * * *", func() {})
	require.NoError(t, err)
	assert.Equal(t, "feed-import", job.Name())
}

func TestService_AddJobValidation(t *testing.T) {
	s, err := New(nopLogger{})
	require.NoError(t, err)
	s.Start()
	defer func() { _ = s.Stop() }()

	_, err = s.AddJob(" ", "* * * * *", func() {})
	assert.ErrorIs(t, err, ErrEmptyJobName)

	_, err = s.AddJob("feed-import", "", func() {})
	assert.ErrorIs(t, err, ErrEmptyCronExpr)

	_, err = s.AddJob("feed-import", "not a cron", func() {})
	assert.Error(t, err)
}

func TestService_StopIsIdempotent(t *testing.T) {
	s, err := New(nopLogger{})
	require.NoError(t, err)

	s.Start()
	assert.NoError(t, s.Stop())
	assert.NoError(t, s.Stop())
}
