package branches

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
	"github.com/m04kA/SMC-BranchDirectory/internal/infra/cache"
	"github.com/m04kA/SMC-BranchDirectory/internal/infra/storage/memory"
	"github.com/m04kA/SMC-BranchDirectory/internal/service/branches/models"
	"github.com/m04kA/SMC-BranchDirectory/pkg/ptr"
	"github.com/m04kA/SMC-BranchDirectory/pkg/txmanager"
)

type countingRepo struct {
	*memory.BranchRepository
	listCalls   int32
	citiesCalls int32
	listErr     error
}

func (r *countingRepo) List(ctx context.Context, filter domain.BranchFilter) ([]*domain.Branch, error) {
	atomic.AddInt32(&r.listCalls, 1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.BranchRepository.List(ctx, filter)
}

func (r *countingRepo) ListCities(ctx context.Context) ([]string, error) {
	atomic.AddInt32(&r.citiesCalls, 1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.BranchRepository.ListCities(ctx)
}

type mapCache struct {
	mu         sync.Mutex
	generation int64
	items      map[string][]byte
	getErr     error
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string][]byte)}
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, 0, c.getErr
	}
	data, ok := c.items[itemID(c.generation, key)]
	if !ok {
		return nil, c.generation, cache.ErrMiss
	}
	return data, c.generation, nil
}

func (c *mapCache) Set(ctx context.Context, key string, generation int64, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[itemID(generation, key)] = data
	return nil
}

func (c *mapCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return nil
}

func itemID(generation int64, key string) string {
	return strconv.FormatInt(generation, 10) + ":" + key
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var testNow = time.Date(2025, 4, 2, 8, 30, 0, 0, time.UTC)

func seed(t *testing.T) *countingRepo {
	t.Helper()

	repo := &countingRepo{BranchRepository: memory.NewBranchRepository()}
	_, err := repo.ReplaceAll(context.Background(), []*domain.Branch{
		{ExternalID: 101, Name: "Central", Type: domain.BranchTypeDepartment, Address: domain.Address{BaseCity: "Kyiv", City: "Kyiv"}, Payload: []byte(`{"departmentId":101}`)},
		{ExternalID: 102, Name: "ATM Lviv", Type: domain.BranchTypeAtm, Address: domain.Address{BaseCity: "Lviv", City: "Lviv"}},
		{ExternalID: 103, Name: "Closed", Type: domain.BranchTypeDepartment, IsTemporaryClosed: true, Address: domain.Address{BaseCity: "Kyiv", City: "Kyiv"}},
	})
	require.NoError(t, err)
	return repo
}

func newTestService(repo BranchRepository, c Cache) *Service {
	s := NewService(repo, txmanager.NewPassthrough(), c, nopLogger{})
	s.timeProvider = fixedTime{t: testNow}
	return s
}

func TestService_List(t *testing.T) {
	repo := seed(t)
	s := newTestService(repo, newMapCache())
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.ListBranchesRequest
		want []int64
	}{
		{name: "open branches", req: models.ListBranchesRequest{}, want: []int64{101, 102}},
		{name: "include closed", req: models.ListBranchesRequest{IncludeClosed: true}, want: []int64{101, 102, 103}},
		{name: "type is case insensitive", req: models.ListBranchesRequest{Type: ptr.Ptr("atm")}, want: []int64{102}},
		{name: "by city", req: models.ListBranchesRequest{City: ptr.Ptr(" Kyiv "), IncludeClosed: true}, want: []int64{101, 103}},
		{name: "blank type ignored", req: models.ListBranchesRequest{Type: ptr.Ptr("")}, want: []int64{101, 102}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := s.List(ctx, &tt.req)
			require.NoError(t, err)

			var ids []int64
			for _, b := range resp.Branches {
				ids = append(ids, b.ExternalID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, len(tt.want), resp.Total)
		})
	}
}

func TestService_List_InvalidType(t *testing.T) {
	s := newTestService(seed(t), nil)

	_, err := s.List(context.Background(), &models.ListBranchesRequest{Type: ptr.Ptr("bank")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_List_UsesCache(t *testing.T) {
	repo := seed(t)
	s := newTestService(repo, newMapCache())
	ctx := context.Background()

	first, err := s.List(ctx, &models.ListBranchesRequest{})
	require.NoError(t, err)
	second, err := s.List(ctx, &models.ListBranchesRequest{})
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&repo.listCalls))
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, `{"departmentId":101}`, second.Branches[0].DataJSON)
}

func TestService_List_CacheErrorFallsBackToRepository(t *testing.T) {
	repo := seed(t)
	c := newMapCache()
	c.getErr = errors.New("redis down")
	s := newTestService(repo, c)

	resp, err := s.List(context.Background(), &models.ListBranchesRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
}

func TestService_List_RepositoryError(t *testing.T) {
	repo := seed(t)
	repo.listErr = errors.New("connection refused")
	s := newTestService(repo, nil)

	_, err := s.List(context.Background(), &models.ListBranchesRequest{})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestService_SharedLoadIgnoresCallerCancellation(t *testing.T) {
	repo := seed(t)
	c := newMapCache()
	s := newTestService(repo, c)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := s.List(ctx, &models.ListBranchesRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)

	cities, err := s.ListCities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kyiv", "Lviv"}, cities.Cities)

	// Результат сохранен в кеш и доступен следующим запросам
	_, err = s.List(context.Background(), &models.ListBranchesRequest{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&repo.listCalls))
}

func TestService_GetByID(t *testing.T) {
	s := newTestService(seed(t), nil)
	ctx := context.Background()

	resp, err := s.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Central", resp.Name)
	assert.Equal(t, "Department", resp.Type)

	_, err = s.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrBranchNotFound)
}

func TestService_UpdateStatus(t *testing.T) {
	repo := seed(t)
	c := newMapCache()
	s := newTestService(repo, c)
	ctx := context.Background()

	before, err := s.List(ctx, &models.ListBranchesRequest{})
	require.NoError(t, err)
	require.Equal(t, 2, before.Total)

	require.NoError(t, s.UpdateStatus(ctx, 1, &models.UpdateStatusRequest{IsTemporaryClosed: ptr.Ptr(true)}))
	assert.Equal(t, int64(1), c.generation)

	after, err := s.List(ctx, &models.ListBranchesRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, after.Total)

	branch, err := s.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, branch.IsTemporaryClosed)
	assert.Equal(t, testNow, branch.LastUpdated)
}

func TestService_UpdateStatus_Errors(t *testing.T) {
	s := newTestService(seed(t), nil)
	ctx := context.Background()

	err := s.UpdateStatus(ctx, 1, &models.UpdateStatusRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = s.UpdateStatus(ctx, 999, &models.UpdateStatusRequest{IsTemporaryClosed: ptr.Ptr(false)})
	assert.ErrorIs(t, err, ErrBranchNotFound)
}

func TestService_ListCities(t *testing.T) {
	repo := seed(t)
	s := newTestService(repo, newMapCache())
	ctx := context.Background()

	resp, err := s.ListCities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kyiv", "Lviv"}, resp.Cities)

	_, err = s.ListCities(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&repo.citiesCalls))
}
