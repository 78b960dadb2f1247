package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
	"github.com/m04kA/SMC-BranchDirectory/pkg/ptr"
)

func newBranch(externalID int64, city string, branchType domain.BranchType, closed bool) *domain.Branch {
	return &domain.Branch{
		ExternalID:        externalID,
		Name:              "Branch",
		Type:              branchType,
		IsTemporaryClosed: closed,
		Address:           domain.Address{BaseCity: city, City: city},
		ExtraServices:     []string{"Exchange"},
	}
}

func TestBranchRepository_ReplaceAllAssignsIDs(t *testing.T) {
	repo := NewBranchRepository()
	ctx := context.Background()

	input := []*domain.Branch{
		newBranch(10, "Kyiv", domain.BranchTypeDepartment, false),
		newBranch(20, "Lviv", domain.BranchTypeAtm, false),
	}

	stored, err := repo.ReplaceAll(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	assert.Equal(t, int64(1), input[0].ID)
	assert.Equal(t, int64(2), input[1].ID)

	stored, err = repo.ReplaceAll(ctx, []*domain.Branch{newBranch(30, "Odesa", domain.BranchTypeTerminal, false)})
	require.NoError(t, err)
	assert.Equal(t, 1, stored)

	all, err := repo.List(ctx, domain.BranchFilter{IncludeClosed: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(30), all[0].ExternalID)
	assert.Equal(t, int64(3), all[0].ID)
}

func TestBranchRepository_ListFilters(t *testing.T) {
	repo := NewBranchRepository()
	ctx := context.Background()

	_, err := repo.ReplaceAll(ctx, []*domain.Branch{
		newBranch(1, "Kyiv", domain.BranchTypeDepartment, false),
		newBranch(2, "Kyiv", domain.BranchTypeAtm, false),
		newBranch(3, "Lviv", domain.BranchTypeDepartment, true),
	})
	require.NoError(t, err)

	atm := domain.BranchTypeAtm
	department := domain.BranchTypeDepartment

	tests := []struct {
		name   string
		filter domain.BranchFilter
		want   []int64
	}{
		{name: "all", filter: domain.BranchFilter{IncludeClosed: true}, want: []int64{1, 2, 3}},
		{name: "open only", filter: domain.BranchFilter{}, want: []int64{1, 2}},
		{name: "by type", filter: domain.BranchFilter{Type: &atm, IncludeClosed: true}, want: []int64{2}},
		{name: "by city", filter: domain.BranchFilter{BaseCity: ptr.Ptr("Lviv"), IncludeClosed: true}, want: []int64{3}},
		{name: "closed excluded", filter: domain.BranchFilter{Type: &department, BaseCity: ptr.Ptr("Lviv")}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)

			var ids []int64
			for _, b := range got {
				ids = append(ids, b.ExternalID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestBranchRepository_ReturnsCopies(t *testing.T) {
	repo := NewBranchRepository()
	ctx := context.Background()

	input := newBranch(1, "Kyiv", domain.BranchTypeDepartment, false)
	_, err := repo.ReplaceAll(ctx, []*domain.Branch{input})
	require.NoError(t, err)

	input.Name = "changed after import"

	got, err := repo.GetByID(ctx, input.ID)
	require.NoError(t, err)
	assert.Equal(t, "Branch", got.Name)

	got.ExtraServices[0] = "mutated"
	again, err := repo.GetByID(ctx, input.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Exchange"}, again.ExtraServices)
}

func TestBranchRepository_GetByIDNotFound(t *testing.T) {
	repo := NewBranchRepository()

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrBranchNotFound)
}

func TestBranchRepository_PatchTemporaryClosed(t *testing.T) {
	repo := NewBranchRepository()
	ctx := context.Background()

	b := newBranch(1, "Kyiv", domain.BranchTypeDepartment, false)
	_, err := repo.ReplaceAll(ctx, []*domain.Branch{b})
	require.NoError(t, err)

	before, err := repo.List(ctx, domain.BranchFilter{})
	require.NoError(t, err)

	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.PatchTemporaryClosed(ctx, b.ID, true, now))

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.IsTemporaryClosed)
	assert.Equal(t, now, got.LastUpdated)

	assert.False(t, before[0].IsTemporaryClosed)

	open, err := repo.List(ctx, domain.BranchFilter{})
	require.NoError(t, err)
	assert.Empty(t, open)

	err = repo.PatchTemporaryClosed(ctx, 999, true, now)
	assert.ErrorIs(t, err, ErrBranchNotFound)
}

func TestBranchRepository_ListCities(t *testing.T) {
	repo := NewBranchRepository()
	ctx := context.Background()

	_, err := repo.ReplaceAll(ctx, []*domain.Branch{
		newBranch(1, "Lviv", domain.BranchTypeDepartment, false),
		newBranch(2, "Kyiv", domain.BranchTypeAtm, false),
		newBranch(3, "Lviv", domain.BranchTypeAtm, true),
		newBranch(4, "", domain.BranchTypeAtm, false),
	})
	require.NoError(t, err)

	cities, err := repo.ListCities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kyiv", "Lviv"}, cities)
}

func TestBranchRepository_ReadersNeverSeePartialSet(t *testing.T) {
	repo := NewBranchRepository()
	ctx := context.Background()

	makeSet := func(n int) []*domain.Branch {
		set := make([]*domain.Branch, n)
		for i := range set {
			set[i] = newBranch(int64(i), "Kyiv", domain.BranchTypeDepartment, false)
		}
		return set
	}

	_, err := repo.ReplaceAll(ctx, makeSet(3))
	require.NoError(t, err)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				got, err := repo.List(ctx, domain.BranchFilter{IncludeClosed: true})
				assert.NoError(t, err)
				assert.Contains(t, []int{3, 7}, len(got))
			}
		}()
	}

	for i := 0; i < 50; i++ {
		size := 3
		if i%2 == 0 {
			size = 7
		}
		_, err := repo.ReplaceAll(ctx, makeSet(size))
		require.NoError(t, err)
	}

	close(stop)
	wg.Wait()
}
