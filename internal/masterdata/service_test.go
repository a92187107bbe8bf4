package masterdata

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
)

type memoryRepo struct {
	mu        sync.Mutex
	calls     []string
	rows      []Row
	lastBatch []Row
	lastIDs   []string
	failIDs   map[string]bool
	listCalls int
	bulkErr   error
	bulkMsg   string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{failIDs: map[string]bool{}}
}

func (m *memoryRepo) note(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *memoryRepo) List(ctx context.Context, res Resource, query url.Values) ([]Row, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	return m.rows, nil
}

func (m *memoryRepo) Get(ctx context.Context, res Resource, id string) (Row, error) {
	m.note("get " + id)
	return Row{"id": id}, nil
}

func (m *memoryRepo) Create(ctx context.Context, res Resource, row Row) (Row, string, error) {
	m.note("create")
	return row, "", nil
}

func (m *memoryRepo) Update(ctx context.Context, res Resource, id string, row Row) (string, error) {
	m.note("update " + id)
	if m.failIDs[id] {
		return "", errors.New("boom")
	}
	return "", nil
}

func (m *memoryRepo) Delete(ctx context.Context, res Resource, id string) (string, error) {
	m.note("delete " + id)
	if m.failIDs[id] {
		return "", httpx.Invalid("in use")
	}
	return "", nil
}

func (m *memoryRepo) CreateMany(ctx context.Context, res Resource, rows []Row) (string, error) {
	m.note("createMany")
	m.lastBatch = rows
	return m.bulkMsg, m.bulkErr
}

func (m *memoryRepo) UpdateMany(ctx context.Context, res Resource, rows []Row) (string, error) {
	m.note("updateMany")
	m.lastBatch = rows
	return m.bulkMsg, m.bulkErr
}

func (m *memoryRepo) DeleteMany(ctx context.Context, res Resource, ids []string) (string, error) {
	m.note("deleteMany")
	m.lastIDs = ids
	return m.bulkMsg, m.bulkErr
}

func lookup(t *testing.T, name string) Resource {
	t.Helper()
	res, ok := MasterDataCatalog().Lookup(name)
	if !ok {
		res, ok = HRCatalog().Lookup(name)
	}
	require.True(t, ok, name)
	return res
}

func TestCreateManyAllEmptyMakesNoCall(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.CreateMany(context.Background(), lookup(t, "banks"), []Row{
		{"name": "   ", RowKeyField: "k1"},
		{"name": ""},
		{},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.calls)
}

func TestCreateManyTrimsAndDropsIncompleteRows(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)

	out, err := svc.CreateMany(context.Background(), lookup(t, "branches"), []Row{
		{"code": " HQ ", "name": " Head office ", RowKeyField: "k1"},
		{"code": "BR2", "name": ""},
		{"code": "BR3", "name": "Branch 3"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"createMany"}, repo.calls)
	require.Equal(t, []Row{
		{"code": "HQ", "name": "Head office"},
		{"code": "BR3", "name": "Branch 3"},
	}, repo.lastBatch)
	require.Equal(t, BulkResult{Requested: 2, Succeeded: 2, Dropped: 1}, out.Result)
	require.Equal(t, "Created 2 branches", out.Message)
}

func TestCreateManyKeepsBackendMessage(t *testing.T) {
	repo := newMemoryRepo()
	repo.bulkMsg = "Banks saved"
	svc := NewService(repo, nil, nil, nil)

	out, err := svc.CreateMany(context.Background(), lookup(t, "banks"), []Row{{"name": "BCA"}})
	require.NoError(t, err)
	require.Equal(t, "Banks saved", out.Message)
}

func TestUpdateManyRequiresID(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.UpdateMany(context.Background(), lookup(t, "banks"), []Row{{"name": "BCA"}})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.calls)

	_, err = svc.UpdateMany(context.Background(), lookup(t, "banks"), []Row{{"id": "b1", "name": "BCA"}, {"id": "b2", "name": " "}})
	require.NoError(t, err)
	require.Equal(t, []string{"updateMany"}, repo.calls)
	require.Len(t, repo.lastBatch, 1)
}

func TestDeleteManyBulkIsOneCall(t *testing.T) {
	for _, name := range []string{"banks", "cities", "branches"} {
		repo := newMemoryRepo()
		svc := NewService(repo, nil, nil, nil)

		out, err := svc.DeleteMany(context.Background(), lookup(t, name), []string{"1", "2", "3"})
		require.NoError(t, err)
		require.Equal(t, []string{"deleteMany"}, repo.calls)
		require.Equal(t, []string{"1", "2", "3"}, repo.lastIDs)
		require.Equal(t, 3, out.Result.Succeeded)
	}
}

func TestDeleteManyRejectsEmpty(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)
	_, err := svc.DeleteMany(context.Background(), lookup(t, "banks"), []string{" ", ""})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.calls)
}

func TestDeleteManyCompanyGroupsSequentialFallback(t *testing.T) {
	repo := newMemoryRepo()
	repo.failIDs["g2"] = true
	svc := NewService(repo, nil, nil, nil)

	out, err := svc.DeleteMany(context.Background(), lookup(t, "company-groups"), []string{"g1", "g2", "g3"})
	require.NoError(t, err)
	require.Equal(t, []string{"delete g1", "delete g2", "delete g3"}, repo.calls)
	require.Equal(t, BulkResult{Requested: 3, Succeeded: 2, Failed: 1, FailedIDs: []string{"g2"}}, out.Result)
	require.Equal(t, "Deleted 2 of 3 company groups", out.Message)
}

func TestUpdateManyFallbackAllFail(t *testing.T) {
	repo := newMemoryRepo()
	repo.failIDs["g1"] = true
	svc := NewService(repo, nil, nil, nil)

	out, err := svc.UpdateMany(context.Background(), lookup(t, "company-groups"), []Row{{"id": "g1", "name": "North"}})
	require.Error(t, err)
	require.Equal(t, 1, out.Result.Failed)
	require.Equal(t, []string{"update g1"}, repo.calls)
}

func TestParallelFallbackCountsEveryItem(t *testing.T) {
	repo := newMemoryRepo()
	repo.failIDs["a3"] = true
	svc := NewService(repo, nil, nil, nil)

	ids := []string{"a1", "a2", "a3", "a4", "a5", "a6"}
	out, err := svc.DeleteMany(context.Background(), lookup(t, "attendance"), ids)
	require.NoError(t, err)
	require.Len(t, repo.calls, len(ids))
	require.Equal(t, 5, out.Result.Succeeded)
	require.Equal(t, []string{"a3"}, out.Result.FailedIDs)
}

func TestListCacheInvalidatedOnMutation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := newMemoryRepo()
	repo.rows = []Row{{"id": "1", "name": "BCA"}}
	svc := NewService(repo, NewListCache(client, time.Minute, nil), nil, nil)
	ctx := shared.ContextWithCompany(context.Background(), "c-1")
	banks := lookup(t, "banks")

	rows, err := svc.List(ctx, banks, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	_, err = svc.List(ctx, banks, nil)
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls)

	otherCompany := shared.ContextWithCompany(context.Background(), "c-2")
	_, err = svc.List(otherCompany, banks, nil)
	require.NoError(t, err)
	require.Equal(t, 2, repo.listCalls)

	_, err = svc.DeleteMany(ctx, banks, []string{"1"})
	require.NoError(t, err)
	_, err = svc.List(ctx, banks, nil)
	require.NoError(t, err)
	require.Equal(t, 3, repo.listCalls)
}

func TestListCacheLoadIgnoresCallerCancellation(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewListCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute, nil)
	banks := lookup(t, "banks")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loads := 0
	load := func(ctx context.Context) ([]Row, error) {
		loads++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []Row{{"id": "1"}}, nil
	}

	rows, err := cache.Fetch(ctx, "c-1", banks, nil, load)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rows, err = cache.Fetch(context.Background(), "c-1", banks, nil, load)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 1, loads)
}

func TestCatalogDescriptors(t *testing.T) {
	groups := lookup(t, "company-groups")
	require.False(t, groups.Bulk)
	require.Equal(t, FallbackSequential, groups.Fallback)
	require.Equal(t, "/company-groups", groups.Path)

	require.True(t, lookup(t, "banks").Bulk)
	require.Equal(t, "/attendances", lookup(t, "attendance").Path)
	require.GreaterOrEqual(t, len(MasterDataCatalog().All()), 30)
}

func TestSucceededIDs(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, succeededIDs([]string{"a", "b"}, nil))
	require.Equal(t, []string{"a", "c"}, succeededIDs([]string{"a", "b", "c"}, []string{"b"}))
	require.Empty(t, succeededIDs([]string{"a"}, []string{"a"}))
}
