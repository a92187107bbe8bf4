package masterdata

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-hr/internal/shared"
	"github.com/odyssey-erp/odyssey-hr/jobs"
)

type fakeScheduler struct {
	payloads []jobs.MasterDataWarmupPayload
}

func (f *fakeScheduler) EnqueueMasterDataWarmup(ctx context.Context, payload jobs.MasterDataWarmupPayload) (string, error) {
	f.payloads = append(f.payloads, payload)
	return "task-1", nil
}

func TestWarmerLoadsNamedResources(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := newMemoryRepo()
	repo.rows = []Row{{"id": "1", "name": "x"}}
	svc := NewService(repo, NewListCache(client, time.Minute, nil), nil, nil)
	warmer := NewWarmer(svc, MasterDataCatalog(), HRCatalog())
	ctx := shared.ContextWithCompany(context.Background(), "c-1")

	n, err := warmer.WarmNamed(ctx, []string{"banks", "employees", "starships"})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 2, repo.listCalls)

	_, err = svc.List(ctx, lookup(t, "banks"), nil)
	require.NoError(t, err)
	require.Equal(t, 2, repo.listCalls)

	n, err = warmer.WarmNamed(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, len(MasterDataCatalog().All())+len(HRCatalog().All()), n)
}

func TestHandlerWarmupSchedulesTask(t *testing.T) {
	scheduler := &fakeScheduler{}
	sess := &shared.Session{ID: "s"}
	sess.SetUser("u-1")
	sess.Set(shared.SessionKeyAccessToken, "sealed-token")
	_ = sess.SetJSON(shared.SessionKeyPermissions, []string{shared.PermMasterDataView})

	h := NewHandler(nil, NewService(newMemoryRepo(), nil, nil, nil), MasterDataCatalog()).WithWarmups(scheduler)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithSession(req.Context(), sess)
			ctx = shared.ContextWithCompany(ctx, "c-9")
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/masterdata", h.MountRoutes)

	code, out := serve(t, r, http.MethodPost, "/masterdata/warmup", `{"resources":["banks","cities"]}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Cache warmup scheduled", out.Message)
	require.Len(t, scheduler.payloads, 1)
	require.Equal(t, jobs.MasterDataWarmupPayload{CompanyID: "c-9", Resources: []string{"banks", "cities"}, Token: "sealed-token"}, scheduler.payloads[0])

	code, _ = serve(t, r, http.MethodPost, "/masterdata/warmup", `{"resources":["starships"]}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Len(t, scheduler.payloads, 1)
}
