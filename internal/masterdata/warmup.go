package masterdata

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
	"github.com/odyssey-erp/odyssey-hr/jobs"
)

// Warmer resolves resource names across catalogs and loads their lists into
// the cache.
type Warmer struct {
	service  *Service
	catalogs []*Catalog
}

// NewWarmer constructs a Warmer over the given catalogs.
func NewWarmer(service *Service, catalogs ...*Catalog) *Warmer {
	return &Warmer{service: service, catalogs: catalogs}
}

// WarmNamed warms the named resources, or every resource when names is empty.
// It returns how many lists were loaded before the first failure.
func (w *Warmer) WarmNamed(ctx context.Context, names []string) (int, error) {
	resources := w.resolve(names)
	warmed := 0
	for _, res := range resources {
		if err := w.service.Warm(ctx, []Resource{res}); err != nil {
			return warmed, err
		}
		warmed++
	}
	return warmed, nil
}

func (w *Warmer) resolve(names []string) []Resource {
	var out []Resource
	if len(names) == 0 {
		for _, c := range w.catalogs {
			out = append(out, c.All()...)
		}
		return out
	}
	for _, name := range names {
		found := false
		for _, c := range w.catalogs {
			if res, ok := c.Lookup(name); ok {
				out = append(out, res)
				found = true
				break
			}
		}
		if !found {
			w.service.logger.Warn("warmup skips unknown resource", slog.String("resource", name))
		}
	}
	return out
}

// WarmupScheduler queues cache warmups.
type WarmupScheduler interface {
	EnqueueMasterDataWarmup(ctx context.Context, payload jobs.MasterDataWarmupPayload) (string, error)
}

// ScheduleWarmup queues a warmup of resources for the session's company using
// the session's sealed access token.
func ScheduleWarmup(ctx context.Context, scheduler WarmupScheduler, sess *shared.Session, resources []string) (string, error) {
	company := shared.CompanyFromContext(ctx)
	if company == "" {
		return "", httpx.Invalid("Select a company first")
	}
	sealed := sess.Get(shared.SessionKeyAccessToken)
	if sealed == "" {
		return "", httpx.ErrUnauthorized
	}
	id, err := scheduler.EnqueueMasterDataWarmup(ctx, jobs.MasterDataWarmupPayload{
		CompanyID: company,
		Resources: resources,
		Token:     sealed,
	})
	if err != nil {
		return "", fmt.Errorf("schedule warmup: %w", err)
	}
	return id, nil
}
