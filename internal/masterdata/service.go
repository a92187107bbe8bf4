package masterdata

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
)

const defaultParallelism = 4

// Service implements master-data operations on top of the backend.
type Service struct {
	repo        Repository
	cache       *ListCache
	audit       *shared.AuditLogger
	logger      *slog.Logger
	validate    *validator.Validate
	parallelism int
}

// NewService creates a new master data service. cache and audit may be nil.
func NewService(repo Repository, cache *ListCache, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		cache:       cache,
		audit:       audit,
		logger:      logger,
		validate:    validator.New(),
		parallelism: defaultParallelism,
	}
}

// List returns all rows of res matching query.
func (s *Service) List(ctx context.Context, res Resource, query url.Values) ([]Row, error) {
	return s.cache.Fetch(ctx, shared.CompanyFromContext(ctx), res, query, func(ctx context.Context) ([]Row, error) {
		return s.repo.List(ctx, res, query)
	})
}

// Warm loads the unfiltered list of each resource into the cache.
func (s *Service) Warm(ctx context.Context, resources []Resource) error {
	for _, res := range resources {
		if _, err := s.List(ctx, res, nil); err != nil {
			return fmt.Errorf("warm %s: %w", res.Name, err)
		}
	}
	return nil
}

// Get returns a single row.
func (s *Service) Get(ctx context.Context, res Resource, id string) (Row, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, httpx.Invalid("Invalid " + strings.ToLower(res.Label) + " ID")
	}
	return s.repo.Get(ctx, res, id)
}

// Create saves one row.
func (s *Service) Create(ctx context.Context, res Resource, row Row) (Row, string, error) {
	cleaned, err := validateOne(s.validate, res, row)
	if err != nil {
		return nil, "", err
	}
	created, msg, err := s.repo.Create(ctx, res, cleaned)
	if err != nil {
		return nil, msg, err
	}
	s.invalidate(ctx, res)
	if msg == "" {
		msg = res.Label + " created"
	}
	return created, msg, nil
}

// Update saves changes to one row.
func (s *Service) Update(ctx context.Context, res Resource, id string, row Row) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", httpx.Invalid("Invalid " + strings.ToLower(res.Label) + " ID")
	}
	cleaned, err := validateOne(s.validate, res, row)
	if err != nil {
		return "", err
	}
	delete(cleaned, "id")
	msg, err := s.repo.Update(ctx, res, id, cleaned)
	if err != nil {
		return msg, err
	}
	s.invalidate(ctx, res)
	if msg == "" {
		msg = res.Label + " updated"
	}
	return msg, nil
}

// Delete removes one row.
func (s *Service) Delete(ctx context.Context, res Resource, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", httpx.Invalid("Invalid " + strings.ToLower(res.Label) + " ID")
	}
	msg, err := s.repo.Delete(ctx, res, id)
	if err != nil {
		return msg, err
	}
	s.invalidate(ctx, res)
	s.record(ctx, res, "masterdata.delete", id, map[string]any{"ids": []string{id}})
	if msg == "" {
		msg = res.Label + " deleted"
	}
	return msg, nil
}

// CreateMany saves a batch. Rows missing a required field are dropped; an
// empty batch never reaches the backend.
func (s *Service) CreateMany(ctx context.Context, res Resource, rows []Row) (Outcome, error) {
	kept, dropped := cleanRows(s.validate, res, rows, false)
	if len(kept) == 0 {
		return Outcome{}, httpx.Invalid(requiredMessage(res))
	}
	var (
		out Outcome
		err error
	)
	if res.Bulk {
		out, err = s.bulk(len(kept), func() (string, error) { return s.repo.CreateMany(ctx, res, kept) })
	} else {
		out, err = s.each(ctx, res, rowIDs(kept), func(ctx context.Context, i int) error {
			_, _, err := s.repo.Create(ctx, res, kept[i])
			return err
		})
	}
	out.Result.Dropped = dropped
	s.finish(ctx, res, "Created", &out, err == nil || out.Result.Succeeded > 0)
	return out, err
}

// UpdateMany saves changes to a batch. Rows also need an id.
func (s *Service) UpdateMany(ctx context.Context, res Resource, rows []Row) (Outcome, error) {
	kept, dropped := cleanRows(s.validate, res, rows, true)
	if len(kept) == 0 {
		return Outcome{}, httpx.Invalid(requiredMessage(res))
	}
	var (
		out Outcome
		err error
	)
	if res.Bulk {
		out, err = s.bulk(len(kept), func() (string, error) { return s.repo.UpdateMany(ctx, res, kept) })
	} else {
		out, err = s.each(ctx, res, rowIDs(kept), func(ctx context.Context, i int) error {
			fields := make(Row, len(kept[i]))
			for k, v := range kept[i] {
				if k != "id" {
					fields[k] = v
				}
			}
			_, err := s.repo.Update(ctx, res, kept[i].ID(), fields)
			return err
		})
	}
	out.Result.Dropped = dropped
	s.finish(ctx, res, "Updated", &out, err == nil || out.Result.Succeeded > 0)
	return out, err
}

// DeleteMany removes a batch of ids with one bulk call, or one call per id when
// the resource has no bulk endpoint.
func (s *Service) DeleteMany(ctx context.Context, res Resource, ids []string) (Outcome, error) {
	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			cleaned = append(cleaned, id)
		}
	}
	if len(cleaned) == 0 {
		return Outcome{}, httpx.Invalid("Select at least one " + strings.ToLower(res.Label) + " to delete")
	}
	var (
		out Outcome
		err error
	)
	if res.Bulk {
		out, err = s.bulk(len(cleaned), func() (string, error) { return s.repo.DeleteMany(ctx, res, cleaned) })
	} else {
		out, err = s.each(ctx, res, cleaned, func(ctx context.Context, i int) error {
			_, err := s.repo.Delete(ctx, res, cleaned[i])
			return err
		})
	}
	ok := err == nil || out.Result.Succeeded > 0
	s.finish(ctx, res, "Deleted", &out, ok)
	if ok {
		s.recordEach(ctx, res, "masterdata.delete", succeededIDs(cleaned, out.Result.FailedIDs), map[string]any{
			"batch": len(cleaned),
		})
	}
	return out, err
}

// bulk runs a single all-or-nothing call.
func (s *Service) bulk(n int, call func() (string, error)) (Outcome, error) {
	msg, err := call()
	if err != nil {
		return Outcome{Message: msg, Result: BulkResult{Requested: n, Failed: n}}, err
	}
	return Outcome{Message: msg, Result: BulkResult{Requested: n, Succeeded: n}}, nil
}

// each runs call once per item, sequentially or in parallel according to the
// resource. It fails only when every item failed.
func (s *Service) each(ctx context.Context, res Resource, ids []string, call func(context.Context, int) error) (Outcome, error) {
	var (
		mu       sync.Mutex
		result   = BulkResult{Requested: len(ids)}
		firstErr error
	)
	note := func(i int, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err == nil {
			result.Succeeded++
			return
		}
		result.Failed++
		result.FailedIDs = append(result.FailedIDs, ids[i])
		if firstErr == nil {
			firstErr = err
		}
		s.logger.Warn("masterdata item call",
			slog.String("resource", res.Name),
			slog.String("id", ids[i]),
			slog.Any("error", err))
	}

	if res.Fallback == FallbackParallel {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.parallelism)
		for i := range ids {
			g.Go(func() error {
				note(i, call(gctx, i))
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range ids {
			if err := ctx.Err(); err != nil {
				note(i, err)
				continue
			}
			note(i, call(ctx, i))
		}
	}

	if result.Succeeded == 0 {
		return Outcome{Result: result}, firstErr
	}
	return Outcome{Result: result}, nil
}

func (s *Service) finish(ctx context.Context, res Resource, verb string, out *Outcome, mutated bool) {
	if mutated {
		s.invalidate(ctx, res)
	}
	if out.Message == "" || out.Result.Failed > 0 {
		out.Message = summary(verb, res, out.Result)
	}
}

func (s *Service) invalidate(ctx context.Context, res Resource) {
	s.cache.Invalidate(ctx, shared.CompanyFromContext(ctx), res)
}

func (s *Service) record(ctx context.Context, res Resource, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	meta["resource"] = res.Name
	if err := s.audit.Record(ctx, shared.AuditFromContext(ctx, action, res.Name, entityID, meta)); err != nil {
		s.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}

// recordEach writes one audit row per id in a single batch.
func (s *Service) recordEach(ctx context.Context, res Resource, action string, ids []string, meta map[string]any) {
	if s.audit == nil || len(ids) == 0 {
		return
	}
	meta["resource"] = res.Name
	entries := make([]shared.AuditLog, len(ids))
	for i, id := range ids {
		entries[i] = shared.AuditFromContext(ctx, action, res.Name, id, meta)
	}
	if err := s.audit.RecordMany(ctx, entries...); err != nil {
		s.logger.Warn("audit record", slog.String("action", action), slog.Int("rows", len(entries)), slog.Any("error", err))
	}
}

func succeededIDs(ids, failed []string) []string {
	if len(failed) == 0 {
		return ids
	}
	skip := make(map[string]bool, len(failed))
	for _, id := range failed {
		skip[id] = true
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !skip[id] {
			out = append(out, id)
		}
	}
	return out
}

func rowIDs(rows []Row) []string {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID()
		if ids[i] == "" {
			ids[i] = fmt.Sprintf("#%d", i+1)
		}
	}
	return ids
}
