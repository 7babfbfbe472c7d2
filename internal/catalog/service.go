package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/storeadmin/internal/routecatalog"
)

// DefaultConcurrency bounds the per-resource fan-out when none is configured.
const DefaultConcurrency = 8

// Metrics receives reconciliation counters.
type Metrics interface {
	AddPermissionsCreated(n int)
	IncResourceFailure()
}

// Options tune a Service.
type Options struct {
	Concurrency int
	Metrics     Metrics
}

// Service reconciles extracted route catalogs into the store and serves the
// read side of the catalog.
type Service struct {
	repo        Repository
	logger      *slog.Logger
	metrics     Metrics
	concurrency int
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Service{repo: repo, logger: logger, metrics: opts.Metrics, concurrency: opts.Concurrency}
}

type resourceOutcome struct {
	slug    string
	found   bool
	created []string
	err     error
}

// Reconcile brings the stored catalog in line with resources. Missing groups
// are created first, then every resource is reconciled independently: a
// failure in one resource is reported without affecting the others. Records
// are only ever inserted, so running it twice over the same input creates
// nothing the second time.
func (s *Service) Reconcile(ctx context.Context, resources []routecatalog.Resource) (Report, error) {
	resources = mergeResources(resources)
	var report Report

	created, err := s.ensureGroups(ctx, resources)
	if err != nil {
		s.logger.Error("create permission groups", slog.Any("error", err))
		report.GroupsErr = err
	}
	report.CreatedGroups = created

	outcomes := make([]resourceOutcome, len(resources))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, res := range resources {
		g.Go(func() error {
			outcomes[i] = s.reconcileResource(ctx, res)
			return nil
		})
	}
	_ = g.Wait()

	for _, out := range outcomes {
		if out.found {
			report.Groups = append(report.Groups, GroupResult{Slug: out.slug, Created: out.created})
		} else if out.err == nil {
			report.Unmigrated = append(report.Unmigrated, out.slug)
		}
		if out.err != nil {
			failure := &ReconciliationError{Slug: out.slug, Err: out.err}
			report.Failures = append(report.Failures, failure)
			s.logger.Error("reconcile resource", slog.String("resource", out.slug), slog.Any("error", out.err))
			if s.metrics != nil {
				s.metrics.IncResourceFailure()
			}
		}
	}
	sort.Slice(report.Groups, func(i, j int) bool { return report.Groups[i].Slug < report.Groups[j].Slug })
	sort.Strings(report.Unmigrated)

	if s.metrics != nil {
		s.metrics.AddPermissionsCreated(report.CreatedPermissions())
	}
	s.logger.Info("catalog reconciled",
		slog.Int("resources", len(resources)),
		slog.Int("groups_created", len(report.CreatedGroups)),
		slog.Int("permissions_created", report.CreatedPermissions()),
		slog.Int("unmigrated", len(report.Unmigrated)),
		slog.Int("failures", len(report.Failures)),
	)
	return report, ctx.Err()
}

// ensureGroups creates a group for every resource slug not yet stored.
// Soft-deleted groups count as stored and are not recreated.
func (s *Service) ensureGroups(ctx context.Context, resources []routecatalog.Resource) ([]PermissionGroup, error) {
	existing, err := s.repo.ListGroupSlugs(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(existing))
	for _, slug := range existing {
		known[slug] = struct{}{}
	}
	var missing []PermissionGroup
	for _, res := range resources {
		if _, ok := known[res.Slug]; ok {
			continue
		}
		known[res.Slug] = struct{}{}
		missing = append(missing, PermissionGroup{Name: HumanizeSlug(res.Slug), Slug: res.Slug})
	}
	if len(missing) == 0 {
		return nil, nil
	}
	return s.repo.CreateGroups(ctx, missing)
}

func (s *Service) reconcileResource(ctx context.Context, res routecatalog.Resource) resourceOutcome {
	out := resourceOutcome{slug: res.Slug}
	group, err := s.repo.FindGroupBySlug(ctx, res.Slug)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			out.err = err
		}
		return out
	}
	if group.DeletedAt != nil {
		return out
	}
	out.found = true
	out.created = []string{}
	for _, entry := range res.Entries {
		if err := ctx.Err(); err != nil {
			out.err = err
			return out
		}
		exists, err := s.repo.PermissionExists(ctx, group.ID, entry.Method, entry.Slug)
		if err != nil {
			out.err = err
			return out
		}
		if exists {
			continue
		}
		groupID := group.ID
		inserted, err := s.repo.CreatePermission(ctx, Permission{
			GroupID: &groupID,
			Name:    entry.Name,
			Slug:    entry.Slug,
			Method:  entry.Method,
		})
		if err != nil {
			out.err = fmt.Errorf("%s %s: %w", entry.Method, entry.Slug, err)
			return out
		}
		if inserted {
			out.created = append(out.created, entry.Name)
		}
	}
	return out
}

// mergeResources folds resources sharing a slug (for example a route file and
// a manifest of the same name) into one, keeping first-seen order.
func mergeResources(resources []routecatalog.Resource) []routecatalog.Resource {
	index := make(map[string]int, len(resources))
	merged := make([]routecatalog.Resource, 0, len(resources))
	for _, res := range resources {
		if i, ok := index[res.Slug]; ok {
			merged[i].Entries = append(merged[i].Entries, res.Entries...)
			continue
		}
		index[res.Slug] = len(merged)
		merged = append(merged, routecatalog.Resource{
			Slug:    res.Slug,
			Entries: append([]routecatalog.Entry(nil), res.Entries...),
		})
	}
	for i := range merged {
		merged[i].Entries = routecatalog.Dedupe(merged[i].Entries)
	}
	return merged
}

// ListGroups returns stored groups, newest first, each with its permissions.
func (s *Service) ListGroups(ctx context.Context) ([]GroupWithPermissions, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	byGroup := make(map[int64][]Permission, len(groups))
	for _, p := range perms {
		if p.GroupID == nil {
			continue
		}
		p.Group = nil
		byGroup[*p.GroupID] = append(byGroup[*p.GroupID], p)
	}
	out := make([]GroupWithPermissions, 0, len(groups))
	for _, g := range groups {
		list := byGroup[g.ID]
		if list == nil {
			list = []Permission{}
		}
		out = append(out, GroupWithPermissions{PermissionGroup: g, Permissions: list})
	}
	return out, nil
}

// ListPermissions returns stored permissions with their owning group.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}
