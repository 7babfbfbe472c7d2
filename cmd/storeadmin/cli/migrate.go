package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/odyssey-erp/storeadmin/internal/catalog"
	"github.com/odyssey-erp/storeadmin/internal/routecatalog"
)

// Exit codes returned by MigrateCommand.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitFailures = 10
)

// Reconciler is the catalog behaviour the migrate command drives.
type Reconciler interface {
	Reconcile(ctx context.Context, resources []routecatalog.Resource) (catalog.Report, error)
}

// MigrateOptions defines the flags of the migrate-route command.
type MigrateOptions struct {
	Dir        string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// MigrateSummary is the JSON document printed with -json.
type MigrateSummary struct {
	OK            bool                  `json:"ok"`
	CreatedGroups []string              `json:"created_groups"`
	Groups        []catalog.GroupResult `json:"groups"`
	Unmigrated    []string              `json:"unmigrated"`
	Failures      []MigrateFailure      `json:"failures"`
	Warnings      []string              `json:"warnings"`
}

// MigrateFailure reports one resource that could not be reconciled.
type MigrateFailure struct {
	Resource string `json:"resource"`
	Error    string `json:"error"`
}

// RouteMigrator runs extraction and reconciliation once.
type RouteMigrator struct {
	service Reconciler
	load    func(dir string) ([]routecatalog.Resource, []routecatalog.Warning, error)
}

// NewRouteMigrator constructs the command helper.
func NewRouteMigrator(service Reconciler) *RouteMigrator {
	return &RouteMigrator{service: service, load: routecatalog.LoadDir}
}

// MigrateCommand extracts the catalog from opts.Dir, reconciles it and prints
// the report. It returns ExitFailures when any resource failed.
func (m *RouteMigrator) MigrateCommand(ctx context.Context, opts MigrateOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Dir == "" {
		_, _ = fmt.Fprintln(opts.Stderr, "migrate-route: -dir is required")
		return ExitError
	}
	resources, warnings, err := m.load(opts.Dir)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "migrate-route: %v\n", err)
		return ExitError
	}
	report, err := m.service.Reconcile(ctx, resources)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "migrate-route: %v\n", err)
		return ExitError
	}
	summary := buildMigrateSummary(report, warnings)
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "migrate-route: encode json: %v\n", err)
			return ExitError
		}
	} else {
		renderMigrateHuman(opts.Stdout, summary)
	}
	if !summary.OK {
		return ExitFailures
	}
	return ExitOK
}

func buildMigrateSummary(report catalog.Report, warnings []routecatalog.Warning) MigrateSummary {
	summary := MigrateSummary{
		CreatedGroups: make([]string, 0, len(report.CreatedGroups)),
		Groups:        report.Groups,
		Unmigrated:    report.Unmigrated,
		Failures:      make([]MigrateFailure, 0, len(report.Failures)+1),
		Warnings:      make([]string, 0, len(warnings)),
	}
	for _, g := range report.CreatedGroups {
		summary.CreatedGroups = append(summary.CreatedGroups, g.Slug)
	}
	if summary.Groups == nil {
		summary.Groups = []catalog.GroupResult{}
	}
	if summary.Unmigrated == nil {
		summary.Unmigrated = []string{}
	}
	if report.GroupsErr != nil {
		summary.Failures = append(summary.Failures, MigrateFailure{Resource: "*", Error: report.GroupsErr.Error()})
	}
	for _, f := range report.Failures {
		summary.Failures = append(summary.Failures, MigrateFailure{Resource: f.Slug, Error: f.Err.Error()})
	}
	for _, w := range warnings {
		summary.Warnings = append(summary.Warnings, w.String())
	}
	summary.OK = len(summary.Failures) == 0
	return summary
}

func renderMigrateHuman(out io.Writer, s MigrateSummary) {
	_, _ = fmt.Fprintf(out, "Created %d permission group(s)\n", len(s.CreatedGroups))
	for _, slug := range s.CreatedGroups {
		_, _ = fmt.Fprintf(out, " + %s\n", slug)
	}
	for _, g := range s.Groups {
		if len(g.Created) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(out, "%s: %d new permission(s)\n", g.Slug, len(g.Created))
		for _, name := range g.Created {
			_, _ = fmt.Fprintf(out, " + %s\n", name)
		}
	}
	if len(s.Unmigrated) > 0 {
		_, _ = fmt.Fprintln(out, "Unmigrated resources:")
		for _, slug := range s.Unmigrated {
			_, _ = fmt.Fprintf(out, " - %s\n", slug)
		}
	}
	for _, w := range s.Warnings {
		_, _ = fmt.Fprintf(out, "warning: %s\n", w)
	}
	for _, f := range s.Failures {
		_, _ = fmt.Fprintf(out, "failed: %s: %s\n", f.Resource, f.Error)
	}
}
