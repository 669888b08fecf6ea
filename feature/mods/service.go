package mods

import (
	"context"
	"fmt"

	"mod-manager/core/mods"

	"go.uber.org/zap"
)

// Summary is the list view of one package.
type Summary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Author   string `json:"author,omitempty"`
	Version  string `json:"version,omitempty"`
	Files    int    `json:"files"`
	Swaps    int    `json:"swaps"`
	Edits    int    `json:"edits"`
	Groups   int    `json:"groups"`
	Warnings int    `json:"warnings"`
}

// ReloadReport is the result of a rescan of the mod directory.
type ReloadReport struct {
	Loaded   int                 `json:"loaded"`
	Failed   []string            `json:"failed,omitempty"`
	Warnings map[string][]string `json:"warnings,omitempty"`
}

// PruneResult tells how many edits a prune dropped.
type PruneResult struct {
	ID      string `json:"id"`
	Removed int    `json:"removed"`
}

// Service exposes the package store to the HTTP layer and the CLI.
type Service struct {
	store   *mods.Store
	checker mods.NoOpChecker
	logger  *zap.Logger
}

// NewService creates a new mods service. checker decides which edits are
// equal to the base tables.
func NewService(store *mods.Store, checker mods.NoOpChecker, logger *zap.Logger) *Service {
	return &Service{store: store, checker: checker, logger: logger}
}

func summarize(p *mods.Package) Summary {
	s := Summary{
		ID:       p.ID,
		Name:     p.Name,
		Author:   p.Author,
		Version:  p.Version,
		Files:    len(p.Default.Files),
		Swaps:    len(p.Default.Swaps),
		Edits:    len(p.Default.Edits),
		Groups:   len(p.Groups),
		Warnings: len(p.Warnings),
	}
	for _, g := range p.Groups {
		for _, o := range g.Options {
			s.Files += len(o.Files)
			s.Swaps += len(o.Swaps)
			s.Edits += len(o.Edits)
		}
	}
	return s
}

// List summarizes every loaded package, sorted by id.
func (s *Service) List() []Summary {
	pkgs := s.store.List()
	out := make([]Summary, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, summarize(p))
	}
	return out
}

// Get returns a loaded package.
func (s *Service) Get(id string) (*mods.Package, error) {
	pkg, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", mods.ErrPackageNotFound, id)
	}
	return pkg, nil
}

// Reload rescans the mod directory.
func (s *Service) Reload(ctx context.Context) (*ReloadReport, error) {
	report, err := s.store.Discover(ctx)
	if err != nil {
		return nil, err
	}
	out := &ReloadReport{Loaded: report.Loaded, Failed: report.Failed(), Warnings: report.Warnings}
	s.logger.Info("Mod directory reloaded",
		zap.Int("loaded", out.Loaded),
		zap.Int("failed", len(out.Failed)),
	)
	return out, nil
}

// Prune drops the default edits of a package that equal the base tables.
func (s *Service) Prune(ctx context.Context, id string) (*PruneResult, error) {
	removed, err := s.store.PruneNoOpEdits(ctx, id, s.checker)
	if err != nil {
		return nil, err
	}
	return &PruneResult{ID: id, Removed: removed}, nil
}

// Rename moves a package folder.
func (s *Service) Rename(id, newID string) (*mods.Package, error) {
	return s.store.Rename(id, newID)
}

// Delete removes a package folder.
func (s *Service) Delete(id string) error {
	return s.store.Remove(id)
}
