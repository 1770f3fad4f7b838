package internal

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jarifuri/org-sql/internal/mapper"
	"github.com/jarifuri/org-sql/internal/org"
	"github.com/jarifuri/org-sql/internal/sqlgen"
	"github.com/jarifuri/org-sql/internal/storage"
	"github.com/jarifuri/org-sql/internal/store"
	"github.com/jarifuri/org-sql/internal/syncer"
)

// Pipeline wires the source directory, the row mapper, the SQL
// compiler, and the database into one sync unit.
type Pipeline struct {
	source   storage.Provider
	db       store.Store
	mapper   *mapper.Mapper
	compiler *sqlgen.Compiler
	parse    org.Options
	logger   *slog.Logger
}

// NewPipeline builds a pipeline from already-initialized parts.
func NewPipeline(source storage.Provider, db store.Store, m *mapper.Mapper, c *sqlgen.Compiler, parse org.Options, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		source:   source,
		db:       db,
		mapper:   m,
		compiler: c,
		parse:    parse,
		logger:   logger,
	}
}

// Sync brings the database in line with the source directory: renames
// are path updates, vanished files cascade out, and new content is
// parsed, mapped, and inserted. Inserts run in parallel; the database
// writes themselves serialize inside the driver.
func (p *Pipeline) Sync(ctx context.Context) error {
	disk, err := p.source.List("")
	if err != nil {
		return fmt.Errorf("sync: list source: %w", err)
	}
	stored, err := p.db.Files()
	if err != nil {
		return fmt.Errorf("sync: list store: %w", err)
	}

	plan := syncer.Classify(disk, stored)
	p.logger.Info("sync plan",
		slog.Int("inserts", len(plan.Inserts)),
		slog.Int("updates", len(plan.Updates)),
		slog.Int("deletes", len(plan.Deletes)),
		slog.Int("keeps", len(plan.Keeps)))

	// Deletes first so an insert can reuse a freed path, then renames,
	// then new content.
	for _, f := range plan.Deletes {
		if err := p.db.DeleteFile(f.StorePath); err != nil {
			return fmt.Errorf("sync: %w", err)
		}
		p.logger.Debug("sync: deleted", slog.String("path", f.StorePath))
	}
	for _, f := range plan.Updates {
		if err := p.db.RenameFile(f.StorePath, f.DiskPath); err != nil {
			return fmt.Errorf("sync: %w", err)
		}
		p.logger.Debug("sync: renamed",
			slog.String("from", f.StorePath),
			slog.String("to", f.DiskPath))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, f := range plan.Inserts {
		f := f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := p.insertFile(f); err != nil {
				return fmt.Errorf("sync: %s: %w", f.DiskPath, err)
			}
			p.logger.Debug("sync: inserted", slog.String("path", f.DiskPath))
			return nil
		})
	}
	return g.Wait()
}

// insertFile parses one file and writes its full row set in a single
// transaction.
func (p *Pipeline) insertFile(f syncer.FileMeta) error {
	data, err := p.source.Read(f.DiskPath)
	if err != nil {
		return err
	}
	doc := org.Parse(f.DiskPath, data, p.parse)
	rows := p.mapper.Map(doc, f.Hash, f.Size)

	stmts, err := p.compiler.InsertAll(rows)
	if err != nil {
		return err
	}
	return p.db.ExecScript(p.compiler.Transaction(stmts))
}
