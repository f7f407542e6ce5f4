package engine

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"db2graph/internal/dialect"
	"db2graph/internal/logger"
	"db2graph/internal/mapping"
	"db2graph/internal/metadata"

	"golang.org/x/sync/errgroup"
)

type Options struct {
	Directory   string
	Formatting  mapping.Formatting
	TinyInt     metadata.TinyIntResolver
	Limit       int // rows per resource, 0 for all
	Concurrency int // resources exported at once, 0 for one at a time
}

// ExportResult compares the rows written for a resource with the rows the source holds.
type ExportResult struct {
	Resource string
	Target   int
	Actual   int
	Status   string
	ErrorMsg string
}

// Exporter writes the CSV files of mapped resources, reading rows through database/sql.
type Exporter struct {
	db      *sql.DB
	dialect dialect.Dialect
	opts    Options
}

func NewExporter(db *sql.DB, d dialect.Dialect, opts Options) *Exporter {
	if opts.Formatting == (mapping.Formatting{}) {
		opts.Formatting = mapping.DefaultFormatting()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Exporter{db: db, dialect: d, opts: opts}
}

// Count returns the number of rows that will be exported for r, honoring the limit.
func (e *Exporter) Count(ctx context.Context, r mapping.Resource) (int, error) {
	var n int
	if err := e.db.QueryRowContext(ctx, CountQuery(e.dialect, r)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", r.Table, err)
	}
	if e.opts.Limit > 0 && n > e.opts.Limit {
		n = e.opts.Limit
	}
	return n, nil
}

// Export writes a header file and a data file per resource, concurrently, and returns the
// manifest the import tool is driven from. onProgress, when set, is called once per row
// written with the resource name; it must be safe for concurrent use.
func (e *Exporter) Export(ctx context.Context, rf mapping.ResourceFile, onProgress func(resource string)) (*Manifest, []ExportResult, error) {
	if err := os.MkdirAll(e.opts.Directory, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create csv directory: %w", err)
	}

	results := make([]ExportResult, len(rf.Resources))
	files := make([][]string, len(rf.Resources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for i, r := range rf.Resources {
		g.Go(func() error {
			res, paths, err := e.exportResource(ctx, r, onProgress)
			if err != nil {
				return err
			}
			results[i] = res
			files[i] = paths
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	manifest := newManifest(rf.RunID, e.opts.Directory)
	for i, r := range rf.Resources {
		manifest.add(r, files[i])
	}
	logger.Infof("Exported %d resources of run %s to %s", len(rf.Resources), rf.RunID, e.opts.Directory)
	return manifest, results, nil
}

func (e *Exporter) exportResource(ctx context.Context, r mapping.Resource, onProgress func(string)) (ExportResult, []string, error) {
	target, err := e.Count(ctx, r)
	if err != nil {
		return ExportResult{}, nil, err
	}

	headerPath := filepath.Join(e.opts.Directory, r.Name+"_header.csv")
	if err := e.writeHeader(headerPath, r); err != nil {
		return ExportResult{}, nil, err
	}

	dataPath := filepath.Join(e.opts.Directory, r.Name+".csv")
	written, err := e.writeData(ctx, dataPath, r, onProgress)
	if err != nil {
		return ExportResult{}, nil, fmt.Errorf("failed to export %s: %w", r.Name, err)
	}

	return verify(r.Name, target, written), []string{headerPath, dataPath}, nil
}

func (e *Exporter) writeHeader(path string, r mapping.Resource) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create header file: %w", err)
	}
	defer f.Close()

	w := newRecordWriter(f, e.opts.Formatting)
	if err := w.Write(r.Mappings.Headers()); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", r.Name, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", r.Name, err)
	}
	return f.Close()
}

func (e *Exporter) writeData(ctx context.Context, path string, r mapping.Resource, onProgress func(string)) (int, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to open connection: %w", err)
	}
	defer conn.Close()

	for _, stmt := range e.dialect.SessionStatements() {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("session statement %q failed: %w", stmt, err)
		}
	}

	query := ProjectionQuery(e.dialect, r)
	if e.opts.Limit > 0 {
		query = e.dialect.LimitQuery(query, e.opts.Limit)
	}
	logger.Debugf("export %s: %s", r.Name, query)

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create data file: %w", err)
	}
	defer f.Close()

	columns := r.Mappings.Columns()
	values := make([]sql.NullString, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	record := make([]string, len(columns))

	w := newRecordWriter(f, e.opts.Formatting)
	written := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return written, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if !v.Valid {
				record[i] = ""
				continue
			}
			record[i] = e.opts.TinyInt.Value(columns[i].SQLType, v.String)
		}
		if err := w.Write(record); err != nil {
			return written, fmt.Errorf("failed to write row: %w", err)
		}
		written++
		if onProgress != nil {
			onProgress(r.Name)
		}
	}
	if err := rows.Err(); err != nil {
		return written, fmt.Errorf("error iterating rows: %w", err)
	}
	if err := w.Flush(); err != nil {
		return written, fmt.Errorf("failed to flush data file: %w", err)
	}
	return written, f.Close()
}

// verify mirrors the row count check done after a load: fewer rows than the source holds
// is reported, not failed.
func verify(resource string, target, actual int) ExportResult {
	res := ExportResult{Resource: resource, Target: target, Actual: actual, Status: "OK"}
	switch {
	case actual < target:
		res.Status = fmt.Sprintf("PARTIAL: %d/%d", actual, target)
		res.ErrorMsg = fmt.Sprintf("Only exported %d out of %d rows. Rows deleted during export?", actual, target)
	case actual > target:
		res.Status = fmt.Sprintf("EXTRA: %d/%d", actual, target)
		res.ErrorMsg = "Rows inserted during export"
	}
	return res
}
