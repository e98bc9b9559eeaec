// Package sqliteql is the engine façade: it ties the pager, schema
// catalog, SQL front-end and tree walker together into the single
// entry point external callers (the CLI, or an embedding host) use.
package sqliteql

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"sqliteql/errs"
	"sqliteql/page"
	"sqliteql/pager"
	"sqliteql/schema"
	"sqliteql/sqlparse"
	"sqliteql/walker"
)

// Engine is one opened database file: its header, object catalog, and the
// pager every query runs against.
type Engine struct {
	pgr     *pager.Pager
	header  *schema.Header
	catalog *schema.Catalog
	cfg     *Config
}

// Open reads the 100-byte header and the page-1 schema catalog from src,
// building an Engine ready to run queries. src must support random-access
// reads for the lifetime of the Engine.
func Open(src io.ReaderAt, opts ...Option) (*Engine, error) {
	cfg := buildConfig(opts)

	buf := make([]byte, 100)
	if _, err := src.ReadAt(buf, 0); err != nil {
		return nil, errs.New("sqliteql.Open", errs.Io, err)
	}

	var header *schema.Header
	var err error
	if cfg.StrictEncoding {
		header, err = schema.ParseHeader(buf)
	} else {
		header, err = schema.ParseHeaderLenient(buf)
		if err == nil && header.TextEncoding != 1 {
			cfg.Logger.Warn("non-UTF-8 text encoding, proceeding anyway",
				"text_encoding", header.TextEncoding)
		}
	}
	if err != nil {
		return nil, err
	}

	pgr := pager.New(src, header.PageSize, int(header.PageCount), cfg.Logger)
	pgr.EnableCache(cfg.PageCache)

	catalog, err := schema.LoadCatalog(pgr)
	if err != nil {
		return nil, err
	}

	return &Engine{pgr: pgr, header: header, catalog: catalog, cfg: cfg}, nil
}

// Header returns the decoded file header.
func (e *Engine) Header() *schema.Header { return e.header }

// Logger returns the engine's structured logger.
func (e *Engine) Logger() *slog.Logger { return e.cfg.Logger }

// Stats returns the pager's cumulative page-cache hit/miss counters.
func (e *Engine) Stats() pager.Stats { return e.pgr.Stats() }

// TableNames returns the catalog's table names, in declared order.
// Internal bookkeeping tables (sqlite_sequence) are included only when
// includeInternal is true.
func (e *Engine) TableNames(includeInternal bool) []string {
	return e.catalog.TableNames(includeInternal)
}

// IndexNames returns the catalog's index names.
func (e *Engine) IndexNames() []string { return e.catalog.IndexNames() }

// ViewNames returns the catalog's view names.
func (e *Engine) ViewNames() []string { return e.catalog.ViewNames() }

// TriggerNames returns the catalog's trigger names.
func (e *Engine) TriggerNames() []string { return e.catalog.TriggerNames() }

// SchemasSQL returns the CREATE statement text of every catalog entry, in
// catalog order.
func (e *Engine) SchemasSQL() []string {
	out := make([]string, len(e.catalog.Entries))
	for i, ent := range e.catalog.Entries {
		out[i] = ent.SQL
	}
	return out
}

// Execute runs one SQL statement and returns its result rows, each row a
// slice of rendered column strings in projection order.
func (e *Engine) Execute(sql string) ([][]string, error) {
	cmd, err := sqlparse.Parse(sql)
	if err != nil {
		return nil, err
	}

	tableEntry, err := e.catalog.Table(cmd.Table)
	if err != nil {
		return nil, err
	}
	tableDesc, err := sqlparse.ParseCreateTable(tableEntry.SQL)
	if err != nil {
		return nil, err
	}

	filter, err := e.planFilter(cmd, tableEntry, tableDesc)
	if err != nil {
		return nil, err
	}

	// The page cache lives for one query: on for this walk when configured,
	// dropped once the walk returns.
	e.pgr.EnableCache(e.cfg.PageCache)
	cells, err := walker.Walk(e.pgr, int(tableEntry.Root), filter)
	e.pgr.EnableCache(false)
	if err != nil {
		return nil, err
	}

	if cmd.Predicate == nil && cmd.WhereExpr != nil {
		cells, err = e.filterByWhereExpr(cells, cmd, tableDesc)
		if err != nil {
			return nil, err
		}
	}

	if cmd.Kind == sqlparse.Count {
		return [][]string{{strconv.Itoa(len(cells))}}, nil
	}

	cols := cmd.Columns
	if cmd.AllColumns {
		cols = tableDesc.Columns
	}
	return e.project(cells, tableDesc, cols)
}

// planFilter chooses the walker's plan: nil for a full scan, a PK-probe
// filter, an index-assisted filter when a usable index exists, or a
// filtered-scan filter (index_root left at zero) otherwise.
func (e *Engine) planFilter(cmd *sqlparse.Command, tableEntry schema.Entry, tableDesc *sqlparse.TableDescriptor) (*walker.CellFilter, error) {
	if cmd.Predicate == nil {
		return nil, nil
	}

	colIndex := columnIndex(tableDesc.Columns, cmd.Predicate.Column)
	if colIndex < 0 {
		return nil, errs.Newf("sqliteql.Execute", errs.NotFound, errs.ErrColumnNotFound,
			map[string]any{"column": cmd.Predicate.Column})
	}

	filter := &walker.CellFilter{
		ColIndex: colIndex,
		PKIndex:  tableDesc.PKIndex,
		Value:    cmd.Predicate.Value,
	}

	if colIndex != tableDesc.PKIndex {
		if root := e.indexRootOn(tableEntry.Name, cmd.Predicate.Column); root != 0 {
			filter.IndexRoot = root
		}
	}
	return filter, nil
}

// indexRootOn returns the root page of an index over table whose DDL's
// first indexed column is column, or 0 if none exists.
func (e *Engine) indexRootOn(table, column string) int {
	for _, idx := range e.catalog.IndexesOn(table) {
		desc, err := sqlparse.ParseCreateIndex(idx.SQL)
		if err != nil || len(desc.Columns) == 0 {
			continue
		}
		if strings.EqualFold(desc.Columns[0], column) {
			return int(idx.Root)
		}
	}
	return 0
}

// filterByWhereExpr applies a compound WHERE clause in Go, used when the
// walker's fast paths only got a full scan because the predicate wasn't a
// single equality test.
func (e *Engine) filterByWhereExpr(cells []page.Cell, cmd *sqlparse.Command, tableDesc *sqlparse.TableDescriptor) ([]page.Cell, error) {
	var out []page.Cell
	for _, c := range cells {
		lookup := func(col string) (string, bool) {
			i := columnIndex(tableDesc.Columns, col)
			if i < 0 {
				return "", false
			}
			v, err := c.ColumnValue(i, tableDesc.PKIndex)
			if err != nil {
				return "", false
			}
			return v.String(), true
		}
		ok, err := sqlparse.MatchesWhere(cmd.WhereExpr, lookup)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// project renders cells into rows of the requested columns, in the order
// requested.
func (e *Engine) project(cells []page.Cell, tableDesc *sqlparse.TableDescriptor, cols []string) ([][]string, error) {
	rows := make([][]string, 0, len(cells))
	for _, c := range cells {
		row := make([]string, len(cols))
		for i, col := range cols {
			idx := columnIndex(tableDesc.Columns, col)
			if idx < 0 {
				return nil, errs.Newf("sqliteql.Execute", errs.NotFound, errs.ErrColumnNotFound,
					map[string]any{"column": col})
			}
			v, err := c.ColumnValue(idx, tableDesc.PKIndex)
			if err != nil {
				return nil, err
			}
			row[i] = v.String()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func columnIndex(cols []string, name string) int {
	for i, c := range cols {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

