package schema

import (
	"strings"

	"sqliteql/errs"
	"sqliteql/page"
	"sqliteql/pager"
)

// Entry is one row of the schema table: a table, index, view or trigger.
type Entry struct {
	Type    string
	Name    string
	TblName string
	Root    uint32
	SQL     string
}

// Catalog is the in-memory object catalog built once at open.
type Catalog struct {
	Entries []Entry
}

// LoadCatalog reads page 1 and decodes its cells as sqlite_schema rows.
// The schema table is assumed to fit entirely on page 1 — see DESIGN.md.
func LoadCatalog(pgr *pager.Pager) (*Catalog, error) {
	pg, err := pgr.Get(1)
	if err != nil {
		return nil, err
	}
	if pg.Type != page.TableLeaf {
		return nil, errs.New("schema.LoadCatalog", errs.Malformed, errNotSchemaLeaf)
	}

	cat := &Catalog{Entries: make([]Entry, 0, len(pg.Cells))}
	for _, cell := range pg.Cells {
		entry, err := decodeEntry(cell)
		if err != nil {
			return nil, err
		}
		cat.Entries = append(cat.Entries, entry)
	}
	return cat, nil
}

func decodeEntry(cell page.Cell) (Entry, error) {
	rec := cell.Record
	if rec.ColumnCount() < 5 {
		return Entry{}, errs.New("schema.decodeEntry", errs.Malformed, errShortSchemaRow)
	}
	typ, err := rec.Column(0)
	if err != nil {
		return Entry{}, err
	}
	name, err := rec.Column(1)
	if err != nil {
		return Entry{}, err
	}
	tblName, err := rec.Column(2)
	if err != nil {
		return Entry{}, err
	}
	root, err := rec.Column(3)
	if err != nil {
		return Entry{}, err
	}
	sql, err := rec.Column(4)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Type:    typ.String(),
		Name:    name.String(),
		TblName: tblName.String(),
		Root:    uint32(root.Int),
		SQL:     sql.String(),
	}, nil
}

// TableNames returns the names of every "table" entry, in catalog order.
// Internal rowid-sequence bookkeeping (sqlite_sequence) is excluded when
// includeInternal is false, per the .tables dot-command.
func (c *Catalog) TableNames(includeInternal bool) []string {
	var out []string
	for _, e := range c.Entries {
		if e.Type != "table" {
			continue
		}
		if !includeInternal && e.Name == "sqlite_sequence" {
			continue
		}
		out = append(out, e.Name)
	}
	return out
}

// IndexNames returns the names of every "index" entry.
func (c *Catalog) IndexNames() []string {
	var out []string
	for _, e := range c.Entries {
		if e.Type == "index" {
			out = append(out, e.Name)
		}
	}
	return out
}

// ViewNames returns the names of every "view" entry.
func (c *Catalog) ViewNames() []string {
	var out []string
	for _, e := range c.Entries {
		if e.Type == "view" {
			out = append(out, e.Name)
		}
	}
	return out
}

// TriggerNames returns the names of every "trigger" entry.
func (c *Catalog) TriggerNames() []string {
	var out []string
	for _, e := range c.Entries {
		if e.Type == "trigger" {
			out = append(out, e.Name)
		}
	}
	return out
}

// Table looks up a table entry by case-insensitive name.
func (c *Catalog) Table(name string) (Entry, error) {
	for _, e := range c.Entries {
		if e.Type == "table" && strings.EqualFold(e.Name, name) {
			return e, nil
		}
	}
	return Entry{}, errs.New("schema.Table", errs.NotFound, errs.ErrTableNotFound)
}

// IndexesOn returns every index entry declared against tblName.
func (c *Catalog) IndexesOn(tblName string) []Entry {
	var out []Entry
	for _, e := range c.Entries {
		if e.Type == "index" && strings.EqualFold(e.TblName, tblName) {
			out = append(out, e)
		}
	}
	return out
}

type catalogError string

func (e catalogError) Error() string { return string(e) }

const (
	errNotSchemaLeaf  catalogError = "page 1 is not a table leaf page"
	errShortSchemaRow catalogError = "schema row has fewer than 5 columns"
)
