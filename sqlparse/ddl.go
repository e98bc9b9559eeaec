package sqlparse

import (
	"regexp"
	"strings"

	"github.com/xwb1989/sqlparser"

	"sqliteql/errs"
)

// TableDescriptor is what a recovered CREATE TABLE statement yields: the
// declared column order and the index of the INTEGER PRIMARY KEY column.
type TableDescriptor struct {
	Columns []string
	PKIndex int
}

// IndexDescriptor is what a recovered CREATE INDEX statement yields.
type IndexDescriptor struct {
	Table   string
	Columns []string
}

var quotedIdent = regexp.MustCompile(`"([^"]*)"`)

// normalizeDDL adapts SQLite DDL syntax to the MySQL dialect sqlparser
// accepts: double-quoted identifiers become backtick-quoted, and
// `PRIMARY KEY AUTOINCREMENT` (SQLite order) becomes `AUTO_INCREMENT
// PRIMARY KEY` (the order sqlparser's grammar expects).
func normalizeDDL(sql string) string {
	normalized := quotedIdent.ReplaceAllString(sql, "`$1`")
	normalized = strings.ReplaceAll(normalized, "primary key autoincrement", "AUTO_INCREMENT PRIMARY KEY")
	normalized = strings.ReplaceAll(normalized, "PRIMARY KEY AUTOINCREMENT", "AUTO_INCREMENT PRIMARY KEY")
	normalized = strings.ReplaceAll(normalized, "Primary Key Autoincrement", "AUTO_INCREMENT PRIMARY KEY")
	return strings.TrimSpace(normalized)
}

// ParseCreateTable recovers column order from DDL via sqlparser, and the
// primary-key column index via a literal scan for the token "primary" in
// each column definition's token stream — an approximate heuristic
// inherited from the system this engine's grammar is modeled on (see
// DESIGN.md's open-question decision). The two passes are independent: a
// column's positional order always comes from sqlparser's parsed column
// list, never from the raw-token split, so stray commas inside a type
// like decimal(10,2) can't desynchronize the two.
func ParseCreateTable(sql string) (*TableDescriptor, error) {
	stmt, err := sqlparser.Parse(normalizeDDL(sql))
	if err != nil {
		return nil, errs.Newf("sqlparse.ParseCreateTable", errs.ParseError, err, map[string]any{"sql": sql})
	}
	ddl, ok := stmt.(*sqlparser.DDL)
	if !ok || ddl.Action != "create" || ddl.TableSpec == nil {
		return nil, errs.New("sqlparse.ParseCreateTable", errs.ParseError, errNotCreateTable)
	}

	cols := make([]string, len(ddl.TableSpec.Columns))
	for i, c := range ddl.TableSpec.Columns {
		cols[i] = c.Name.String()
	}

	pk := primaryKeyIndex(sql)
	return &TableDescriptor{Columns: cols, PKIndex: pk}, nil
}

// primaryKeyIndex scans the raw (un-normalized) column-definition list for
// the literal token "primary", case-insensitively, returning the index of
// the first column definition whose token stream contains it. Absent any
// such token, it returns 0 — not "no primary key", but the same default
// the source this grammar is modeled on falls back to.
func primaryKeyIndex(sql string) int {
	defs, err := splitColumnDefs(sql)
	if err != nil {
		return 0
	}
	for i, def := range defs {
		for _, tok := range strings.Fields(def) {
			if strings.EqualFold(stripPunct(tok), "primary") {
				return i
			}
		}
	}
	return 0
}

// splitColumnDefs extracts the comma-separated column definitions between
// the outermost parenthesis pair following the table name, respecting
// nested parens (e.g. a type like decimal(10,2)).
func splitColumnDefs(sql string) ([]string, error) {
	open := strings.IndexByte(sql, '(')
	if open < 0 {
		return nil, errs.New("sqlparse.splitColumnDefs", errs.ParseError, errNoColumnList)
	}
	depth := 0
	closeIdx := -1
	for i := open; i < len(sql); i++ {
		switch sql[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				closeIdx = i
			}
		}
		if closeIdx >= 0 {
			break
		}
	}
	if closeIdx < 0 {
		return nil, errs.New("sqlparse.splitColumnDefs", errs.ParseError, errNoColumnList)
	}

	inner := sql[open+1 : closeIdx]
	var defs []string
	depth = 0
	start := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				defs = append(defs, inner[start:i])
				start = i + 1
			}
		}
	}
	defs = append(defs, inner[start:])
	return defs, nil
}

func stripPunct(tok string) string {
	return strings.TrimFunc(tok, func(r rune) bool {
		return r == ',' || r == '(' || r == ')'
	})
}

// ParseCreateIndex recovers the indexed table and column list from a
// CREATE INDEX statement via a hand-rolled tokenizer rather than
// sqlparser, since the MySQL-dialect grammar sqlparser implements has no
// verified standalone "CREATE INDEX ... ON ... (...)" form.
func ParseCreateIndex(sql string) (*IndexDescriptor, error) {
	upper := strings.ToUpper(sql)
	onPos := strings.Index(upper, " ON ")
	if onPos < 0 {
		return nil, errs.New("sqlparse.ParseCreateIndex", errs.ParseError, errNoIndexTable)
	}
	rest := strings.TrimSpace(sql[onPos+4:])

	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return nil, errs.New("sqlparse.ParseCreateIndex", errs.ParseError, errNoColumnList)
	}
	closeIdx := strings.LastIndexByte(rest, ')')
	if closeIdx < open {
		return nil, errs.New("sqlparse.ParseCreateIndex", errs.ParseError, errNoColumnList)
	}

	table := strings.TrimSpace(rest[:open])
	table = strings.Trim(table, `"`+"`")

	var cols []string
	for _, c := range strings.Split(rest[open+1:closeIdx], ",") {
		cols = append(cols, strings.Trim(strings.TrimSpace(c), `"`+"`"))
	}

	return &IndexDescriptor{Table: strings.ToLower(table), Columns: cols}, nil
}

const (
	errNotCreateTable parseError = "not a CREATE TABLE statement"
	errNoColumnList   parseError = "could not find a column list"
	errNoIndexTable   parseError = "could not find ON <table> in CREATE INDEX"
)
