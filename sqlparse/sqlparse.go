// Package sqlparse is the SQL front-end. It wraps xwb1989/sqlparser for
// queries issued by a caller and for CREATE TABLE DDL recovered from the
// schema catalog; CREATE INDEX DDL is read by a small hand-rolled
// tokenizer instead (see ParseCreateIndex).
package sqlparse

import (
	"strings"

	"github.com/xwb1989/sqlparser"

	"sqliteql/errs"
)

// Kind is the command a query compiles to.
type Kind int

const (
	Select Kind = iota
	Count
)

// Predicate is a single equality predicate on one column, the shape the
// tree walker's CellFilter can execute directly.
type Predicate struct {
	Column string
	Value  string
}

// Command is the compiled form of a user-issued SELECT or SELECT COUNT(*)
// statement.
type Command struct {
	Kind       Kind
	Table      string
	AllColumns bool     // true for SELECT *
	Columns    []string // explicit projection list, declared order
	CountArg   string   // COUNT(*) -> "*", COUNT(col) -> "col"

	// Predicate is set when the WHERE clause is exactly one equality test;
	// the walker's fast paths (PK probe, index probe) require this shape.
	Predicate *Predicate

	// WhereExpr is the raw parsed WHERE expression, present whenever a
	// WHERE clause exists at all (including compound AND/OR forms that
	// Predicate cannot represent). The engine falls back to a full scan
	// filtered by MatchesWhere when Predicate is nil but WhereExpr isn't.
	WhereExpr sqlparser.Expr
}

// Parse parses a single SQL statement into a Command. Only SELECT (with or
// without COUNT) is accepted here; CREATE statements only ever appear as
// recovered schema DDL and are parsed via ParseCreateTable/ParseCreateIndex.
func Parse(raw string) (*Command, error) {
	stmt, err := sqlparser.Parse(raw)
	if err != nil {
		return nil, errs.New("sqlparse.Parse", errs.ParseError, err)
	}

	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, errs.Newf("sqlparse.Parse", errs.ParseError, errUnsupportedStatement,
			map[string]any{"sql": raw})
	}

	table, err := tableName(sel)
	if err != nil {
		return nil, err
	}

	cmd := &Command{Table: strings.ToLower(table)}

	if sel.Where != nil {
		cmd.WhereExpr = sel.Where.Expr
		cmd.Predicate = extractPredicate(sel.Where.Expr)
	}

	for _, expr := range sel.SelectExprs {
		switch e := expr.(type) {
		case *sqlparser.StarExpr:
			cmd.Kind = Select
			cmd.AllColumns = true
		case *sqlparser.AliasedExpr:
			switch inner := e.Expr.(type) {
			case *sqlparser.FuncExpr:
				if !strings.EqualFold(inner.Name.String(), "count") {
					return nil, errs.Newf("sqlparse.Parse", errs.ParseError, errUnsupportedFunc,
						map[string]any{"func": inner.Name.String()})
				}
				cmd.Kind = Count
				cmd.CountArg = countArg(inner)
			case *sqlparser.ColName:
				cmd.Kind = Select
				cmd.Columns = append(cmd.Columns, inner.Name.String())
			default:
				return nil, errs.New("sqlparse.Parse", errs.ParseError, errUnsupportedExpr)
			}
		default:
			return nil, errs.New("sqlparse.Parse", errs.ParseError, errUnsupportedExpr)
		}
	}

	return cmd, nil
}

func countArg(f *sqlparser.FuncExpr) string {
	if len(f.Exprs) == 0 {
		return "*"
	}
	if aliased, ok := f.Exprs[0].(*sqlparser.AliasedExpr); ok {
		if col, ok := aliased.Expr.(*sqlparser.ColName); ok {
			return col.Name.String()
		}
	}
	return "*"
}

func tableName(sel *sqlparser.Select) (string, error) {
	if len(sel.From) == 0 {
		return "", errs.New("sqlparse.tableName", errs.ParseError, errNoTable)
	}
	aliased, ok := sel.From[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return "", errs.New("sqlparse.tableName", errs.ParseError, errNoTable)
	}
	name, ok := aliased.Expr.(sqlparser.TableName)
	if !ok {
		return "", errs.New("sqlparse.tableName", errs.ParseError, errNoTable)
	}
	return name.Name.String(), nil
}

// extractPredicate recognizes the single shape the walker can execute
// directly: `ident = value`. Anything else (AND/OR/other operators) is
// left for the compound-WHERE fallback.
func extractPredicate(expr sqlparser.Expr) *Predicate {
	cmp, ok := expr.(*sqlparser.ComparisonExpr)
	if !ok || cmp.Operator != sqlparser.EqualStr {
		return nil
	}
	col, ok := cmp.Left.(*sqlparser.ColName)
	if !ok {
		return nil
	}
	val, ok := sqlValue(cmp.Right)
	if !ok {
		return nil
	}
	return &Predicate{Column: strings.ToLower(col.Name.String()), Value: val}
}

func sqlValue(expr sqlparser.Expr) (string, bool) {
	v, ok := expr.(*sqlparser.SQLVal)
	if !ok {
		return "", false
	}
	return string(v.Val), true
}

type parseError string

func (e parseError) Error() string { return string(e) }

const (
	errUnsupportedStatement parseError = "only SELECT statements are accepted"
	errUnsupportedFunc      parseError = "unsupported function in projection"
	errUnsupportedExpr      parseError = "unsupported expression in projection"
	errNoTable              parseError = "could not resolve a single table name"
)
