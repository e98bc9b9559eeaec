package sqlparse

import (
	"strings"

	"github.com/xwb1989/sqlparser"

	"sqliteql/errs"
)

// Lookup resolves a column name to its rendered value for the row under
// test, returning ok=false if the column does not exist.
type Lookup func(column string) (value string, ok bool)

// MatchesWhere evaluates a compound WHERE expression (AND/OR/parentheses
// over equality and ordering comparisons) against one row, used as the
// filtered-scan fallback when a WHERE clause is not a single equality
// predicate the walker's CellFilter can execute directly.
func MatchesWhere(expr sqlparser.Expr, lookup Lookup) (bool, error) {
	switch e := expr.(type) {
	case *sqlparser.ComparisonExpr:
		return evalComparison(e, lookup)
	case *sqlparser.AndExpr:
		left, err := MatchesWhere(e.Left, lookup)
		if err != nil || !left {
			return false, err
		}
		return MatchesWhere(e.Right, lookup)
	case *sqlparser.OrExpr:
		left, err := MatchesWhere(e.Left, lookup)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return MatchesWhere(e.Right, lookup)
	case *sqlparser.ParenExpr:
		return MatchesWhere(e.Expr, lookup)
	default:
		return false, errs.New("sqlparse.MatchesWhere", errs.ParseError, errUnsupportedWhere)
	}
}

func evalComparison(cmp *sqlparser.ComparisonExpr, lookup Lookup) (bool, error) {
	col, ok := cmp.Left.(*sqlparser.ColName)
	if !ok {
		return false, errs.New("sqlparse.evalComparison", errs.ParseError, errUnsupportedWhere)
	}
	rowValue, ok := lookup(col.Name.String())
	if !ok {
		return false, errs.Newf("sqlparse.evalComparison", errs.NotFound, errs.ErrColumnNotFound,
			map[string]any{"column": col.Name.String()})
	}
	want, ok := sqlValue(cmp.Right)
	if !ok {
		return false, errs.New("sqlparse.evalComparison", errs.ParseError, errUnsupportedWhere)
	}

	switch cmp.Operator {
	case sqlparser.EqualStr:
		return strings.EqualFold(rowValue, want), nil
	case sqlparser.NotEqualStr:
		return !strings.EqualFold(rowValue, want), nil
	case sqlparser.LessThanStr:
		return rowValue < want, nil
	case sqlparser.LessEqualStr:
		return rowValue <= want, nil
	case sqlparser.GreaterThanStr:
		return rowValue > want, nil
	case sqlparser.GreaterEqualStr:
		return rowValue >= want, nil
	default:
		return false, errs.New("sqlparse.evalComparison", errs.ParseError, errUnsupportedWhere)
	}
}

const errUnsupportedWhere parseError = "unsupported WHERE expression"
