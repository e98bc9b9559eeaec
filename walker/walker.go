// Package walker implements the tree-walking query planner: full scan,
// primary-key probe, secondary-index probe, and filtered-scan fallback
// over a table (and, for index probes, an index) b-tree.
package walker

import (
	"strconv"
	"strings"

	"sqliteql/errs"
	"sqliteql/page"
	"sqliteql/pager"
)

// CellFilter drives plan selection. A nil filter means full scan. Value is
// compared case-insensitively against rendered column text, matching the
// engine's string-rendering comparison model (see DESIGN.md's open
// question on index-key comparison).
type CellFilter struct {
	IndexRoot int // 0 when no index is available on ColIndex
	ColIndex  int
	Value     string
	PKIndex   int
}

// Walk returns the TableLeaf cells matching filter (or every leaf cell, in
// key order, when filter is nil).
func Walk(pgr *pager.Pager, tableRoot int, filter *CellFilter) ([]page.Cell, error) {
	if filter == nil {
		return fullScan(pgr, tableRoot)
	}
	if filter.ColIndex == filter.PKIndex {
		target, err := strconv.ParseInt(filter.Value, 10, 64)
		if err != nil {
			// A non-numeric value can never match a row-id; the result is
			// simply empty, not an error.
			return nil, nil
		}
		return pkProbe(pgr, tableRoot, target)
	}
	if filter.IndexRoot != 0 {
		return indexAssistedProbe(pgr, tableRoot, filter)
	}
	return filteredScan(pgr, tableRoot, filter)
}

// fullScan visits every TableLeaf cell in key-ascending order.
func fullScan(pgr *pager.Pager, pageNum int) ([]page.Cell, error) {
	pg, err := pgr.Get(pageNum)
	if err != nil {
		return nil, err
	}
	switch pg.Type {
	case page.TableLeaf:
		return pg.Cells, nil
	case page.TableInterior:
		var out []page.Cell
		for _, c := range pg.Cells {
			sub, err := fullScan(pgr, int(c.LeftChild))
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		sub, err := fullScan(pgr, int(pg.RightMost))
		if err != nil {
			return nil, err
		}
		return append(out, sub...), nil
	default:
		return nil, errs.New("walker.fullScan", errs.Unsupported, errs.ErrInvalidPageType)
	}
}

// pkProbe descends the table b-tree toward row-id target, following the
// contract in §4.8: at each interior page, descend into the left child of
// the first cell whose separator row-id is >= target, continuing through
// ties so duplicate-key subtrees are all visited, and falling through to
// the rightmost pointer when no separator reaches the target.
func pkProbe(pgr *pager.Pager, pageNum int, target int64) ([]page.Cell, error) {
	pg, err := pgr.Get(pageNum)
	if err != nil {
		return nil, err
	}
	switch pg.Type {
	case page.TableLeaf:
		var out []page.Cell
		for _, c := range pg.Cells {
			if c.RowID == target {
				out = append(out, c)
			}
		}
		return out, nil
	case page.TableInterior:
		var out []page.Cell
		broke := false
		lastRowID := int64(0)
		sawCell := false
		for _, c := range pg.Cells {
			sawCell = true
			lastRowID = c.RowID
			if c.RowID >= target {
				sub, err := pkProbe(pgr, int(c.LeftChild), target)
				if err != nil {
					return nil, err
				}
				out = append(out, sub...)
			}
			if c.RowID > target {
				broke = true
				break
			}
		}
		if !broke && (!sawCell || lastRowID < target) {
			sub, err := pkProbe(pgr, int(pg.RightMost), target)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil
	default:
		return nil, errs.New("walker.pkProbe", errs.Unsupported, errs.ErrInvalidPageType)
	}
}

// filteredScan performs a full scan, then keeps leaves whose filter column
// renders equal (case-insensitive) to filter.Value.
func filteredScan(pgr *pager.Pager, tableRoot int, filter *CellFilter) ([]page.Cell, error) {
	cells, err := fullScan(pgr, tableRoot)
	if err != nil {
		return nil, err
	}
	var out []page.Cell
	for _, c := range cells {
		v, err := c.ColumnValue(filter.ColIndex, filter.PKIndex)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(v.String(), filter.Value) {
			out = append(out, c)
		}
	}
	return out, nil
}

// indexAssistedProbe walks the index b-tree to collect matching row-ids,
// then issues one primary-key probe per row-id against the table tree. The
// page cache is enabled for the duration of this composite walk so shared
// interior pages aren't re-read, and disabled again afterward so the cache
// never outlives one query.
func indexAssistedProbe(pgr *pager.Pager, tableRoot int, filter *CellFilter) ([]page.Cell, error) {
	pgr.EnableCache(true)
	defer pgr.EnableCache(false)

	rowIDs, err := indexWalk(pgr, filter.IndexRoot, strings.ToLower(filter.Value))
	if err != nil {
		return nil, err
	}

	var out []page.Cell
	for _, rid := range rowIDs {
		cells, err := pkProbe(pgr, tableRoot, rid)
		if err != nil {
			return nil, err
		}
		out = append(out, cells...)
	}
	return out, nil
}

// indexWalk follows §4.8's IndexInterior/IndexLeaf contract: an interior
// cell whose key equals the target emits its row-id directly (same action
// as a leaf match), keys >= target recurse into the left child, and
// scanning stops at the first key strictly greater than the target.
func indexWalk(pgr *pager.Pager, pageNum int, value string) ([]int64, error) {
	pg, err := pgr.Get(pageNum)
	if err != nil {
		return nil, err
	}
	switch pg.Type {
	case page.IndexLeaf:
		var out []int64
		for _, c := range pg.Cells {
			key, rowID, err := indexKeyAndRowID(c)
			if err != nil {
				return nil, err
			}
			if strings.ToLower(key) == value {
				out = append(out, rowID)
			}
		}
		return out, nil
	case page.IndexInterior:
		var out []int64
		broke := false
		for _, c := range pg.Cells {
			key, rowID, err := indexKeyAndRowID(c)
			if err != nil {
				return nil, err
			}
			lk := strings.ToLower(key)
			if lk == value {
				out = append(out, rowID)
			}
			if lk >= value {
				sub, err := indexWalk(pgr, int(c.LeftChild), value)
				if err != nil {
					return nil, err
				}
				out = append(out, sub...)
			}
			if lk > value {
				broke = true
				break
			}
		}
		if !broke {
			sub, err := indexWalk(pgr, int(pg.RightMost), value)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil
	default:
		return nil, errs.New("walker.indexWalk", errs.Unsupported, errs.ErrInvalidPageType)
	}
}

// indexKeyAndRowID reads an index cell's record as (key, row-id): the
// first column is the indexed value, the second is the row-id it points
// to, per the IndexLeaf/IndexInterior record shape in §3.
func indexKeyAndRowID(c page.Cell) (string, int64, error) {
	key, err := c.Record.Column(0)
	if err != nil {
		return "", 0, err
	}
	rowID, err := c.Record.Column(1)
	if err != nil {
		return "", 0, err
	}
	return key.String(), rowID.Int, nil
}
