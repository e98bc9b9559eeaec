// Package pager translates 1-based page numbers into decoded pages,
// reading from a random-access byte source and optionally memoizing pages
// for the lifetime of one query.
package pager

import (
	"io"
	"log/slog"

	"sqliteql/errs"
	"sqliteql/page"
)

// Stats reports page-cache behavior, used by tests that assert a query
// touches each page at most once and by debug logging.
type Stats struct {
	Hits   int
	Misses int
}

// Pager reads and decodes pages on demand.
type Pager struct {
	src      io.ReaderAt
	pageSize int
	nPages   int
	logger   *slog.Logger

	cacheOn bool
	cache   map[int]*page.Page
	stats   Stats
}

// New builds a Pager over src. pageSize and nPages come from the decoded
// file header.
func New(src io.ReaderAt, pageSize, nPages int, logger *slog.Logger) *Pager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pager{src: src, pageSize: pageSize, nPages: nPages, logger: logger}
}

// EnableCache turns the per-query page cache on or off. The walker enables
// it for the duration of an index-assisted composite walk and disables it
// again once that walk completes, per the engine's single-query caching
// model.
func (p *Pager) EnableCache(on bool) {
	p.cacheOn = on
	if on && p.cache == nil {
		p.cache = make(map[int]*page.Page)
	}
	if !on {
		p.cache = nil
	}
}

// Stats returns the current hit/miss counters.
func (p *Pager) Stats() Stats { return p.stats }

// Get reads and decodes page n (1-based). Page 1 is read starting at file
// offset 0 but its usable header begins at byte 100, handled by page.Decode.
func (p *Pager) Get(n int) (*page.Page, error) {
	if n < 1 || n > p.nPages {
		return nil, errs.Newf("pager.Get", errs.OutOfRange, errBadPageNumber,
			map[string]any{"page": n, "n_pages": p.nPages})
	}

	if p.cacheOn {
		if cached, ok := p.cache[n]; ok {
			p.stats.Hits++
			p.logger.Debug("pager cache hit", "page", n)
			return cached, nil
		}
	}
	p.stats.Misses++

	buf := make([]byte, p.pageSize)
	offset := int64(n-1) * int64(p.pageSize)
	if _, err := p.src.ReadAt(buf, offset); err != nil {
		return nil, errs.Newf("pager.Get", errs.Io, err, map[string]any{"page": n, "offset": offset})
	}

	pg, err := page.Decode(buf, n)
	if err != nil {
		return nil, err
	}

	if p.cacheOn {
		p.cache[n] = pg
	}
	p.logger.Debug("pager cache miss", "page", n)
	return pg, nil
}

type pagerError string

func (e pagerError) Error() string { return string(e) }

const errBadPageNumber pagerError = "page number out of range"
