// Package schema decodes the 100-byte database header and loads the
// in-memory object catalog from page 1.
package schema

import (
	"encoding/binary"

	"sqliteql/errs"
)

const magic = "SQLite format 3\x00"

// Header holds the file-level parameters read from the first 100 bytes.
type Header struct {
	PageSize           int
	WriteVersion       uint8
	ReadVersion        uint8
	ReservedBytes      uint8
	FileChangeCounter  uint32
	PageCount          uint32
	FirstFreelistTrunk uint32
	FreelistPageCount  uint32
	SchemaCookie       uint32
	SchemaFormat       uint32
	DefaultCacheSize   uint32
	TextEncoding       uint32
	ApplicationID      uint32
	EngineVersion      uint32
}

// ParseHeader decodes the first 100 bytes of a database file. It validates
// the magic prefix and the UTF-8-only text encoding; both violations are
// fatal at open time.
func ParseHeader(buf []byte) (*Header, error) {
	return parseHeader(buf, true)
}

// ParseHeaderLenient decodes the header without rejecting a non-UTF-8
// text_encoding field, for callers that downgrade that condition to a
// warning (Config.WithStrictEncoding(false)) instead of a hard open
// failure. The magic prefix and page-size checks still apply unconditionally.
func ParseHeaderLenient(buf []byte) (*Header, error) {
	return parseHeader(buf, false)
}

func parseHeader(buf []byte, strictEncoding bool) (*Header, error) {
	if len(buf) < 100 {
		return nil, errs.New("schema.ParseHeader", errs.Malformed, errShort)
	}
	if string(buf[0:16]) != magic {
		return nil, errs.New("schema.ParseHeader", errs.Malformed, errs.ErrBadMagic)
	}

	rawPageSize := binary.BigEndian.Uint16(buf[16:18])
	pageSize := int(rawPageSize)
	if rawPageSize == 1 {
		pageSize = 65536
	}
	if pageSize < 512 || (pageSize&(pageSize-1)) != 0 {
		return nil, errs.Newf("schema.ParseHeader", errs.Malformed, errBadPageSize,
			map[string]any{"page_size": pageSize})
	}

	h := &Header{
		PageSize:           pageSize,
		WriteVersion:       buf[18],
		ReadVersion:        buf[19],
		ReservedBytes:      buf[20],
		FileChangeCounter:  binary.BigEndian.Uint32(buf[24:28]),
		PageCount:          binary.BigEndian.Uint32(buf[28:32]),
		FirstFreelistTrunk: binary.BigEndian.Uint32(buf[32:36]),
		FreelistPageCount:  binary.BigEndian.Uint32(buf[36:40]),
		SchemaCookie:       binary.BigEndian.Uint32(buf[40:44]),
		SchemaFormat:       binary.BigEndian.Uint32(buf[44:48]),
		DefaultCacheSize:   binary.BigEndian.Uint32(buf[48:52]),
		TextEncoding:       binary.BigEndian.Uint32(buf[56:60]),
		ApplicationID:      binary.BigEndian.Uint32(buf[68:72]),
		EngineVersion:      binary.BigEndian.Uint32(buf[96:100]),
	}

	if strictEncoding && h.TextEncoding != 1 {
		return nil, errs.Newf("schema.ParseHeader", errs.Unsupported, errs.ErrBadEncoding,
			map[string]any{"text_encoding": h.TextEncoding})
	}

	return h, nil
}

type headerError string

func (e headerError) Error() string { return string(e) }

const (
	errShort       headerError = "file shorter than the 100-byte header"
	errBadPageSize headerError = "page size is not a power of two in [512, 65536]"
)
