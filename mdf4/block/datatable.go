package block

import (
	"fmt"

	"github.com/mf4kit/mf4kit/errs"
)

// DataTableBlock is the ##DT block: a concatenated record stream.
// DataTableHeader reads only the common prefix (so the record decoder can
// stream the (potentially large) payload itself instead of loading it
// whole), so this type only documents the link's destination kind.
type DataTableBlock struct{}

// DataTableHeader is a ##DT block's header, with PayloadLength already
// reduced by the 24-byte common prefix per spec ("length − 24").
type DataTableHeader struct {
	PayloadOffset uint64 // absolute file offset of the first payload byte
	PayloadLength uint64
}

// ReadDataTableHeader reads a ##DT block's header at offset without loading
// its (possibly large) payload.
func ReadDataTableHeader(src Source, offset uint64) (DataTableHeader, error) {
	var hdr [headerSize]byte
	if _, err := src.ReadAt(hdr[:], int64(offset)); err != nil {
		return DataTableHeader{}, fmt.Errorf("%w: data table header at 0x%x: %v", errs.ErrTruncatedBlock, offset, err)
	}

	magic := string(hdr[0:4])
	if magic != "##DT" {
		return DataTableHeader{}, fmt.Errorf("%w: expected \"##DT\", found %q", errs.ErrMagicMismatch, magic)
	}

	length := leUint64(hdr[8:16])
	if length < headerSize {
		return DataTableHeader{}, fmt.Errorf("%w: data table at 0x%x declares length %d", errs.ErrTruncatedBlock, offset, length)
	}

	return DataTableHeader{
		PayloadOffset: offset + headerSize,
		PayloadLength: length - headerSize,
	}, nil
}

// PeekMagic reads just the 4-byte magic of the block at offset, used to
// discriminate a data group's payload root (##DL chain vs. a lone ##DT)
// without committing to either type.
func PeekMagic(src Source, offset uint64) (string, error) {
	var magic [4]byte
	if _, err := src.ReadAt(magic[:], int64(offset)); err != nil {
		return "", fmt.Errorf("%w: peeking magic at 0x%x: %v", errs.ErrTruncatedBlock, offset, err)
	}

	return string(magic[:]), nil
}
