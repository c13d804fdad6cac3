package block

import (
	"fmt"

	"github.com/mf4kit/mf4kit/errs"
)

// headerSize is the fixed prefix every MDF4 block carries before its link
// table and payload: 4-byte magic, 4 reserved bytes, u64 length, u64
// link_count.
const headerSize = 24

// Link is an absolute file offset to a block of kind T. The zero value
// means "absent" per the MDF4 link convention. T carries no runtime
// representation; it only documents, at the type level, which Read* function
// a given link must be passed to.
type Link[T any] uint64

// IsAbsent reports whether the link is the null/zero sentinel.
func (l Link[T]) IsAbsent() bool { return l == 0 }

// Offset returns the link's raw file offset.
func (l Link[T]) Offset() uint64 { return uint64(l) }

// rawBlock is the untyped decode of a block's common prefix: its magic,
// declared length, link table and payload bytes. Every typed Read* function
// is built on top of this.
type rawBlock struct {
	magic   [4]byte
	length  uint64
	links   []uint64
	payload []byte
}

// readRawBlockAt reads the block at the given absolute offset from src.
func readRawBlockAt(src Source, offset uint64) (rawBlock, error) {
	var hdr [headerSize]byte
	if _, err := src.ReadAt(hdr[:], int64(offset)); err != nil {
		return rawBlock{}, fmt.Errorf("%w: block header at 0x%x: %v", errs.ErrTruncatedBlock, offset, err)
	}

	var rb rawBlock
	copy(rb.magic[:], hdr[0:4])
	rb.length = leUint64(hdr[8:16])
	linkCount := leUint64(hdr[16:24])

	if rb.length < headerSize+8*linkCount {
		return rawBlock{}, fmt.Errorf("%w: block at 0x%x declares length %d smaller than its link table",
			errs.ErrTruncatedBlock, offset, rb.length)
	}

	linkBytes := make([]byte, 8*linkCount)
	if linkCount > 0 {
		if _, err := src.ReadAt(linkBytes, int64(offset)+headerSize); err != nil {
			return rawBlock{}, fmt.Errorf("%w: block link table at 0x%x: %v", errs.ErrTruncatedBlock, offset, err)
		}
	}

	rb.links = make([]uint64, linkCount)
	for i := range rb.links {
		rb.links[i] = leUint64(linkBytes[i*8 : i*8+8])
	}

	payloadLen := rb.length - headerSize - 8*linkCount
	rb.payload = make([]byte, payloadLen)
	if payloadLen > 0 {
		payloadOff := int64(offset) + headerSize + int64(8*linkCount)
		if _, err := src.ReadAt(rb.payload, payloadOff); err != nil {
			return rawBlock{}, fmt.Errorf("%w: block payload at 0x%x: %v", errs.ErrTruncatedBlock, offset, err)
		}
	}

	return rb, nil
}

// expectMagic validates a block's magic against the 4-byte ASCII tag
// expected at a given call site (e.g. "##CG").
func expectMagic(rb rawBlock, want string) error {
	if string(rb.magic[:]) != want {
		return fmt.Errorf("%w: expected %q, found %q", errs.ErrMagicMismatch, want, rb.magic[:])
	}

	return nil
}

// readTypedBlockAt reads the raw block at offset, validates its magic, and
// decodes the payload/links with decode.
func readTypedBlockAt[T any](src Source, offset uint64, magic string, decode func(rawBlock) (T, error)) (T, error) {
	var zero T

	rb, err := readRawBlockAt(src, offset)
	if err != nil {
		return zero, err
	}

	if err := expectMagic(rb, magic); err != nil {
		return zero, err
	}

	return decode(rb)
}
