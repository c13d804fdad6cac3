package block

import (
	"fmt"

	"github.com/mf4kit/mf4kit/errs"
)

// idSize is the fixed size of the identification preamble that precedes the
// first block in an MDF4 file.
const idSize = 64

// HeaderOffset is the fixed absolute offset of the ##HD block: right after
// the identification preamble.
const HeaderOffset = idSize

// Identification is the 64-byte preamble at the start of every MDF4 file.
// VersionLong and Program are read but, per the host format, never
// interpreted.
type Identification struct {
	Header      string // 8 bytes, space-padded: "MDF     " or "UnFinMF "
	VersionLong string // 8 bytes
	Program     string // 8 bytes
	Version     uint16
}

// ReadIdentification reads and validates the identification preamble at the
// start of the file. The Header field must equal "MDF     " or "UnFinMF "
// (both 8 bytes, space-padded) or ErrNotMDF4File is returned.
func ReadIdentification(src Source) (Identification, error) {
	var buf [idSize]byte
	if _, err := src.ReadAt(buf[:], 0); err != nil {
		return Identification{}, fmt.Errorf("%w: reading identification preamble: %v", errs.ErrTruncatedBlock, err)
	}

	id := Identification{
		Header:      string(buf[0:8]),
		VersionLong: string(buf[8:16]),
		Program:     string(buf[16:24]),
		// buf[24:28] reserved, buf[28:30] version, buf[30:32] reserved, buf[32:64] fill
		Version: uint16(buf[28]) | uint16(buf[29])<<8,
	}

	if id.Header != "MDF     " && id.Header != "UnFinMF " {
		return Identification{}, errs.ErrNotMDF4File
	}

	return id, nil
}
