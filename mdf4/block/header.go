package block

import (
	"fmt"

	"github.com/mf4kit/mf4kit/errs"
)

// HeaderBlock is the ##HD block: the file's single entry point, reached
// immediately after the identification preamble. Only the fields the core
// consumes are decoded; channel_hierarchy, attachment and event links are
// recognized but not surfaced. FileHistoryFirst is exposed so callers can
// walk the ##FH chain for recording timestamps.
type HeaderBlock struct {
	FirstDataGroup   Link[DataGroupBlock]
	FileHistoryFirst Link[FileHistoryBlock]
	Comment          Link[MetadataBlock]
	StartTimeNs      uint64 // nanoseconds since Unix epoch, not interpreted
}

// ReadHeaderBlock reads the ##HD block at offset.
func ReadHeaderBlock(src Source, offset uint64) (HeaderBlock, error) {
	return readTypedBlockAt(src, offset, "##HD", func(rb rawBlock) (HeaderBlock, error) {
		// links: first_data_group, file_history, channel_hierarchy, attachment, event, comment
		if len(rb.links) < 6 {
			return HeaderBlock{}, fmt.Errorf("%w: ##HD declares %d links, want at least 6", errs.ErrTruncatedBlock, len(rb.links))
		}

		hb := HeaderBlock{
			FirstDataGroup:   Link[DataGroupBlock](rb.links[0]),
			FileHistoryFirst: Link[FileHistoryBlock](rb.links[1]),
			Comment:          Link[MetadataBlock](rb.links[5]),
		}
		// payload: start_time(u64), time_zone(u16), dst_offset(u16), time_flags(u8),
		// time_quality(u8), flags(u8), reserved(u8), start_angle(u64), start_distance(u64)
		if len(rb.payload) >= 8 {
			hb.StartTimeNs = leUint64(rb.payload[0:8])
		}

		return hb, nil
	})
}
