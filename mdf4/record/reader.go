package record

import (
	"fmt"
	"io"

	"github.com/mf4kit/mf4kit/errs"
	"github.com/mf4kit/mf4kit/internal/pool"
	"github.com/mf4kit/mf4kit/mdf4/block"
)

// DataGroup is one data group's fully decoded record stream.
type DataGroup struct {
	Source  block.DataGroupBlock
	Groups  []*Group // in channel-group chain order
	byGroup map[uint64]*Group
}

// DecodeDataGroup decodes every record reachable from dg's data link,
// demultiplexing by record id into each channel group's typed columns.
func DecodeDataGroup(src block.Source, dg block.DataGroupBlock) (*DataGroup, error) {
	if dg.RecordIDSize != 0 && dg.RecordIDSize != 1 && dg.RecordIDSize != 2 && dg.RecordIDSize != 4 && dg.RecordIDSize != 8 {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidRecordIDSize, dg.RecordIDSize)
	}

	byGroup, err := buildGroups(src, dg)
	if err != nil {
		return nil, err
	}

	ordered := make([]*Group, 0, len(byGroup))
	for cg, err := range block.WalkChannelGroups(src, dg.ChannelGroupFirst) {
		if err != nil {
			return nil, err
		}

		ordered = append(ordered, byGroup[cg.RecordID])
	}

	result := &DataGroup{Source: dg, Groups: ordered, byGroup: byGroup}

	if dg.Data == 0 {
		return result, nil
	}

	magic, err := block.PeekMagic(src, dg.Data)
	if err != nil {
		return nil, err
	}

	switch magic {
	case "##DT":
		hdr, err := block.ReadDataTableHeader(src, dg.Data)
		if err != nil {
			return nil, err
		}

		if err := result.decodeTable(src, hdr); err != nil {
			return nil, err
		}

	case "##DL":
		for dl, err := range block.WalkDataLists(src, block.Link[block.DataListBlock](dg.Data)) {
			if err != nil {
				return nil, err
			}

			for _, tableLink := range dl.Data {
				hdr, err := block.ReadDataTableHeader(src, tableLink.Offset())
				if err != nil {
					return nil, err
				}

				if err := result.decodeTable(src, hdr); err != nil {
					return nil, err
				}
			}
		}

	default:
		return nil, fmt.Errorf("%w: data group's data link has unexpected magic %q", errs.ErrMagicMismatch, magic)
	}

	return result, nil
}

// decodeTable streams one ##DT block's payload through a fixed buffer,
// demultiplexing and decoding each record in place.
func (d *DataGroup) decodeTable(src block.Source, hdr block.DataTableHeader) error {
	idSize := int(d.Source.RecordIDSize)

	bb := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(bb)

	bb.SetLength(bb.Cap())
	buf := bb.Bytes()

	n := 0 // valid bytes at buf[0:n]
	pos := hdr.PayloadOffset
	end := hdr.PayloadOffset + hdr.PayloadLength

	for {
		if n < len(buf) && pos < end {
			want := len(buf) - n
			if avail := end - pos; uint64(want) > avail {
				want = int(avail)
			}

			read, err := src.ReadAt(buf[n:n+want], int64(pos))
			if err != nil && err != io.EOF && read == 0 {
				return fmt.Errorf("%w: streaming data table payload: %v", errs.ErrTruncatedBlock, err)
			}

			pos += uint64(read)
			n += read
		}

		consumed := 0

		for {
			avail := n - consumed
			if avail < idSize {
				break
			}

			recID := readRecordID(buf[consumed:consumed+idSize], idSize)

			group := d.byGroup[recID]
			if group == nil {
				return fmt.Errorf("%w: %d", errs.ErrUnknownRecordID, recID)
			}

			need := idSize + int(group.DataBytes) + int(group.InvalidationBytes)
			if avail < need {
				break
			}

			dataStart := consumed + idSize
			group.decodeRecord(buf[dataStart : dataStart+int(group.DataBytes)])
			consumed += need
		}

		copy(buf, buf[consumed:n])
		n -= consumed

		if pos >= end {
			// Either fully drained, or what remains is too short to form
			// another record; either way there is nothing more to read.
			return nil
		}
	}
}

func readRecordID(b []byte, size int) uint64 {
	var id uint64
	for i := 0; i < size; i++ {
		id |= uint64(b[i]) << (8 * uint(i))
	}

	return id
}
