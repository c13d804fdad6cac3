package record

import (
	"fmt"

	"github.com/mf4kit/mf4kit/errs"
	"github.com/mf4kit/mf4kit/mdf4/block"
)

// Channel is one decoded channel: its source block, name and unit (resolved
// for convenience), and the Column its decoder fed.
type Channel struct {
	Block  block.ChannelBlock
	Name   string
	Unit   string
	Column *Column
}

// Group is one channel group's decode state: its record id, per-record byte
// layout, and the channels it demultiplexes into.
type Group struct {
	Source            block.ChannelGroupBlock
	Name              string
	RecordID          uint64
	DataBytes         uint32
	InvalidationBytes uint32

	Channels []*Channel
	decoders []channelDecoder // parallel to a subset of Channels, by column
}

// buildGroups walks a data group's channel-group chain, compiling a
// channelDecoder and empty Column for every supported channel. Channels
// whose data_type this library does not decode are omitted from Channels
// but do not affect the record's byte layout.
func buildGroups(src block.Source, dg block.DataGroupBlock) (map[uint64]*Group, error) {
	groups := make(map[uint64]*Group)

	for cg, err := range block.WalkChannelGroups(src, dg.ChannelGroupFirst) {
		if err != nil {
			return nil, err
		}

		if dg.RecordIDSize < 8 && cg.RecordID >= uint64(1)<<(8*uint(dg.RecordIDSize)) {
			return nil, fmt.Errorf("%w: record_id %d with record_id_size %d", errs.ErrRecordIDOutOfRange, cg.RecordID, dg.RecordIDSize)
		}

		if _, dup := groups[cg.RecordID]; dup {
			return nil, fmt.Errorf("%w: record_id %d", errs.ErrDuplicateRecordID, cg.RecordID)
		}

		name, err := block.GetText(src, cg.AcquisitionName)
		if err != nil {
			return nil, err
		}

		g := &Group{
			Source:            cg,
			Name:              name,
			RecordID:          cg.RecordID,
			DataBytes:         cg.DataBytes,
			InvalidationBytes: cg.InvalidationBytes,
		}

		for ch, err := range block.WalkChannels(src, cg.ChannelFirst) {
			if err != nil {
				return nil, err
			}

			dec, col, ok, err := compileChannelDecoder(ch)
			if err != nil {
				return nil, err
			}

			if !ok {
				continue
			}

			chName, err := block.GetText(src, ch.Name)
			if err != nil {
				return nil, err
			}

			unit, err := block.GetText(src, ch.Unit)
			if err != nil {
				return nil, err
			}

			g.Channels = append(g.Channels, &Channel{Block: ch, Name: chName, Unit: unit, Column: col})
			g.decoders = append(g.decoders, dec)
		}

		groups[cg.RecordID] = g
	}

	return groups, nil
}

// decodeRecord applies every compiled channel decoder to one record's data
// bytes (already sliced to DataBytes length).
func (g *Group) decodeRecord(data []byte) {
	for i, dec := range g.decoders {
		end := dec.byteOffset + dec.byteLen
		if end > len(data) {
			continue
		}

		dec.decode(data[dec.byteOffset:end], g.Channels[i].Column)
	}
}
