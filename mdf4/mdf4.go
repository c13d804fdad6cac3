// Package mdf4 opens an ASAM MDF4 measurement file and exposes its channel
// groups and channels, with each channel's conversion compiled to a
// postfix Expression, and decodes every data group's record stream into
// typed columns.
package mdf4

import (
	"time"

	"github.com/mf4kit/mf4kit/internal/options"
	"github.com/mf4kit/mf4kit/mdf4/block"
	"github.com/mf4kit/mf4kit/mdf4/conversion"
	"github.com/mf4kit/mf4kit/mdf4/record"
)

// config holds the state an OpenOption may mutate before the file is
// opened.
type config struct {
	mmap bool
}

// OpenOption configures Open.
type OpenOption = options.Option[*config]

// WithMmap backs the file with a read-only memory mapping instead of
// per-read syscalls.
func WithMmap() OpenOption {
	return options.NoError[*config](func(c *config) { c.mmap = true })
}

// File is an open MDF4 measurement file.
type File struct {
	src    block.Source
	ident  block.Identification
	header block.HeaderBlock
}

// Open opens path, validates the identification preamble and reads the
// header block.
func Open(path string, opts ...OpenOption) (*File, error) {
	cfg := &config{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	open := block.OpenFile
	if cfg.mmap {
		open = block.OpenMmap
	}

	src, err := open(path)
	if err != nil {
		return nil, err
	}

	ident, err := block.ReadIdentification(src)
	if err != nil {
		src.Close()

		return nil, err
	}

	header, err := block.ReadHeaderBlock(src, block.HeaderOffset)
	if err != nil {
		src.Close()

		return nil, err
	}

	return &File{src: src, ident: ident, header: header}, nil
}

// Close releases the file's backing Source.
func (f *File) Close() error { return f.src.Close() }

// Version reports the file's format version (e.g. 420 for 4.20).
func (f *File) Version() uint16 { return f.ident.Version }

// Comment resolves the header's comment (##MD), or "" if absent.
func (f *File) Comment() (string, error) {
	return block.GetMetadata(f.src, f.header.Comment)
}

// StartTime resolves the header's start_time_ns as a UTC time.
func (f *File) StartTime() time.Time {
	return time.Unix(0, int64(f.header.StartTimeNs)).UTC()
}

// FileHistory returns the header's ##FH chain as UTC timestamps, most
// recent modification first (the chain order stored on disk).
func (f *File) FileHistory() ([]time.Time, error) {
	var out []time.Time

	for fh, err := range block.WalkFileHistory(f.src, f.header.FileHistoryFirst) {
		if err != nil {
			return nil, err
		}

		out = append(out, time.Unix(0, int64(fh.TimeNs)).UTC())
	}

	return out, nil
}

// Channel is one channel within a ChannelGroup: its name, unit, raw data
// type, and compiled conversion expression.
type Channel struct {
	Name       string
	Unit       string
	DataType   block.DataType
	Conversion conversion.Expression
}

// ChannelGroup is one channel group's ordered channel list.
type ChannelGroup struct {
	Name       string
	SourceType uint8 // ##SI source_type, 0 if the group has no acquisition source
	BusType    uint8 // ##SI bus_type
	Channels   []Channel
}

// Channels walks every data group and channel group, returning each
// channel's name, unit and compiled conversion expression, without decoding
// any sample data.
func (f *File) Channels() ([][]ChannelGroup, error) {
	var groups [][]ChannelGroup

	for dg, err := range block.WalkDataGroups(f.src, f.header.FirstDataGroup) {
		if err != nil {
			return nil, err
		}

		dgGroups, err := f.channelGroupsOf(dg)
		if err != nil {
			return nil, err
		}

		groups = append(groups, dgGroups)
	}

	return groups, nil
}

func (f *File) channelGroupsOf(dg block.DataGroupBlock) ([]ChannelGroup, error) {
	var out []ChannelGroup

	for cg, err := range block.WalkChannelGroups(f.src, dg.ChannelGroupFirst) {
		if err != nil {
			return nil, err
		}

		name, err := block.GetText(f.src, cg.AcquisitionName)
		if err != nil {
			return nil, err
		}

		si, err := block.GetSourceInformation(f.src, cg.AcquisitionSource)
		if err != nil {
			return nil, err
		}

		group := ChannelGroup{Name: name, SourceType: si.SourceType, BusType: si.BusType}

		for ch, err := range block.WalkChannels(f.src, cg.ChannelFirst) {
			if err != nil {
				return nil, err
			}

			chName, err := block.GetText(f.src, ch.Name)
			if err != nil {
				return nil, err
			}

			unit, err := block.GetText(f.src, ch.Unit)
			if err != nil {
				return nil, err
			}

			expr, err := conversion.Compile(f.src, ch.Conversion)
			if err != nil {
				return nil, err
			}

			group.Channels = append(group.Channels, Channel{
				Name:       chName,
				Unit:       unit,
				DataType:   ch.DataType,
				Conversion: expr,
			})
		}

		out = append(out, group)
	}

	return out, nil
}

// DecodeAllData walks every data group and decodes its full record stream
// into typed columns, in data-group chain order.
func (f *File) DecodeAllData() ([]*record.DataGroup, error) {
	var out []*record.DataGroup

	for dg, err := range block.WalkDataGroups(f.src, f.header.FirstDataGroup) {
		if err != nil {
			return nil, err
		}

		decoded, err := record.DecodeDataGroup(f.src, dg)
		if err != nil {
			return nil, err
		}

		out = append(out, decoded)
	}

	return out, nil
}
