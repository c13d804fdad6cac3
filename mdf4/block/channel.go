package block

// ChannelBlock is the ##CN block: one scalar time-series column within a
// channel group's record layout.
type ChannelBlock struct {
	ChannelNext Link[ChannelBlock]
	Name        Link[TextBlock]
	Conversion  Link[ChannelConversionBlock]
	Unit        Link[TextBlock]
	Comment     Link[TextBlock]

	ChannelType uint8 // 1 == variable-length, rejected by this library
	DataType    DataType
	BitOffset   uint8 // 0-7
	ByteOffset  uint32
	BitCount    uint32
}

// ReadChannelBlock reads the ##CN block at offset.
func ReadChannelBlock(src Source, offset uint64) (ChannelBlock, error) {
	return readTypedBlockAt(src, offset, "##CN", func(rb rawBlock) (ChannelBlock, error) {
		// links: channel_next, component, tx_name, si_source, conversion, data, unit, comment
		cb := ChannelBlock{
			ChannelNext: Link[ChannelBlock](rb.links[0]),
			Name:        Link[TextBlock](rb.links[2]),
			Conversion:  Link[ChannelConversionBlock](rb.links[4]),
			Unit:        Link[TextBlock](rb.links[6]),
			Comment:     Link[TextBlock](rb.links[7]),
		}
		// payload: channel_type(u8), sync_type(u8), data_type(u8), bit_offset(u8),
		// byte_offset(u32), bit_count(u32), ...
		p := rb.payload
		if len(p) >= 12 {
			cb.ChannelType = p[0]
			cb.DataType = DataType(p[2])
			cb.BitOffset = p[3]
			cb.ByteOffset = leUint32(p[4:8])
			cb.BitCount = leUint32(p[8:12])
		}

		return cb, nil
	})
}
