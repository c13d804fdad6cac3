package block

// ChannelGroupBlock is the ##CG block: records sharing one schema within a
// data group, addressed by record-id prefix.
type ChannelGroupBlock struct {
	ChannelGroupNext  Link[ChannelGroupBlock]
	ChannelFirst      Link[ChannelBlock]
	AcquisitionName   Link[TextBlock]
	AcquisitionSource Link[SourceInformationBlock]
	RecordID          uint64
	DataBytes         uint32
	InvalidationBytes uint32
}

// ReadChannelGroupBlock reads the ##CG block at offset.
func ReadChannelGroupBlock(src Source, offset uint64) (ChannelGroupBlock, error) {
	return readTypedBlockAt(src, offset, "##CG", func(rb rawBlock) (ChannelGroupBlock, error) {
		// links: channel_group_next, channel_first, acquisition_name, acquisition_source,
		// sample_reduction_first, comment
		cg := ChannelGroupBlock{
			ChannelGroupNext: Link[ChannelGroupBlock](rb.links[0]),
			ChannelFirst:     Link[ChannelBlock](rb.links[1]),
			AcquisitionName:  Link[TextBlock](rb.links[2]),
		}
		if len(rb.links) >= 4 {
			cg.AcquisitionSource = Link[SourceInformationBlock](rb.links[3])
		}
		// payload: record_id(u64), cycle_count(u64), flags(u16), path_separator(u16),
		// reserved(4), data_bytes(u32), invalidation_bytes(u32)
		p := rb.payload
		if len(p) >= 32 {
			cg.RecordID = leUint64(p[0:8])
			cg.DataBytes = leUint32(p[24:28])
			cg.InvalidationBytes = leUint32(p[28:32])
		}

		return cg, nil
	})
}
