package block

// DataGroupBlock is the ##DG block: the coarsest payload grouping, owning
// exactly one record stream (a single data table or a chain of data-list
// blocks).
type DataGroupBlock struct {
	DataGroupNext   Link[DataGroupBlock]
	ChannelGroupFirst Link[ChannelGroupBlock]
	Data            uint64 // either Link[DataListBlock] or Link[DataTableBlock]; type decided by the magic at Data
	Comment         Link[MetadataBlock]
	RecordIDSize    uint8
}

// ReadDataGroupBlock reads the ##DG block at offset.
func ReadDataGroupBlock(src Source, offset uint64) (DataGroupBlock, error) {
	return readTypedBlockAt(src, offset, "##DG", func(rb rawBlock) (DataGroupBlock, error) {
		// links: data_group_next, channel_group_first, data, comment
		db := DataGroupBlock{
			DataGroupNext:     Link[DataGroupBlock](rb.links[0]),
			ChannelGroupFirst: Link[ChannelGroupBlock](rb.links[1]),
			Data:              rb.links[2],
			Comment:           Link[MetadataBlock](rb.links[3]),
		}
		if len(rb.payload) >= 1 {
			db.RecordIDSize = rb.payload[0]
		}

		return db, nil
	})
}
