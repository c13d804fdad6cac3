package block

// SourceInformationBlock is the ##SI block: the acquisition source of a
// channel group, e.g. a CAN bus channel vs. a simulation or ECU log.
type SourceInformationBlock struct {
	SourceType uint8
	BusType    uint8
}

// ReadSourceInformationBlock reads the ##SI block at offset.
func ReadSourceInformationBlock(src Source, offset uint64) (SourceInformationBlock, error) {
	return readTypedBlockAt(src, offset, "##SI", func(rb rawBlock) (SourceInformationBlock, error) {
		si := SourceInformationBlock{}
		if len(rb.payload) >= 2 {
			si.SourceType = rb.payload[0]
			si.BusType = rb.payload[1]
		}

		return si, nil
	})
}

// GetSourceInformation resolves a channel group's acquisition-source link,
// returning the zero SourceInformationBlock for an absent link.
func GetSourceInformation(src Source, link Link[SourceInformationBlock]) (SourceInformationBlock, error) {
	if link.IsAbsent() {
		return SourceInformationBlock{}, nil
	}

	return ReadSourceInformationBlock(src, link.Offset())
}

// FileHistoryBlock is the ##FH block, chained via FileHistoryNext off the
// header's FileHistoryFirst link: one entry per tool that has modified the
// file, recording when.
type FileHistoryBlock struct {
	FileHistoryNext Link[FileHistoryBlock]
	TimeNs          uint64
}

// ReadFileHistoryBlock reads the ##FH block at offset.
func ReadFileHistoryBlock(src Source, offset uint64) (FileHistoryBlock, error) {
	return readTypedBlockAt(src, offset, "##FH", func(rb rawBlock) (FileHistoryBlock, error) {
		fh := FileHistoryBlock{}
		if len(rb.links) >= 1 {
			fh.FileHistoryNext = Link[FileHistoryBlock](rb.links[0])
		}

		if len(rb.payload) >= 8 {
			fh.TimeNs = leUint64(rb.payload[0:8])
		}

		return fh, nil
	})
}
