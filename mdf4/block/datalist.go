package block

// DataListBlock is the ##DL block: a list of data-table links, optionally
// chained via DataListNext. The payload (flags, block count and the
// equal-length/time/angle/distance offset arrays) is not decoded.
type DataListBlock struct {
	DataListNext Link[DataListBlock]
	Data         []Link[DataTableBlock]
}

// ReadDataListBlock reads the ##DL block at offset.
func ReadDataListBlock(src Source, offset uint64) (DataListBlock, error) {
	return readTypedBlockAt(src, offset, "##DL", func(rb rawBlock) (DataListBlock, error) {
		dl := DataListBlock{}
		if len(rb.links) >= 1 {
			dl.DataListNext = Link[DataListBlock](rb.links[0])
		}

		dl.Data = make([]Link[DataTableBlock], 0, len(rb.links)-1)
		for _, l := range rb.links[1:] {
			dl.Data = append(dl.Data, Link[DataTableBlock](l))
		}

		return dl, nil
	})
}
