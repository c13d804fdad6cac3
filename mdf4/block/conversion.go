package block

// ChannelConversionBlock is the ##CC block: a conversion_type tag, a
// length-prefixed sequence of f64 parameter values, and a sequence of child
// links each pointing to either a nested conversion block or a text block.
// The child link's destination type is erased here (type Link[T] would
// require committing to one of the two); the conversion compiler resolves
// each ref by reading its magic.
type ChannelConversionBlock struct {
	ConversionType ConversionType
	Values         []float64
	Refs           []uint64
}

// ReadChannelConversionBlock reads the ##CC block at offset.
func ReadChannelConversionBlock(src Source, offset uint64) (ChannelConversionBlock, error) {
	return readTypedBlockAt(src, offset, "##CC", func(rb rawBlock) (ChannelConversionBlock, error) {
		cc := ChannelConversionBlock{}
		if len(rb.links) >= 4 {
			cc.Refs = append([]uint64(nil), rb.links[4:]...)
		}

		p := rb.payload
		if len(p) >= 8 {
			cc.ConversionType = ConversionType(p[0])
			valueCount := int(leUint16(p[6:8]))
			if len(p) >= 24+valueCount*8 {
				cc.Values = leFloat64Slice(p[24:24+valueCount*8], valueCount)
			}
		}

		return cc, nil
	})
}

// RefMagic peeks the magic of a ##CC ref link without fully decoding it, to
// tell a nested conversion block apart from a text block.
func RefMagic(src Source, offset uint64) (string, error) {
	rb, err := readRawBlockAt(src, offset)
	if err != nil {
		return "", err
	}

	return string(rb.magic[:]), nil
}
