package block

import "strings"

// TextBlock (##TX) is a length-prefixed UTF-8 payload, treated as an opaque
// string.
type TextBlock struct {
	Data string
}

// ReadTextBlock reads the ##TX block at offset.
func ReadTextBlock(src Source, offset uint64) (TextBlock, error) {
	return readTypedBlockAt(src, offset, "##TX", func(rb rawBlock) (TextBlock, error) {
		return TextBlock{Data: trimTextPayload(rb.payload)}, nil
	})
}

// MetadataBlock (##MD) is a length-prefixed UTF-8 (XML) payload, also
// treated as an opaque string by this library.
type MetadataBlock struct {
	Data string
}

// ReadMetadataBlock reads the ##MD block at offset.
func ReadMetadataBlock(src Source, offset uint64) (MetadataBlock, error) {
	return readTypedBlockAt(src, offset, "##MD", func(rb rawBlock) (MetadataBlock, error) {
		return MetadataBlock{Data: trimTextPayload(rb.payload)}, nil
	})
}

// trimTextPayload strips MDF4's trailing NUL padding from a text/metadata
// payload.
func trimTextPayload(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}

// GetText resolves a channel/group name or unit link, returning "" for an
// absent link.
func GetText(src Source, link Link[TextBlock]) (string, error) {
	if link.IsAbsent() {
		return "", nil
	}

	tb, err := ReadTextBlock(src, link.Offset())
	if err != nil {
		return "", err
	}

	return tb.Data, nil
}

// GetMetadata resolves a comment link, returning "" for an absent link.
func GetMetadata(src Source, link Link[MetadataBlock]) (string, error) {
	if link.IsAbsent() {
		return "", nil
	}

	mb, err := ReadMetadataBlock(src, link.Offset())
	if err != nil {
		return "", err
	}

	return mb.Data, nil
}
