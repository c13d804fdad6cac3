package block

import (
	"fmt"
	"iter"

	"github.com/mf4kit/mf4kit/errs"
)

// maxChainLength bounds how many blocks a Walk* iterator will follow before
// giving up. The file is untrusted; a cyclic "next" link would otherwise
// loop forever (spec: "implementations SHOULD cap chain length defensively").
const maxChainLength = 1_000_000

// WalkChain lazily walks a singly-linked block chain starting at first,
// yielding each decoded block (or the first error encountered, after which
// iteration stops). read decodes one block at its offset; next extracts the
// following link from a decoded block.
func WalkChain[T any](src Source, first Link[T], read func(Source, uint64) (T, error), next func(T) Link[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		link := first
		for i := 0; ; i++ {
			if link.IsAbsent() {
				return
			}

			if i >= maxChainLength {
				var zero T
				yield(zero, fmt.Errorf("%w: exceeded %d blocks", errs.ErrChainTooLong, maxChainLength))

				return
			}

			block, err := read(src, link.Offset())
			if err != nil {
				var zero T
				yield(zero, err)

				return
			}

			if !yield(block, nil) {
				return
			}

			link = next(block)
		}
	}
}

// WalkDataGroups walks a header's data-group chain.
func WalkDataGroups(src Source, first Link[DataGroupBlock]) iter.Seq2[DataGroupBlock, error] {
	return WalkChain(src, first, ReadDataGroupBlock, func(b DataGroupBlock) Link[DataGroupBlock] { return b.DataGroupNext })
}

// WalkChannelGroups walks a data group's channel-group chain.
func WalkChannelGroups(src Source, first Link[ChannelGroupBlock]) iter.Seq2[ChannelGroupBlock, error] {
	return WalkChain(src, first, ReadChannelGroupBlock, func(b ChannelGroupBlock) Link[ChannelGroupBlock] { return b.ChannelGroupNext })
}

// WalkChannels walks a channel group's channel chain.
func WalkChannels(src Source, first Link[ChannelBlock]) iter.Seq2[ChannelBlock, error] {
	return WalkChain(src, first, ReadChannelBlock, func(b ChannelBlock) Link[ChannelBlock] { return b.ChannelNext })
}

// WalkDataLists walks a data group's ##DL chain.
func WalkDataLists(src Source, first Link[DataListBlock]) iter.Seq2[DataListBlock, error] {
	return WalkChain(src, first, ReadDataListBlock, func(b DataListBlock) Link[DataListBlock] { return b.DataListNext })
}

// WalkFileHistory walks a header's ##FH chain.
func WalkFileHistory(src Source, first Link[FileHistoryBlock]) iter.Seq2[FileHistoryBlock, error] {
	return WalkChain(src, first, ReadFileHistoryBlock, func(b FileHistoryBlock) Link[FileHistoryBlock] { return b.FileHistoryNext })
}
