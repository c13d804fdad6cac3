package dbc

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// nsSymbols is the fixed attribute-namespace block every DBC writer emits,
// whether or not the symbols are actually used by this database.
var nsSymbols = []string{
	"NS_DESC_", "CM_", "BA_DEF_", "BA_", "VAL_", "CAT_DEF_", "CAT_", "FILTER",
	"BA_DEF_DEF_", "EV_DATA_", "ENVVAR_DATA_", "SGTYPE_", "SGTYPE_VAL_",
	"BA_DEF_SGTYPE_", "BA_SGTYPE_", "SIG_TYPE_REF_", "VAL_TABLE_", "SIG_GROUP_",
	"SIG_VALTYPE_", "SIGTYPE_VALTYPE_", "BO_TX_BU_", "BA_DEF_REL_", "BA_REL_",
	"BA_DEF_DEF_REL_", "BU_SG_REL_", "BU_EV_REL_", "BU_BO_REL_", "SG_MUL_VAL_",
}

// Save writes db to path in DBC text form.
func (db *Database) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = db.WriteTo(f)

	return err
}

// WriteTo writes db to w in DBC text form, mirroring the canonical layout:
// VERSION, NS_, BS_, BU_, one BO_ block per message (with depth-first SG_
// lines), then VAL_ lines for every signal carrying value descriptions.
func (db *Database) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "VERSION \"\"\n\n")

	b.WriteString("NS_ :\n")
	for _, sym := range nsSymbols {
		fmt.Fprintf(&b, "    %s\n", sym)
	}
	b.WriteString("\n")

	b.WriteString("BS_:\n\n")

	nodes := collectNodes(db)
	fmt.Fprintf(&b, "BU_: %s\n\n", strings.Join(nodes, " "))

	for _, msg := range db.Messages {
		writeMessage(&b, msg)
	}

	writeValueDescriptions(&b, db)

	n, err := io.WriteString(w, b.String())

	return int64(n), err
}

func collectNodes(db *Database) []string {
	seen := make(map[string]struct{})

	var nodes []string

	add := func(name string) {
		if name == "" {
			return
		}

		if _, ok := seen[name]; ok {
			return
		}

		seen[name] = struct{}{}
		nodes = append(nodes, name)
	}

	for _, msg := range db.Messages {
		add(msg.Transmitter)

		walkSignals(msg.Signals, func(sig *Signal) {
			for _, r := range sig.Receivers {
				add(r)
			}
		})
	}

	sort.Strings(nodes)

	return nodes
}

func walkSignals(signals []*Signal, fn func(*Signal)) {
	for _, sig := range signals {
		fn(sig)

		if sig.Multiplexed == nil {
			continue
		}

		selectors := sortedSelectors(sig.Multiplexed)
		for _, sel := range selectors {
			walkSignals(sig.Multiplexed[sel], fn)
		}
	}
}

func sortedSelectors(m map[uint64][]*Signal) []uint64 {
	out := make([]uint64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

func writeMessage(b *strings.Builder, msg *Message) {
	transmitter := msg.Transmitter
	if transmitter == "" {
		transmitter = emptyECU
	}

	fmt.Fprintf(b, "BO_ %d %s: %d %s\n", msg.ID, msg.Name, msg.Length, transmitter)

	// Depth-first over the multiplex tree: each signal's own line, then
	// (if it's a multiplexer) its children grouped by ascending selector,
	// each group ordered by ascending start bit.
	var emit func(sig *Signal, muxIndex *uint64)

	emit = func(sig *Signal, muxIndex *uint64) {
		writeSignal(b, sig, muxIndex)

		if sig.Multiplexed == nil {
			return
		}

		for _, sel := range sortedSelectors(sig.Multiplexed) {
			sel := sel
			for _, child := range sig.Multiplexed[sel] {
				emit(child, &sel)
			}
		}
	}

	for _, sig := range msg.Signals {
		emit(sig, nil)
	}

	b.WriteString("\n")
}

func writeSignal(b *strings.Builder, sig *Signal, muxIndex *uint64) {
	fmt.Fprintf(b, " SG_ %s", sig.Name)

	switch {
	case muxIndex != nil && sig.IsMultiplexer:
		fmt.Fprintf(b, " m%dM", *muxIndex)
	case muxIndex != nil:
		fmt.Fprintf(b, " m%d", *muxIndex)
	case sig.IsMultiplexer:
		b.WriteString(" M")
	}

	order := '0'
	if sig.ByteOrder == LittleEndian {
		order = '1'
	}

	sign := '+'
	if sig.ValueType == Signed {
		sign = '-'
	}

	fmt.Fprintf(b, " : %d|%d@%c%c (%s,%s) [%s|%s] \"%s\" %s\n",
		sig.StartBit, sig.Size, order, sign,
		formatNum(sig.Factor), formatNum(sig.Offset),
		formatNum(sig.Minimum), formatNum(sig.Maximum),
		sig.Unit, receiverList(sig.Receivers))
}

func receiverList(receivers []string) string {
	if len(receivers) == 0 {
		return emptyECU
	}

	return strings.Join(receivers, ",")
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeValueDescriptions(b *strings.Builder, db *Database) {
	for _, msg := range db.Messages {
		walkSignals(msg.Signals, func(sig *Signal) {
			if len(sig.ValueDescriptions) == 0 {
				return
			}

			keys := make([]int64, 0, len(sig.ValueDescriptions))
			for k := range sig.ValueDescriptions {
				keys = append(keys, k)
			}

			sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

			fmt.Fprintf(b, "VAL_ %d %s", msg.ID, sig.Name)

			for _, k := range keys {
				fmt.Fprintf(b, " %d \"%s\"", k, sig.ValueDescriptions[k])
			}

			b.WriteString(" ;\n")
		})
	}
}
