package dbc

import (
	"fmt"
	"os"
	"sort"
)

// rawSignal is a signal as written in the file, before its multiplex tree is
// assembled.
type rawSignal struct {
	name          string
	isMultiplexer bool
	muxIndex      *uint64

	startBit  uint32
	size      uint32
	byteOrder ByteOrder
	valueType ValueType
	factor    float64
	offset    float64
	minimum   float64
	maximum   float64
	unit      string
	receivers []string
}

type rawMessage struct {
	id          uint32
	name        string
	length      uint32
	transmitter string

	signalOrder []string
	signals     map[string]*rawSignal
}

// muxGroups maps a multiplexer signal's name to its selector -> child-name
// groups, for one message.
type muxGroups map[string]map[uint64][]string

// Parse reads contents as a DBC file and builds its message tree.
func Parse(contents string) (*Database, error) {
	l := newLexer(contents)

	var messageOrder []uint32
	messages := make(map[uint32]*rawMessage)
	muxExtended := make(map[uint32]muxGroups)
	muxInline := make(map[uint32]muxGroups)
	valueDescs := make(map[uint32]map[string]map[int64]string)

	for !l.isEOF() {
		kw, _ := l.nextKeyword()

		switch kw {
		case "VERSION":
			if err := l.expectSpaces(); err != nil {
				return nil, err
			}

			if _, err := l.expectString(); err != nil {
				return nil, err
			}

			if err := l.expectNewline(); err != nil {
				return nil, err
			}

		case "BS_":
			l.nextSpaces()
			if err := l.expectChar(':'); err != nil {
				return nil, err
			}

			l.nextSpaces()

			if err := l.expectNewline(); err != nil {
				return nil, err
			}

		case "BU_":
			l.nextSpaces()
			if err := l.expectChar(':'); err != nil {
				return nil, err
			}

			l.nextSpaces()

			for {
				if _, ok := l.nextDbcIdentifier(); !ok {
					break
				}

				l.nextSpaces()
			}

			if err := l.expectNewline(); err != nil {
				return nil, err
			}

		case "VAL_TABLE_":
			if err := parseValueTable(l); err != nil {
				return nil, err
			}

		case "NS_":
			if err := parseNS(l); err != nil {
				return nil, err
			}

		case "CM_":
			if err := parseComment(l); err != nil {
				return nil, err
			}

		case "BO_":
			msg, inlineMux, err := parseMessage(l)
			if err != nil {
				return nil, err
			}

			messageOrder = append(messageOrder, msg.id)
			messages[msg.id] = msg

			if len(inlineMux) > 0 {
				muxInline[msg.id] = inlineMux
			}

		case "BO_TX_BU_":
			if err := parseAdditionalTransmitters(l); err != nil {
				return nil, err
			}

		case "VAL_":
			if err := parseValueDescriptions(l, valueDescs); err != nil {
				return nil, err
			}

		case "BA_DEF_":
			if err := parseAttributeDef(l); err != nil {
				return nil, err
			}

		case "BA_DEF_DEF_":
			if err := parseAttributeDefault(l); err != nil {
				return nil, err
			}

		case "BA_":
			if err := parseAttributeValue(l); err != nil {
				return nil, err
			}

		case "SG_MUL_VAL_":
			if err := parseExtendedMultiplex(l, muxExtended); err != nil {
				return nil, err
			}

		default:
			if kw == "" {
				if l.nextSpaces() == "" {
					if err := l.expectNewline(); err != nil {
						return nil, err
					}

					continue
				}
			}
			// Unknown top-level keyword, or an unexpected indented line:
			// consume and move on, matching the writer's own lossiness.
			l.nextLine()
		}
	}

	multiplex := muxExtended
	if len(multiplex) == 0 {
		multiplex = muxInline
	}

	db := &Database{}

	for _, id := range messageOrder {
		raw := messages[id]
		msgValues := valueDescs[id]
		msgMux := multiplex[id]

		msg := &Message{ID: raw.id, Name: raw.name, Length: raw.length, Transmitter: raw.transmitter}

		for _, name := range raw.signalOrder {
			sig := raw.signals[name]
			if sig.muxIndex != nil {
				continue // reached through its multiplexer parent, not top-level
			}

			msg.Signals = append(msg.Signals, buildSignal(sig, raw, msgMux, msgValues))
		}

		db.Messages = append(db.Messages, msg)
	}

	db.buildIndex()

	return db, nil
}

// Open reads path and parses it as a DBC file.
func Open(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(string(data))
}

func buildSignal(raw *rawSignal, msg *rawMessage, mux muxGroups, values map[string]map[int64]string) *Signal {
	sig := &Signal{
		Name:              raw.name,
		StartBit:          raw.startBit,
		Size:              raw.size,
		ByteOrder:         raw.byteOrder,
		ValueType:         raw.valueType,
		Factor:            raw.factor,
		Offset:            raw.offset,
		Minimum:           raw.minimum,
		Maximum:           raw.maximum,
		Unit:              raw.unit,
		Receivers:         raw.receivers,
		IsMultiplexer:     raw.isMultiplexer,
		ValueDescriptions: values[raw.name],
	}

	groups, hasChildren := mux[raw.name]
	if !hasChildren {
		return sig
	}

	sig.Multiplexed = make(map[uint64][]*Signal, len(groups))

	for selector, childNames := range groups {
		children := make([]*Signal, 0, len(childNames))

		for _, childName := range childNames {
			childRaw, ok := msg.signals[childName]
			if !ok {
				continue
			}

			children = append(children, buildSignal(childRaw, msg, mux, values))
		}

		sort.SliceStable(children, func(i, j int) bool { return children[i].StartBit < children[j].StartBit })

		sig.Multiplexed[selector] = children
	}

	return sig
}

func parseValueTable(l *lexer) error {
	if err := l.expectSpaces(); err != nil {
		return err
	}

	if _, err := l.expectDbcIdentifier(); err != nil {
		return err
	}

	l.nextSpaces()

	for !l.nextChar(';') {
		if _, err := l.expectSigned(); err != nil {
			return err
		}

		if err := l.expectSpaces(); err != nil {
			return err
		}

		if _, err := l.expectString(); err != nil {
			return err
		}

		l.nextSpaces()
	}

	return l.expectNewline()
}

func parseNS(l *lexer) error {
	l.nextSpaces()
	if err := l.expectChar(':'); err != nil {
		return err
	}

	l.nextSpaces()

	if err := l.expectNewline(); err != nil {
		return err
	}

	for l.nextSpaces() != "" {
		for {
			if _, ok := l.nextKeyword(); !ok {
				break
			}
		}

		if err := l.expectNewline(); err != nil {
			return err
		}
	}

	return nil
}

func parseComment(l *lexer) error {
	if err := l.expectSpaces(); err != nil {
		return err
	}

	kw, _ := l.nextKeyword()

	switch kw {
	case "":
		if _, err := l.expectString(); err != nil {
			return err
		}

	case "BU_", "EV_":
		if err := l.expectSpaces(); err != nil {
			return err
		}

		if _, err := l.expectDbcIdentifier(); err != nil {
			return err
		}

		if err := l.expectSpaces(); err != nil {
			return err
		}

		if _, err := l.expectString(); err != nil {
			return err
		}

	case "BO_":
		if err := l.expectSpaces(); err != nil {
			return err
		}

		if _, err := l.expectUnsigned(); err != nil {
			return err
		}

		if err := l.expectSpaces(); err != nil {
			return err
		}

		if _, err := l.expectString(); err != nil {
			return err
		}

	case "SG_":
		if err := l.expectSpaces(); err != nil {
			return err
		}

		if _, err := l.expectUnsigned(); err != nil {
			return err
		}

		if err := l.expectSpaces(); err != nil {
			return err
		}

		if _, err := l.expectDbcIdentifier(); err != nil {
			return err
		}

		if err := l.expectSpaces(); err != nil {
			return err
		}

		if _, err := l.expectString(); err != nil {
			return err
		}

	default:
		return l.parseError(fmt.Sprintf("unknown comment type %q", kw))
	}

	l.nextSpaces()
	if err := l.expectChar(';'); err != nil {
		return err
	}

	return l.expectNewline()
}

func parseMessage(l *lexer) (*rawMessage, muxGroups, error) {
	if err := l.expectSpaces(); err != nil {
		return nil, nil, err
	}

	id, err := l.expectUnsigned()
	if err != nil {
		return nil, nil, err
	}

	if err := l.expectSpaces(); err != nil {
		return nil, nil, err
	}

	name, err := l.expectDbcIdentifier()
	if err != nil {
		return nil, nil, err
	}

	l.nextSpaces()

	if err := l.expectChar(':'); err != nil {
		return nil, nil, err
	}

	l.nextSpaces()

	length, err := l.expectUnsigned()
	if err != nil {
		return nil, nil, err
	}

	if err := l.expectSpaces(); err != nil {
		return nil, nil, err
	}

	transmitter, err := l.expectDbcIdentifier()
	if err != nil {
		return nil, nil, err
	}

	if transmitter == emptyECU {
		transmitter = ""
	}

	l.nextSpaces()

	if err := l.expectNewline(); err != nil {
		return nil, nil, err
	}

	msg := &rawMessage{
		id:          uint32(id),
		name:        name,
		length:      uint32(length),
		transmitter: transmitter,
		signals:     make(map[string]*rawSignal),
	}

	for l.nextSpaces() != "" {
		kw, ok := l.nextKeyword()
		if !ok {
			break // indented line with no keyword: nothing more to parse here
		}

		if kw != "SG_" {
			return nil, nil, l.parseError("expected SG_")
		}

		sig, err := parseSignal(l)
		if err != nil {
			return nil, nil, err
		}

		if _, dup := msg.signals[sig.name]; !dup {
			msg.signalOrder = append(msg.signalOrder, sig.name)
		}

		msg.signals[sig.name] = sig

		if err := l.expectNewline(); err != nil {
			return nil, nil, err
		}
	}

	inlineMux := make(muxGroups)

	var muxSignalName string

	muxSignalCount := 0

	for _, name := range msg.signalOrder {
		if msg.signals[name].isMultiplexer {
			muxSignalName = name
			muxSignalCount++
		}
	}

	if muxSignalCount == 1 {
		for _, name := range msg.signalOrder {
			sig := msg.signals[name]
			if sig.muxIndex == nil {
				continue
			}

			if inlineMux[muxSignalName] == nil {
				inlineMux[muxSignalName] = make(map[uint64][]string)
			}

			inlineMux[muxSignalName][*sig.muxIndex] = append(inlineMux[muxSignalName][*sig.muxIndex], sig.name)
		}
	}

	return msg, inlineMux, nil
}

func parseSignal(l *lexer) (*rawSignal, error) {
	if err := l.expectSpaces(); err != nil {
		return nil, err
	}

	name, err := l.expectDbcIdentifier()
	if err != nil {
		return nil, err
	}

	if err := l.expectSpaces(); err != nil {
		return nil, err
	}

	sig := &rawSignal{name: name}

	switch {
	case l.nextChar('m'):
		idx, err := l.expectUnsigned()
		if err != nil {
			return nil, err
		}

		sig.muxIndex = &idx
		sig.isMultiplexer = l.nextChar('M')
		l.nextSpaces()

	case l.nextChar('M'):
		sig.isMultiplexer = true
		l.nextSpaces()
	}

	if err := l.expectChar(':'); err != nil {
		return nil, err
	}

	l.nextSpaces()

	startBit, err := l.expectUnsigned()
	if err != nil {
		return nil, err
	}

	sig.startBit = uint32(startBit)

	l.nextSpaces()

	if err := l.expectChar('|'); err != nil {
		return nil, err
	}

	l.nextSpaces()

	size, err := l.expectUnsigned()
	if err != nil {
		return nil, err
	}

	sig.size = uint32(size)

	l.nextSpaces()

	if err := l.expectChar('@'); err != nil {
		return nil, err
	}

	l.nextSpaces()

	order, err := l.expectChars('0', '1')
	if err != nil {
		return nil, err
	}

	if order == '1' {
		sig.byteOrder = LittleEndian
	} else {
		sig.byteOrder = BigEndian
	}

	l.nextSpaces()

	sign, err := l.expectChars('+', '-')
	if err != nil {
		return nil, err
	}

	if sign == '-' {
		sig.valueType = Signed
	} else {
		sig.valueType = Unsigned
	}

	l.nextSpaces()

	if err := l.expectChar('('); err != nil {
		return nil, err
	}

	l.nextSpaces()

	sig.factor, err = l.expectDouble()
	if err != nil {
		return nil, err
	}

	l.nextSpaces()

	if err := l.expectChar(','); err != nil {
		return nil, err
	}

	l.nextSpaces()

	sig.offset, err = l.expectDouble()
	if err != nil {
		return nil, err
	}

	l.nextSpaces()

	if err := l.expectChar(')'); err != nil {
		return nil, err
	}

	l.nextSpaces()

	if err := l.expectChar('['); err != nil {
		return nil, err
	}

	l.nextSpaces()

	sig.minimum, err = l.expectDouble()
	if err != nil {
		return nil, err
	}

	l.nextSpaces()

	if err := l.expectChar('|'); err != nil {
		return nil, err
	}

	l.nextSpaces()

	sig.maximum, err = l.expectDouble()
	if err != nil {
		return nil, err
	}

	l.nextSpaces()

	if err := l.expectChar(']'); err != nil {
		return nil, err
	}

	l.nextSpaces()

	sig.unit, err = l.expectString()
	if err != nil {
		return nil, err
	}

	if err := l.expectSpaces(); err != nil {
		return nil, err
	}

	recv, err := l.expectDbcIdentifier()
	if err != nil {
		return nil, err
	}

	if recv != emptyECU {
		sig.receivers = append(sig.receivers, recv)
	}

	for l.nextChar(',') {
		l.nextSpaces()

		recv, err := l.expectDbcIdentifier()
		if err != nil {
			return nil, err
		}

		if recv != emptyECU {
			sig.receivers = append(sig.receivers, recv)
		}
	}

	return sig, nil
}

func parseAdditionalTransmitters(l *lexer) error {
	if err := l.expectSpaces(); err != nil {
		return err
	}

	if _, err := l.expectUnsigned(); err != nil {
		return err
	}

	l.nextSpaces()

	if err := l.expectChar(':'); err != nil {
		return err
	}

	l.nextSpaces()

	if _, err := l.expectDbcIdentifier(); err != nil {
		return err
	}

	for l.nextChar(',') {
		l.nextSpaces()

		if _, err := l.expectDbcIdentifier(); err != nil {
			return err
		}
	}

	if err := l.expectChar(';'); err != nil {
		return err
	}

	return l.expectNewline()
}

func parseValueDescriptions(l *lexer, out map[uint32]map[string]map[int64]string) error {
	if err := l.expectSpaces(); err != nil {
		return err
	}

	id, err := l.expectUnsigned()
	if err != nil {
		return err
	}

	if err := l.expectSpaces(); err != nil {
		return err
	}

	name, err := l.expectDbcIdentifier()
	if err != nil {
		return err
	}

	l.nextSpaces()

	descs := make(map[int64]string)

	for !l.nextChar(';') {
		key, err := l.expectSigned()
		if err != nil {
			return err
		}

		if err := l.expectSpaces(); err != nil {
			return err
		}

		value, err := l.expectString()
		if err != nil {
			return err
		}

		l.nextSpaces()

		descs[key] = value
	}

	msgID := uint32(id)
	if out[msgID] == nil {
		out[msgID] = make(map[string]map[int64]string)
	}

	out[msgID][name] = descs

	return l.expectNewline()
}

func parseAttributeDef(l *lexer) error {
	if err := l.expectSpaces(); err != nil {
		return err
	}

	// optional object-type prefix: BU_ | BO_ | SG_ | EV_
	if kw, ok := l.nextKeyword(); ok {
		switch kw {
		case "BU_", "BO_", "SG_", "EV_":
			if err := l.expectSpaces(); err != nil {
				return err
			}
		default:
			return l.parseError("expected BU_|BO_|SG_|EV_")
		}
	}

	if _, err := l.expectString(); err != nil { // attribute name
		return err
	}

	if err := l.expectSpaces(); err != nil {
		return err
	}

	kind, err := l.expectDbcIdentifier()
	if err != nil {
		return err
	}

	l.nextSpaces()

	switch kind {
	case "INT", "HEX":
		if _, err := l.expectSigned(); err != nil {
			return err
		}

		l.nextSpaces()

		if _, err := l.expectSigned(); err != nil {
			return err
		}

	case "FLOAT":
		if _, err := l.expectDouble(); err != nil {
			return err
		}

		l.nextSpaces()

		if _, err := l.expectDouble(); err != nil {
			return err
		}

	case "STRING":
		// no parameters

	case "ENUM":
		if _, err := l.expectString(); err != nil {
			return err
		}

		for l.nextChar(',') {
			l.nextSpaces()

			if _, err := l.expectString(); err != nil {
				return err
			}
		}

	default:
		return l.parseError("expected INT|HEX|FLOAT|STRING|ENUM")
	}

	l.nextSpaces()

	if err := l.expectChar(';'); err != nil {
		return err
	}

	return l.expectNewline()
}

func expectAttributeValue(l *lexer) error {
	if _, ok := l.nextDouble(); ok {
		return nil
	}

	_, err := l.expectString()

	return err
}

func parseAttributeDefault(l *lexer) error {
	if err := l.expectSpaces(); err != nil {
		return err
	}

	if _, err := l.expectString(); err != nil {
		return err
	}

	if err := l.expectSpaces(); err != nil {
		return err
	}

	if err := expectAttributeValue(l); err != nil {
		return err
	}

	l.nextSpaces()

	if err := l.expectChar(';'); err != nil {
		return err
	}

	return l.expectNewline()
}

func parseAttributeValue(l *lexer) error {
	if err := l.expectSpaces(); err != nil {
		return err
	}

	if _, err := l.expectString(); err != nil {
		return err
	}

	if err := l.expectSpaces(); err != nil {
		return err
	}

	kw, ok := l.nextDbcIdentifier()
	if ok {
		switch kw {
		case "BU_", "EV_":
			if err := l.expectSpaces(); err != nil {
				return err
			}

			if _, err := l.expectDbcIdentifier(); err != nil {
				return err
			}

			if err := l.expectSpaces(); err != nil {
				return err
			}

		case "BO_":
			if err := l.expectSpaces(); err != nil {
				return err
			}

			if _, err := l.expectUnsigned(); err != nil {
				return err
			}

			if err := l.expectSpaces(); err != nil {
				return err
			}

		case "SG_":
			if err := l.expectSpaces(); err != nil {
				return err
			}

			if _, err := l.expectUnsigned(); err != nil {
				return err
			}

			if err := l.expectSpaces(); err != nil {
				return err
			}

			if _, err := l.expectDbcIdentifier(); err != nil {
				return err
			}

			if err := l.expectSpaces(); err != nil {
				return err
			}

		default:
			return l.parseError("expected BU_|BO_|SG_|EV_")
		}
	}

	if err := expectAttributeValue(l); err != nil {
		return err
	}

	l.nextSpaces()

	if err := l.expectChar(';'); err != nil {
		return err
	}

	return l.expectNewline()
}

func parseExtendedMultiplex(l *lexer, out map[uint32]muxGroups) error {
	if err := l.expectSpaces(); err != nil {
		return err
	}

	id, err := l.expectUnsigned()
	if err != nil {
		return err
	}

	if err := l.expectSpaces(); err != nil {
		return err
	}

	muxedName, err := l.expectDbcIdentifier()
	if err != nil {
		return err
	}

	if err := l.expectSpaces(); err != nil {
		return err
	}

	muxerName, err := l.expectDbcIdentifier()
	if err != nil {
		return err
	}

	msgID := uint32(id)
	if out[msgID] == nil {
		out[msgID] = make(muxGroups)
	}

	if out[msgID][muxerName] == nil {
		out[msgID][muxerName] = make(map[uint64][]string)
	}

	groups := out[msgID][muxerName]

	if !l.nextChar(';') {
		for {
			if err := l.expectSpaces(); err != nil {
				return err
			}

			start, err := l.expectUnsigned()
			if err != nil {
				return err
			}

			if err := l.expectChar('-'); err != nil {
				return err
			}

			end, err := l.expectUnsigned()
			if err != nil {
				return err
			}

			for i := start; i <= end; i++ {
				groups[i] = append(groups[i], muxedName)
			}

			l.nextSpaces()

			sep, err := l.expectChars(';', ',')
			if err != nil {
				return err
			}

			if sep == ';' {
				break
			}
		}
	}

	return l.expectNewline()
}
