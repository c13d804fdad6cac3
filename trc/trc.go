// Package trc reads PEAK TRC CAN trace files: the ";$KEY=VALUE" header
// block followed by one whitespace-column row per frame.
package trc

import (
	"bufio"
	"io"
	"iter"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mf4kit/mf4kit/frame"
)

// column identifies the semantic role of one whitespace-separated field in
// a data row.
type column int

const (
	columnIgnore column = iota
	columnNumber
	columnOffset
	columnTxRxError
	columnType
	columnBus
	columnID
	columnLength
	columnData
)

var variablePattern = regexp.MustCompile(`^;\$([A-Z]+)=(.*?)\s*$`)
var leadingDecimalPattern = regexp.MustCompile(`^(\d+)\.(\d+)`)

// oleEpoch is the OLE automation date epoch: days since this instant are
// how ";$STARTTIME" expresses the trace's start.
var oleEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// File is an opened TRC trace: its header fields and enough state to
// re-open a fresh row iterator starting right after the header.
type File struct {
	path        string
	fileVersion string
	startTime   time.Time
	hasStart    bool
	startOffset int64
	columns     []column
}

// Open reads path's header and returns a File ready to iterate frames.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseHeader(path, f)
}

func parseHeader(path string, r io.Reader) (*File, error) {
	br := bufio.NewReader(r)

	fileVersion := "1.0"

	var startTime time.Time

	hasStart := false

	var columns []column

	var offset int64

	for {
		before := offset

		line, rerr := br.ReadString('\n')
		if line == "" {
			break // EOF, nothing left to read at all
		}

		if !strings.HasPrefix(line, ";") {
			offset = before // this line is the first data row, not header

			break
		}

		offset += int64(len(line))

		if m := variablePattern.FindStringSubmatch(line); m != nil {
			key, value := m[1], m[2]

			switch key {
			case "FILEVERSION":
				fileVersion = value

			case "STARTTIME":
				if d := leadingDecimalPattern.FindString(value); d != "" {
					if days, perr := strconv.ParseFloat(d, 64); perr == nil {
						whole := int64(days)
						frac := days - float64(whole)
						ms := int64(frac*86_400_000.0 + 0.5)

						startTime = oleEpoch.AddDate(0, 0, int(whole)).Add(time.Duration(ms) * time.Millisecond)
						hasStart = true
					}
				}

			case "COLUMNS":
				for _, tok := range strings.Split(value, ",") {
					columns = append(columns, columnFromToken(tok))
				}
			}
		}

		if rerr != nil {
			break
		}
	}

	if len(columns) == 0 {
		columns = defaultColumns(fileVersion)
	}

	return &File{
		path:        path,
		fileVersion: fileVersion,
		startTime:   startTime,
		hasStart:    hasStart,
		startOffset: offset,
		columns:     columns,
	}, nil
}

func columnFromToken(tok string) column {
	switch tok {
	case "D":
		return columnData
	case "I":
		return columnID
	case "L":
		return columnLength
	case "N":
		return columnNumber
	case "O":
		return columnOffset
	case "T":
		return columnType
	default:
		return columnIgnore
	}
}

func defaultColumns(version string) []column {
	switch version {
	case "1.0":
		return []column{columnNumber, columnOffset, columnID, columnLength}
	case "1.1":
		return []column{columnNumber, columnOffset, columnTxRxError, columnID, columnLength, columnData}
	case "1.2":
		return []column{columnNumber, columnOffset, columnBus, columnTxRxError, columnID, columnLength, columnData}
	case "1.3":
		return []column{columnNumber, columnOffset, columnBus, columnTxRxError, columnID, columnIgnore, columnLength, columnData}
	default:
		return nil
	}
}

// FileVersion returns the trace's ";$FILEVERSION" value, or "1.0" if absent.
func (f *File) FileVersion() string { return f.fileVersion }

// StartTime returns the trace's ";$STARTTIME" as a UTC time, and whether
// the header carried one at all.
func (f *File) StartTime() (time.Time, bool) { return f.startTime, f.hasStart }

// Frames yields one frame.Frame per well-formed data row, in file order.
// A row whose offset, Id or data-byte fields don't parse, or whose
// Type/TxRxError column fails its allow-list check, is silently skipped rather than erroring the
// whole trace — malformed individual rows are common in hand-edited traces.
// The only errors yielded come from the underlying file itself.
func (f *File) Frames() iter.Seq2[frame.Frame, error] {
	return func(yield func(frame.Frame, error) bool) {
		file, err := os.Open(f.path)
		if err != nil {
			yield(frame.Frame{}, err)

			return
		}
		defer file.Close()

		if _, err := file.Seek(f.startOffset, io.SeekStart); err != nil {
			yield(frame.Frame{}, err)

			return
		}

		br := bufio.NewReader(file)

		for {
			line, rerr := br.ReadString('\n')
			if line == "" && rerr != nil {
				return
			}

			if !strings.HasPrefix(line, ";") {
				if fr, ok := parseRow(line, f.columns); ok {
					if !yield(fr, nil) {
						return
					}
				}
			}

			if rerr != nil {
				return
			}
		}
	}
}

// parseRow splits line into whitespace-separated fields and decodes each
// against its column role. ok is false when the row should be dropped:
// an unparseable Id/length token, or a Type/TxRxError value outside its
// allow-list.
func parseRow(line string, columns []column) (frame.Frame, bool) {
	var fr frame.Frame

	col := 0
	start := 0

	runes := []rune(line)

	for i := 0; i <= len(runes); i++ {
		atEnd := i == len(runes)
		if !atEnd && runes[i] != ' ' && runes[i] != '\r' && runes[i] != '\n' {
			continue
		}

		if start != i {
			tok := string(runes[start:i])

			var c column
			if col < len(columns) {
				c = columns[col]
			} else {
				c = columnData
			}

			switch c {
			case columnData:
				b, err := strconv.ParseUint(tok, 16, 8)
				if err != nil {
					return frame.Frame{}, false
				}

				fr.Data = append(fr.Data, byte(b))

			case columnOffset:
				ms, err := strconv.ParseFloat(tok, 64)
				if err != nil {
					return frame.Frame{}, false
				}

				fr.TimeUs = uint64(ms * 1000.0)

			case columnTxRxError:
				if tok != "Rx" && tok != "Tx" {
					return frame.Frame{}, false
				}

			case columnID:
				id, err := strconv.ParseUint(tok, 16, 32)
				if err != nil {
					return frame.Frame{}, false
				}

				fr.ID = uint32(id)

			case columnType:
				if tok != "DT" && tok != "FD" {
					return frame.Frame{}, false
				}

			case columnNumber, columnBus, columnIgnore, columnLength:
				// not needed to build a Frame
			}

			col++
		}

		start = i + 1
	}

	return fr, true
}
