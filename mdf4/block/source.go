package block

import (
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// Source is the byte-addressable backing store a Reader seeks and reads
// from. Both a plain *os.File and a memory-mapped file satisfy it.
type Source interface {
	io.ReaderAt
	Close() error
}

// fileSource wraps *os.File, the default, unmapped backing store.
type fileSource struct {
	f *os.File
}

func (s *fileSource) ReadAt(p []byte, off int64) (int, error) { return s.f.ReadAt(p, off) }
func (s *fileSource) Close() error                             { return s.f.Close() }

// OpenFile opens path as a plain, unmapped Source.
func OpenFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return &fileSource{f: f}, nil
}

// mmapSource wraps a read-only memory mapping of a file. It is what
// WithMmap uses in place of repeated ReadAt syscalls.
type mmapSource struct {
	f *os.File
	m mmap.MMap
}

func (s *mmapSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(s.m)) {
		return 0, io.EOF
	}

	n := copy(p, s.m[off:])
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}

	return n, nil
}

func (s *mmapSource) Close() error {
	if err := s.m.Unmap(); err != nil {
		s.f.Close()

		return err
	}

	return s.f.Close()
}

// OpenMmap memory-maps path read-only and returns it as a Source. Grounded
// on saferwall-pe's file.New, which maps the PE image instead of issuing
// read/seek syscalls per field.
func OpenMmap(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()

		return nil, err
	}

	return &mmapSource{f: f, m: m}, nil
}
