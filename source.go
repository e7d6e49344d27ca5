package gl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// Source supplies characters to the Lexer one at a time. Once it reports
// false it must keep reporting false.
type Source interface {
	NextChar() (rune, bool)
}

// StringSource reads characters from an in-memory string.
type StringSource struct {
	s   string
	off int
}

func NewStringSource(s string) *StringSource { return &StringSource{s: s} }

func (s *StringSource) NextChar() (rune, bool) {
	if s.off >= len(s.s) {
		return 0, false
	}
	r, n := utf8.DecodeRuneInString(s.s[s.off:])
	s.off += n
	return r, true
}

// FileSource reads characters from a buffered reader, typically an open file.
// The first read error (io.EOF included) is kept in Err and ends the stream.
type FileSource struct {
	r   *bufio.Reader
	c   io.Closer
	Err error
}

func NewFileSource(r io.Reader) *FileSource {
	return &FileSource{r: bufio.NewReader(r)}
}

// OpenFileSource opens path for streaming. Close releases the file.
func OpenFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source %s: %w", path, err)
	}
	fs := NewFileSource(f)
	fs.c = f
	return fs, nil
}

func (s *FileSource) NextChar() (rune, bool) {
	if s.Err != nil {
		return 0, false
	}
	r, _, err := s.r.ReadRune()
	if err != nil {
		s.Err = err
		return 0, false
	}
	return r, true
}

func (s *FileSource) Close() error {
	if s.c == nil {
		return nil
	}
	return s.c.Close()
}
