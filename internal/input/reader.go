// Package input resolves the operator-supplied values: the domain argument
// and the interactively prompted email and X-Powered-By header value.
package input

import (
	"bufio"
	"io"
)

// Reader is the line source behind LinePrompter.
type Reader interface {
	ReadString(delim byte) (string, error)
}

// BufferedReader reads lines from any io.Reader.
type BufferedReader struct {
	reader *bufio.Reader
}

// NewBufferedReader wraps r.
func NewBufferedReader(r io.Reader) *BufferedReader {
	return &BufferedReader{reader: bufio.NewReader(r)}
}

// ReadString reads until delimiter
func (r *BufferedReader) ReadString(delim byte) (string, error) {
	return r.reader.ReadString(delim)
}

// StringReader replays fixed answers, one per ReadString call. Each input
// should already end with the delimiter (e.g. "ops@example.com\n").
type StringReader struct {
	inputs []string
	index  int
}

// NewStringReader creates a reader from strings.
func NewStringReader(inputs ...string) *StringReader {
	return &StringReader{inputs: inputs}
}

// ReadString returns the next answer, or io.EOF once all are consumed.
func (r *StringReader) ReadString(delim byte) (string, error) {
	if r.index >= len(r.inputs) {
		return "", io.EOF
	}
	result := r.inputs[r.index]
	r.index++
	return result, nil
}
