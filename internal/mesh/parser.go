// Package mesh provides parsing of the NLM MeSH ASCII descriptor format
// (d2025.bin) and extraction of tree-number hierarchies from it.
package mesh

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// Descriptor field markers in the ASCII MeSH format.
const (
	recordMarker = "*NEWRECORD"
	fieldUI      = "UI = "
	fieldMH      = "MH = "
	fieldMN      = "MN = "
)

// Record is a single MeSH descriptor. A descriptor may appear at multiple
// positions in the tree (polyhierarchy), one tree number per position.
type Record struct {
	UI          string
	Name        string
	TreeNumbers []string
}

// valid reports whether the record has enough fields to be emitted.
// Descriptors without a UI or without any tree number are dropped.
func (r *Record) valid() bool {
	return r.UI != "" && len(r.TreeNumbers) > 0
}

// Parser reads MeSH descriptor records from a flat descriptor file.
type Parser struct {
	scanner    *bufio.Scanner
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int

	current *Record
	done    bool
}

// NewParser creates a parser for the given descriptor file.
// Supports both plain and gzip-compressed files.
func NewParser(path string) (*Parser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mesh descriptor file: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	_, err = file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read mesh descriptor file: %w", err)
	}

	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek mesh descriptor file: %w", err)
	}

	if buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.scanner = newScanner(p.gzipReader)
	} else {
		p.scanner = newScanner(file)
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader.
func NewParserFromReader(r io.Reader) *Parser {
	return &Parser{scanner: newScanner(r)}
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	// Descriptor lines are short, but annotation fields can run long.
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return sc
}

// Next reads the next emittable descriptor record.
// Returns nil, nil when there are no more records.
func (p *Parser) Next() (*Record, error) {
	if p.done {
		return nil, nil
	}

	if p.current == nil {
		// Field lines before the first *NEWRECORD marker still accumulate,
		// so a file holding a single record with no marker parses cleanly.
		p.current = &Record{}
	}

	for p.scanner.Scan() {
		p.lineNumber++
		line := strings.TrimSpace(decodeLine(p.scanner.Bytes()))

		switch {
		case line == recordMarker:
			prev := p.current
			p.current = &Record{}
			if prev.valid() {
				return prev, nil
			}
		case strings.HasPrefix(line, fieldUI):
			p.current.UI = line[len(fieldUI):]
		case strings.HasPrefix(line, fieldMH):
			p.current.Name = line[len(fieldMH):]
		case strings.HasPrefix(line, fieldMN):
			p.current.TreeNumbers = append(p.current.TreeNumbers, line[len(fieldMN):])
		}
	}

	if err := p.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mesh descriptor file at line %d: %w", p.lineNumber, err)
	}

	// Flush the last record: no trailing *NEWRECORD marks its end.
	p.done = true
	if p.current != nil && p.current.valid() {
		last := p.current
		p.current = nil
		return last, nil
	}
	return nil, nil
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// decodeLine converts a raw line to a string, substituting invalid byte
// sequences with the Unicode replacement character. The descriptor file is
// ~30MB of mostly ASCII with occasional encoding irregularities; a bad byte
// must never abort the parse.
func decodeLine(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

// ParseFile parses an entire descriptor file into memory.
func ParseFile(path string) ([]*Record, error) {
	p, err := NewParser(path)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return collect(p)
}

// Parse parses all descriptor records from a reader.
func Parse(r io.Reader) ([]*Record, error) {
	return collect(NewParserFromReader(r))
}

func collect(p *Parser) ([]*Record, error) {
	var records []*Record
	for {
		rec, err := p.Next()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return records, nil
		}
		records = append(records, rec)
	}
}
