package vcf

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

var errEOF = errors.New("eof")

// Scanner reads a VCF stream: the header is consumed on construction, then
// one record per Scan call. Scanners are not threadsafe.
type Scanner struct {
	b      *bufio.Scanner
	header *Header
	err    error
	line   int
}

// NewScanner consumes the header of the VCF stream and returns a Scanner
// for its records. It fails if the stream has no "#CHROM" line.
func NewScanner(r io.Reader) (*Scanner, error) {
	b := bufio.NewScanner(r)
	// Genotype lines for large cohorts exceed bufio's default line cap.
	b.Buffer(make([]byte, 0, 64<<10), 64<<20)
	s := &Scanner{b: b, header: &Header{}}
	for s.b.Scan() {
		s.line++
		line := s.b.Text()
		if strings.HasPrefix(line, "##") {
			s.header.Meta = append(s.header.Meta, line)
			continue
		}
		if strings.HasPrefix(line, "#") {
			cols := strings.Split(line, "\t")
			if len(cols) > nFixedCols+1 {
				s.header.Samples = cols[nFixedCols+1:]
			}
			return s, nil
		}
		return nil, errors.Errorf("vcf: line %d: data line before the #CHROM header", s.line)
	}
	if err := s.b.Err(); err != nil {
		return nil, err
	}
	return nil, errors.New("vcf: missing #CHROM header line")
}

// Header returns the parsed stream header.
func (s *Scanner) Header() *Header { return s.header }

// Scan reads the next record into rec. It returns false at end of stream or
// on error; the caller should check Err once Scan returns false.
func (s *Scanner) Scan(rec *Record) bool {
	if s.err != nil {
		return false
	}
	for s.b.Scan() {
		s.line++
		line := s.b.Text()
		if line == "" {
			continue
		}
		if err := parseRecord(line, s.header, rec); err != nil {
			s.err = errors.Wrapf(err, "line %d", s.line)
			return false
		}
		return true
	}
	if s.err = s.b.Err(); s.err == nil {
		s.err = errEOF
	}
	return false
}

// Err returns the first error encountered, or nil at a clean end of stream.
func (s *Scanner) Err() error {
	if s.err == errEOF {
		return nil
	}
	return s.err
}
