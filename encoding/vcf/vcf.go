// Package vcf implements a minimal streaming codec for the Variant Call
// Format: tab-delimited records with positional columns CHROM, POS, ID, REF,
// ALT, QUAL, FILTER, INFO, FORMAT, then one genotype column per sample.
//
// The codec preserves record text verbatim apart from explicit edits
// (AddInfo); it does not validate INFO or FILTER semantics.
package vcf

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// nFixedCols is the number of positional columns before FORMAT.
const nFixedCols = 8

// Header holds the meta lines and sample names of a VCF stream.
type Header struct {
	// Meta contains the "##" meta-information lines, verbatim, in file order.
	Meta []string
	// Samples contains the sample names from the "#CHROM" line, in column
	// order. Empty for a sites-only VCF.
	Samples []string
}

// SamplesEqual reports whether two headers describe the same sample columns.
func (h *Header) SamplesEqual(other *Header) bool {
	if h == other {
		return true
	}
	if len(h.Samples) != len(other.Samples) {
		return false
	}
	for i, s := range h.Samples {
		if other.Samples[i] != s {
			return false
		}
	}
	return true
}

// Record is a single VCF data line. All fields are raw text except Pos and
// Format. Records written by a Scanner into a cluster buffer are owned by
// that buffer until resolved.
type Record struct {
	Chrom  string
	Pos    uint64 // 1-based
	ID     string
	Ref    string
	Alt    string
	Qual   string
	Filter string
	Info   string
	// Format lists the per-sample field keys, e.g. ["GT", "DP"].
	Format []string
	// samples[i] holds the raw field values of sample i, aligned to Format.
	samples [][]string

	header *Header
}

// Header returns the header of the stream the record was read from.
func (r *Record) Header() *Header { return r.header }

// SiteEnd returns the last (1-based) reference position spanned by the
// record's REF allele.
func (r *Record) SiteEnd() uint64 { return r.Pos + uint64(len(r.Ref)) - 1 }

// Genotype returns the raw value of the given FORMAT key for the sample at
// sampleIdx, or "" when the key or the sample column is absent.
func (r *Record) Genotype(sampleIdx int, key string) string {
	if sampleIdx < 0 || sampleIdx >= len(r.samples) {
		return ""
	}
	for ki, k := range r.Format {
		if k == key {
			values := r.samples[sampleIdx]
			if ki >= len(values) {
				return ""
			}
			return values[ki]
		}
	}
	return ""
}

// AddInfo appends key=value to the INFO column, replacing a bare ".".
func (r *Record) AddInfo(key, value string) {
	if r.Info == "" || r.Info == "." {
		r.Info = key + "=" + value
		return
	}
	r.Info += ";" + key + "=" + value
}

// parseRecord fills rec from a raw data line belonging to the stream
// described by h. The previous contents of rec are discarded.
func parseRecord(line string, h *Header, rec *Record) error {
	cols := strings.Split(line, "\t")
	if len(cols) < nFixedCols {
		return errors.Errorf("vcf: %d column(s), want at least %d", len(cols), nFixedCols)
	}
	pos, err := strconv.ParseUint(cols[1], 10, 64)
	if err != nil {
		return errors.Errorf("vcf: malformed POS %q", cols[1])
	}
	if cols[3] == "" {
		return errors.New("vcf: empty REF")
	}
	rec.Chrom = cols[0]
	rec.Pos = pos
	rec.ID = cols[2]
	rec.Ref = cols[3]
	rec.Alt = cols[4]
	rec.Qual = cols[5]
	rec.Filter = cols[6]
	rec.Info = cols[7]
	rec.Format = nil
	rec.samples = nil
	rec.header = h
	if len(cols) > nFixedCols {
		rec.Format = strings.Split(cols[nFixedCols], ":")
		for _, col := range cols[nFixedCols+1:] {
			rec.samples = append(rec.samples, strings.Split(col, ":"))
		}
	}
	if len(rec.samples) != len(h.Samples) {
		return errors.Errorf("vcf: %d genotype column(s), header names %d sample(s)",
			len(rec.samples), len(h.Samples))
	}
	return nil
}

// Parse parses a single data line in the context of header h.
func Parse(line string, h *Header) (*Record, error) {
	rec := &Record{}
	if err := parseRecord(line, h, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// String returns the tab-delimited text form of the record, without a
// trailing newline.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteString(r.Chrom)
	b.WriteByte('\t')
	b.WriteString(strconv.FormatUint(r.Pos, 10))
	for _, col := range []string{r.ID, r.Ref, r.Alt, r.Qual, r.Filter, r.Info} {
		b.WriteByte('\t')
		b.WriteString(col)
	}
	if len(r.Format) > 0 {
		b.WriteByte('\t')
		b.WriteString(strings.Join(r.Format, ":"))
		for _, sample := range r.samples {
			b.WriteByte('\t')
			b.WriteString(strings.Join(sample, ":"))
		}
	}
	return b.String()
}
