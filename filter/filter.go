// Package filter copies the VCF records present in a FORGe ranking to the
// output stream, optionally annotating each kept record with its rank.
package filter

import (
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
	"v.io/x/lib/vlog"

	"github.com/cartoonist/forgers/encoding/vcf"
	"github.com/cartoonist/forgers/forge"
)

// Opts controls Filter.
type Opts struct {
	// Annotate adds "<InfoKey>=<rank>" to the INFO column of kept records.
	Annotate bool
	// InfoKey is the INFO key used by Annotate.
	InfoKey string
	// Report, when non-nil, receives a CHROM/POS/RANK TSV of kept records.
	Report io.Writer
}

// DefaultOpts holds the flag defaults.
var DefaultOpts = Opts{
	Annotate: false,
	InfoKey:  "FORGE",
}

// Filter copies the ranked records from sc to w. Records whose (CHROM, POS)
// is absent from ranks are dropped.
func Filter(w *vcf.Writer, sc *vcf.Scanner, ranks forge.RegSiteMap, opts Opts) error {
	infoKey := opts.InfoKey
	if infoKey == "" {
		infoKey = DefaultOpts.InfoKey
	}
	var report *tsv.Writer
	if opts.Report != nil {
		report = tsv.NewWriter(opts.Report)
		report.WriteString("#CHROM")
		report.WriteString("POS")
		report.WriteString("RANK")
		if err := report.EndLine(); err != nil {
			return err
		}
	}

	nSeen, nKept := 0, 0
	var rec vcf.Record
	for sc.Scan(&rec) {
		nSeen++
		rank, ok := ranks.Rank(rec.Chrom, rec.Pos)
		if !ok {
			vlog.VI(2).Infof("filter: dropping unranked site %s:%d", rec.Chrom, rec.Pos)
			continue
		}
		if opts.Annotate {
			rec.AddInfo(infoKey, strconv.Itoa(rank))
		}
		if err := w.Write(&rec); err != nil {
			return err
		}
		if report != nil {
			report.WriteString(rec.Chrom)
			report.WriteString(strconv.FormatUint(rec.Pos, 10))
			report.WriteString(strconv.Itoa(rank))
			if err := report.EndLine(); err != nil {
				return err
			}
		}
		nKept++
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if report != nil {
		if err := report.Flush(); err != nil {
			return err
		}
	}
	vlog.VI(1).Infof("filter: kept %d of %d record(s)", nKept, nSeen)
	return nil
}
