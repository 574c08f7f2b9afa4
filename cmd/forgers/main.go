package main

/*
forgers manipulates VCF files based on a FORGe variant ranking.

	forgers [flags] resolve
	forgers [flags] filter [-top F] [-annotate] [-info-key KEY] [-report PATH]

resolve deduplicates overlapping records: runs of records whose REF spans
overlap are reduced so that at most one of each set of conflicting variants
survives, keeping the best-ranked one. filter keeps only the records whose
site appears in the ranking.

Input and output default to stdin/stdout ("-"); gzipped input is detected
from its content, compressed output is selected by the .gz/.bgz extension or
forced with -gzip.
*/

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/cartoonist/forgers/encoding/vcf"
	"github.com/cartoonist/forgers/filter"
	"github.com/cartoonist/forgers/forge"
	"github.com/cartoonist/forgers/resolve"
)

var (
	input     = flag.String("input", "-", "Input VCF path; '-' reads stdin. Gzip is detected from content")
	output    = flag.String("output", "-", "Output VCF path; '-' writes stdout. A .gz or .bgz extension enables compression")
	ranksPath = flag.String("ranks", "ordered.txt", "FORGe ranking file path")
	gzipOut   = flag.Bool("gzip", false, "Force gzip-compressed output")
)

func forgersUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <resolve|filter> [subcommand flags]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = forgersUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() < 1 {
		log.Fatalf("Missing subcommand; want 'resolve' or 'filter'")
	}
	ctx := vcontext.Background()
	var err error
	switch cmd := flag.Arg(0); cmd {
	case "resolve":
		if flag.NArg() > 1 {
			log.Fatalf("resolve takes no arguments; got '%v'", flag.Args()[1:])
		}
		err = runResolve(ctx)
	case "filter":
		err = runFilter(ctx, flag.Args()[1:])
	default:
		log.Fatalf("Unknown subcommand %q; want 'resolve' or 'filter'", cmd)
	}
	if err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
	log.Debug.Printf("exiting")
}

func runResolve(ctx context.Context) (err error) {
	ranks, err := forge.LoadPath(ctx, *ranksPath, 1.0)
	if err != nil {
		return err
	}
	sc, w, cleanup, err := openStreams(ctx)
	if err != nil {
		return err
	}
	defer cleanup(&err)
	return resolve.Resolve(w, sc, ranks)
}

func runFilter(ctx context.Context, args []string) (err error) {
	flags := flag.NewFlagSet("filter", flag.ExitOnError)
	var (
		top      = flags.Float64("top", 1.0, "Top fraction of the ranking to keep; 1 keeps all ranked sites")
		annotate = flags.Bool("annotate", filter.DefaultOpts.Annotate, "Annotate kept records with their rank in INFO")
		infoKey  = flags.String("info-key", filter.DefaultOpts.InfoKey, "INFO key used by -annotate")
		report   = flags.String("report", "", "Optional path of a CHROM/POS/RANK TSV of kept records")
	)
	if err = flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 0 {
		log.Fatalf("filter takes no arguments; got '%v'", flags.Args())
	}
	ranks, err := forge.LoadPath(ctx, *ranksPath, *top)
	if err != nil {
		return err
	}
	opts := filter.Opts{Annotate: *annotate, InfoKey: *infoKey}
	if *report != "" {
		reportOut, closeReport, e := createOutput(ctx, *report, false)
		if e != nil {
			return e
		}
		defer func() {
			if e := closeReport(); e != nil && err == nil {
				err = e
			}
		}()
		opts.Report = reportOut
	}
	sc, w, cleanup, err := openStreams(ctx)
	if err != nil {
		return err
	}
	defer cleanup(&err)
	return filter.Filter(w, sc, ranks, opts)
}

// openStreams plumbs the -input/-output/-gzip flags into a VCF scanner and
// a writer carrying the scanner's header. cleanup flushes the writer and
// closes both streams, reporting the first failure through errp.
func openStreams(ctx context.Context) (sc *vcf.Scanner, w *vcf.Writer, cleanup func(errp *error), err error) {
	in, closeIn, err := openInput(ctx, *input)
	if err != nil {
		return nil, nil, nil, err
	}
	if sc, err = vcf.NewScanner(in); err != nil {
		_ = closeIn()
		return nil, nil, nil, err
	}
	out, closeOut, err := createOutput(ctx, *output, *gzipOut)
	if err != nil {
		_ = closeIn()
		return nil, nil, nil, err
	}
	if w, err = vcf.NewWriter(out, sc.Header()); err != nil {
		_ = closeOut()
		_ = closeIn()
		return nil, nil, nil, err
	}
	cleanup = func(errp *error) {
		if e := w.Flush(); e != nil && *errp == nil {
			*errp = e
		}
		if e := closeOut(); e != nil && *errp == nil {
			*errp = e
		}
		if e := closeIn(); e != nil && *errp == nil {
			*errp = e
		}
	}
	return sc, w, cleanup, nil
}
