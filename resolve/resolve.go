// Package resolve deduplicates overlapping variant records in a single pass
// over a sorted VCF stream. Consecutive records whose reference spans
// overlap are buffered into a cluster; within a cluster, records whose
// alternate alleles cannot coexist in any sample are reduced to the
// best-ranked representative, and everything else passes through unchanged,
// in input order.
//
// The input must be sorted by CHROM and POS with normalized (left-aligned,
// parsimonious) indel representations. The engine does not detect
// violations of this precondition.
package resolve

import (
	"github.com/grailbio/base/log"

	"github.com/cartoonist/forgers/encoding/vcf"
	"github.com/cartoonist/forgers/forge"
)

// state of the clusterer between records.
type state int

const (
	// stateEmpty: no record pending.
	stateEmpty state = iota
	// stateSingle: one record pending, not yet known to overlap anything.
	stateSingle
	// stateCluster: two or more pending records with overlapping spans.
	stateCluster
)

// Resolver consumes a sorted record stream via Add and writes the surviving
// records, preserving their input order. A pending cluster is resolved and
// written the moment a record breaks the overlap run, so memory use is
// bounded by the largest run of mutually overlapping records, not by the
// stream.
type Resolver struct {
	ranks forge.RegSiteMap
	w     *vcf.Writer

	state   state
	prev    *vcf.Record
	merged  posRange
	cluster []*vcf.Record
}

// NewResolver returns a Resolver writing survivors to w. ranks is treated
// as read-only.
func NewResolver(w *vcf.Writer, ranks forge.RegSiteMap) *Resolver {
	return &Resolver{ranks: ranks, w: w}
}

// Add feeds the next record of the sorted stream. The record is retained
// until it is emitted or discarded; the caller must not reuse it.
func (r *Resolver) Add(rec *vcf.Record) error {
	cur := siteRange(rec)
	switch r.state {
	case stateEmpty:
		r.prev = rec
		r.merged = cur
		r.state = stateSingle
		return nil
	case stateSingle:
		if rec.Chrom == r.prev.Chrom && r.merged.overlaps(cur) {
			r.cluster = append(r.cluster, r.prev, rec)
			r.merged = r.merged.merge(cur)
			r.prev = rec
			r.state = stateCluster
			return nil
		}
		err := r.w.Write(r.prev)
		r.prev = rec
		r.merged = cur
		return err
	default: // stateCluster
		if rec.Chrom == r.prev.Chrom && r.merged.overlaps(cur) {
			r.cluster = append(r.cluster, rec)
			r.merged = r.merged.merge(cur)
			r.prev = rec
			return nil
		}
		err := r.flushCluster()
		r.prev = rec
		r.merged = cur
		r.state = stateSingle
		return err
	}
}

// Flush resolves and writes whatever is pending and resets the Resolver.
// It must be called once at end of stream; the last record read is never
// dropped.
func (r *Resolver) Flush() error {
	var err error
	switch r.state {
	case stateSingle:
		err = r.w.Write(r.prev)
	case stateCluster:
		err = r.flushCluster()
	}
	r.state = stateEmpty
	r.prev = nil
	return err
}

func (r *Resolver) flushCluster() error {
	log.Debug.Printf("resolve: found a cluster of %d overlapping site(s)", len(r.cluster))
	selected := resolveCluster(r.cluster, r.ranks)
	for _, idx := range selected {
		if err := r.w.Write(r.cluster[idx]); err != nil {
			return err
		}
	}
	r.cluster = r.cluster[:0]
	return nil
}

// Resolve streams every record from sc through a Resolver into w. Scanner
// and writer errors abort the run; the output written so far remains.
func Resolve(w *vcf.Writer, sc *vcf.Scanner, ranks forge.RegSiteMap) error {
	resolver := NewResolver(w, ranks)
	for {
		rec := &vcf.Record{}
		if !sc.Scan(rec) {
			break
		}
		if err := resolver.Add(rec); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return resolver.Flush()
}
