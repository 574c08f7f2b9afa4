package resolve

import "github.com/cartoonist/forgers/encoding/vcf"

// posRange is an inclusive interval of 1-based reference positions.
type posRange struct {
	start, end uint64
}

// siteRange returns the reference span of a record's REF allele. A record
// at position 14370 with REF "GTTT" spans [14370, 14373]; this span drives
// cluster formation.
func siteRange(rec *vcf.Record) posRange {
	return posRange{start: rec.Pos, end: rec.SiteEnd()}
}

// variantRange returns the reference span actually altered by a record.
// The POS of a normalized indel names the shared base immediately before
// the inserted or deleted sequence, so when the site spans more than one
// base the first one is excluded: REF "GTTT" at 14370 alters [14371, 14373].
// Assumes left-aligned, parsimonious input.
func variantRange(rec *vcf.Record) posRange {
	r := siteRange(rec)
	if r.start != r.end {
		r.start++
	}
	return r
}

// overlaps reports whether two inclusive ranges share at least one position.
func (r posRange) overlaps(other posRange) bool {
	left, right := r, other
	if right.start < left.start {
		left, right = right, left
	}
	return right.start <= left.end
}

// merge returns the smallest range covering both r and other.
func (r posRange) merge(other posRange) posRange {
	merged := r
	if other.start < merged.start {
		merged.start = other.start
	}
	if other.end > merged.end {
		merged.end = other.end
	}
	return merged
}
