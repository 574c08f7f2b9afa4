package resolve

import (
	"math"
	"sort"

	"github.com/grailbio/base/log"

	"github.com/cartoonist/forgers/encoding/vcf"
	"github.com/cartoonist/forgers/forge"
)

// worstRank sorts unranked records after every ranked one.
const worstRank = math.MaxInt

// rankOf returns a record's FORGe rank, or worstRank for an unranked site.
func rankOf(rec *vcf.Record, ranks forge.RegSiteMap) int {
	if rank, ok := ranks.Rank(rec.Chrom, rec.Pos); ok {
		return rank
	}
	return worstRank
}

// resolveCluster picks the indices of the records to keep from a cluster of
// overlapping sites, in ascending order.
//
// Records are swept left to right. Each record not yet claimed by an
// earlier group anchors a new conflict group: every later record
// conflicting with the anchor is claimed into the group, and the
// group's best-ranked member survives. Ties keep the leftmost member.
// Conflicts are tested against the anchor only, not pairwise among group
// members, so a chain A~B, B~C with compatible A and C leaves C to anchor
// its own group.
//
// Returning the survivors sorted ascending preserves the input order of the
// output stream.
func resolveCluster(cluster []*vcf.Record, ranks forge.RegSiteMap) []int {
	for idx, rec := range cluster {
		log.Debug.Printf("  [%d] %s:%d\trank=%d", idx, rec.Chrom, rec.Pos, rankOf(rec, ranks))
	}

	claimed := make([]bool, len(cluster))
	var selected []int
	for idx := range cluster {
		if claimed[idx] {
			continue
		}
		bestIdx := idx
		bestRank := rankOf(cluster[idx], ranks)
		for cursor := idx + 1; cursor < len(cluster); cursor++ {
			if !conflicting(cluster[idx], cluster[cursor]) {
				continue
			}
			claimed[cursor] = true
			if rank := rankOf(cluster[cursor], ranks); rank < bestRank {
				bestRank = rank
				bestIdx = cursor
			}
		}
		// A record claimed by an earlier anchor can win a later group too;
		// emit it once.
		dup := false
		for _, sel := range selected {
			if sel == bestIdx {
				dup = true
				break
			}
		}
		if !dup {
			selected = append(selected, bestIdx)
		}
	}
	sort.Ints(selected)
	log.Debug.Printf("resolve: selected %v", selected)
	return selected
}
