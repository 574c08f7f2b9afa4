package resolve

import (
	"github.com/grailbio/base/log"

	"github.com/cartoonist/forgers/encoding/vcf"
)

const gtKey = "GT"

// coupled reports whether some sample in the cohort carries the alternate
// alleles of both records on the same haplotype copy.
//
// Only phased genotype pairs can disprove coupling. When a genotype is
// missing for one record, the called site's heterozygosity decides; when
// both are missing, coupling cannot be disproven and is assumed. When at
// least one genotype is unphased, joint heterozygosity decides. The first
// coupled sample settles the answer; otherwise every sample is consulted.
//
// The two records must come from streams with identical sample columns;
// anything else is a broken precondition and panics.
func coupled(r1, r2 *vcf.Record) bool {
	h1, h2 := r1.Header(), r2.Header()
	if h1 == nil || h2 == nil || !h1.SamplesEqual(h2) {
		log.Panicf("resolve: inconsistent sample columns comparing %s:%d and %s:%d",
			r1.Chrom, r1.Pos, r2.Chrom, r2.Pos)
	}
	for i, sample := range h1.Samples {
		g1 := vcf.ParseGenotype(r1.Genotype(i, gtKey))
		g2 := vcf.ParseGenotype(r2.Genotype(i, gtKey))
		switch {
		case g1.Kind == vcf.GenotypeMissing && g2.Kind == vcf.GenotypeMissing:
			log.Printf("resolve: warning: sample %q has no genotype for either %s:%d or %s:%d; assuming coupled",
				sample, r1.Chrom, r1.Pos, r2.Chrom, r2.Pos)
			return true
		case g1.Kind == vcf.GenotypeMissing || g2.Kind == vcf.GenotypeMissing:
			log.Printf("resolve: warning: sample %q lacks a genotype for one of %s:%d and %s:%d; checking heterozygosity of the called site",
				sample, r1.Chrom, r1.Pos, r2.Chrom, r2.Pos)
			called := g1
			if g1.Kind == vcf.GenotypeMissing {
				called = g2
			}
			if !called.RefHom() {
				return true
			}
		case g1.Kind == vcf.GenotypePhased && g2.Kind == vcf.GenotypePhased:
			n := len(g1.Alts)
			if len(g2.Alts) < n {
				n = len(g2.Alts)
			}
			for k := 0; k < n; k++ {
				if g1.Alts[k] && g2.Alts[k] {
					log.Debug.Printf("resolve: alleles of %s:%d and %s:%d coupled in sample %q",
						r1.Chrom, r1.Pos, r2.Chrom, r2.Pos, sample)
					return true
				}
			}
		default:
			log.Printf("resolve: warning: unphased genotype(s) for sample %q at %s:%d and %s:%d; checking heterozygosity of both sites",
				sample, r1.Chrom, r1.Pos, r2.Chrom, r2.Pos)
			if !g1.RefHom() && !g2.RefHom() {
				return true
			}
		}
	}
	return false
}

// conflicting reports whether two records cannot both be kept: their
// variant ranges overlap and their alternate alleles are coupled in at
// least one sample.
//
// Overlapping sites are not necessarily conflicting. A normalized deletion
// GTTT>G at 14370 and a SNP G>T at the same position alter disjoint bases
// (the deletion spares its anchor base), so they may co-occur on one
// haplotype. Even two records altering the same base are compatible when no
// sample carries both alternate alleles on the same copy.
func conflicting(r1, r2 *vcf.Record) bool {
	return variantRange(r1).overlaps(variantRange(r2)) && coupled(r1, r2)
}
