package vcf

import "strings"

// GenotypeKind discriminates Genotype values.
type GenotypeKind int

const (
	// GenotypeMissing marks an uncalled genotype ("." or an absent GT field).
	GenotypeMissing GenotypeKind = iota
	// GenotypePhased marks a genotype whose alleles lie on known haplotype
	// copies ("|"-separated).
	GenotypePhased
	// GenotypeUnphased marks a genotype with unknown haplotype assignment
	// ("/"-separated).
	GenotypeUnphased
)

// Genotype is the parsed form of a GT value: a kind plus one alt-presence
// bit per haplotype copy. Alts is nil iff Kind is GenotypeMissing.
type Genotype struct {
	Kind GenotypeKind
	Alts []bool
}

func isGTSep(r rune) bool { return r == '|' || r == '/' }

// ParseGenotype parses a raw GT value such as "0|1", "1/1" or ".".
//
// An empty value or one whose every allele is "." yields a Missing
// genotype. Any "/" separator makes the genotype Unphased; otherwise it is
// Phased, including the single-allele case (a lone haplotype call carries
// its own phase). An allele of "0", or a "." inside an otherwise-called
// genotype, contributes a false alt bit; anything else contributes true.
func ParseGenotype(s string) Genotype {
	if s == "" || s == "." {
		return Genotype{Kind: GenotypeMissing}
	}
	kind := GenotypePhased
	if strings.IndexByte(s, '/') >= 0 {
		kind = GenotypeUnphased
	}
	alleles := strings.FieldsFunc(s, isGTSep)
	alts := make([]bool, 0, len(alleles))
	nMissing := 0
	for _, a := range alleles {
		if a == "." {
			nMissing++
			alts = append(alts, false)
			continue
		}
		alts = append(alts, a != "0")
	}
	if len(alleles) == 0 || nMissing == len(alleles) {
		return Genotype{Kind: GenotypeMissing}
	}
	return Genotype{Kind: kind, Alts: alts}
}

// RefHom reports whether every haplotype copy carries the reference allele.
// A Missing genotype is never homozygous-reference.
func (g Genotype) RefHom() bool {
	if g.Kind == GenotypeMissing {
		return false
	}
	for _, alt := range g.Alts {
		if alt {
			return false
		}
	}
	return true
}
