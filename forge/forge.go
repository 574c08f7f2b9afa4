// Package forge loads FORGe variant rankings. A ranking file is a sequence
// of whitespace-delimited "<chrom>,<pos>" tokens whose file order encodes
// priority: the first token has rank 1, the lowest and best rank.
package forge

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
)

// SiteMap maps a 1-based position to its rank.
type SiteMap map[uint64]int

// RegSiteMap maps a chromosome name to the ranks of its sites. It is built
// once by Load and read-only afterwards, so it may be shared by reference
// without locking.
type RegSiteMap map[string]SiteMap

// Rank returns the rank of (chrom, pos), if the site is ranked.
func (m RegSiteMap) Rank(chrom string, pos uint64) (int, bool) {
	sites, ok := m[chrom]
	if !ok {
		return 0, false
	}
	rank, ok := sites[pos]
	return rank, ok
}

// Len returns the number of ranked sites.
func (m RegSiteMap) Len() int {
	n := 0
	for _, sites := range m {
		n += len(sites)
	}
	return n
}

// ParseSiteID splits a ranking token of the form "<chrom>,<pos>". It fails
// when the token does not split into exactly two fields, the position is
// not a non-negative integer, or the chromosome is empty or non-ASCII.
func ParseSiteID(token string) (chrom string, pos uint64, err error) {
	ci := strings.IndexByte(token, ',')
	if ci < 0 || strings.IndexByte(token[ci+1:], ',') >= 0 {
		return "", 0, errors.E("not a <chrom>,<pos> pair:", token)
	}
	chrom = token[:ci]
	if chrom == "" {
		return "", 0, errors.E("empty chromosome in ranking token:", token)
	}
	for i := 0; i < len(chrom); i++ {
		if chrom[i] >= utf8.RuneSelf {
			return "", 0, errors.E("non-ASCII chromosome in ranking token:", token)
		}
	}
	if pos, err = strconv.ParseUint(token[ci+1:], 10, 64); err != nil {
		return "", 0, errors.E("malformed position in ranking token:", token)
	}
	return chrom, pos, nil
}

// Load reads a ranking stream, retaining at most floor(top*N) distinct
// sites, where N counts every token in the stream, malformed ones included.
// The first occurrence of a site gets the next sequential rank; duplicated
// and malformed tokens are logged and skipped, a duplicate keeping its
// original rank. A stream that reduces to a single unparsable token is an
// error; retaining fewer sites than requested is only a warning.
func Load(r io.Reader, top float64) (RegSiteMap, error) {
	if top < 0 || top > 1 {
		return nil, errors.E("top fraction out of range [0,1]:", top)
	}
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	var tokens []string
	for sc.Scan() {
		tokens = append(tokens, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(tokens) == 1 {
		if _, _, err := ParseSiteID(tokens[0]); err != nil {
			return nil, errors.E(err, "unusable single-entry ranking stream")
		}
	}

	n := int(top * float64(len(tokens)))
	ranks := make(RegSiteMap)
	nInserted := 0
	for _, token := range tokens {
		if nInserted >= n {
			break
		}
		chrom, pos, err := ParseSiteID(token)
		if err != nil {
			log.Printf("forge: warning: skipping malformed ranking entry %q", token)
			continue
		}
		sites := ranks[chrom]
		if sites == nil {
			sites = make(SiteMap)
			ranks[chrom] = sites
		}
		if prev, dup := sites[pos]; dup {
			log.Printf("forge: warning: duplicated site %s,%d keeps rank %d", chrom, pos, prev)
			continue
		}
		nInserted++
		sites[pos] = nInserted
	}
	if nInserted < n {
		log.Printf("forge: warning: ranking stream holds %d distinct site(s), wanted %d", nInserted, n)
	}
	log.Debug.Printf("forge: loaded %d ranked site(s) on %d chromosome(s)", nInserted, len(ranks))
	return ranks, nil
}

// LoadPath loads a ranking file, decompressing gzip by file extension.
func LoadPath(ctx context.Context, path string, top float64) (ranks RegSiteMap, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return nil, errors.E(err, "open ranking file:", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	reader := io.Reader(in.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		var gz *gzip.Reader
		if gz, err = gzip.NewReader(reader); err != nil {
			return nil, errors.E(err, "decompress ranking file:", path)
		}
		defer func() {
			if e := gz.Close(); e != nil && err == nil {
				err = e
			}
		}()
		reader = gz
	}
	return Load(reader, top)
}
