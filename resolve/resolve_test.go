package resolve

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"

	"github.com/cartoonist/forgers/encoding/vcf"
	"github.com/cartoonist/forgers/forge"
)

// resolveText runs the full pipeline over a VCF text and returns the output
// text, header included.
func resolveText(t *testing.T, input string, ranks forge.RegSiteMap) string {
	sc, err := vcf.NewScanner(strings.NewReader(input))
	assert.NoError(t, err)
	var buf bytes.Buffer
	w, err := vcf.NewWriter(&buf, sc.Header())
	assert.NoError(t, err)
	assert.NoError(t, Resolve(w, sc, ranks))
	assert.NoError(t, w.Flush())
	return buf.String()
}

// body strips the header lines from a VCF text.
func body(text string) []string {
	var recs []string
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		if line != "" && line[0] != '#' {
			recs = append(recs, line)
		}
	}
	return recs
}

func TestResolveIsolatedPassThrough(t *testing.T) {
	input := header1 +
		"20\t100\t.\tA\tT\t.\t.\t.\tGT\t1|0\n" +
		"20\t200\t.\tC\tG\t.\t.\t.\tGT\t0|1\n" +
		"20\t300\t.\tG\tA\t.\t.\t.\tGT\t1|1\n"
	expect.EQ(t, resolveText(t, input, forge.RegSiteMap{}), input)
}

func TestResolveHeaderOnly(t *testing.T) {
	expect.EQ(t, resolveText(t, header1, forge.RegSiteMap{}), header1)
}

func TestResolveSingleRecord(t *testing.T) {
	input := header1 + "20\t100\t.\tA\tT\t.\t.\t.\tGT\t1|0\n"
	expect.EQ(t, resolveText(t, input, forge.RegSiteMap{}), input)
}

// Equal positions on different chromosomes never cluster.
func TestResolveChromosomeBoundary(t *testing.T) {
	input := header1 +
		"20\t100\t.\tA\tT\t.\t.\t.\tGT\t1|0\n" +
		"21\t100\t.\tA\tG\t.\t.\t.\tGT\t1|0\n"
	expect.EQ(t, resolveText(t, input, forge.RegSiteMap{}), input)
}

func TestResolveConflictKeepsBestRank(t *testing.T) {
	input := header1 +
		"20\t200\t.\tCA\tC\t.\t.\t.\tGT\t1|0\n" +
		"20\t201\t.\tA\tG\t.\t.\t.\tGT\t1|0\n"
	ranks := forge.RegSiteMap{"20": forge.SiteMap{200: 5, 201: 2}}
	out := body(resolveText(t, input, ranks))
	expect.EQ(t, out, []string{"20\t201\t.\tA\tG\t.\t.\t.\tGT\t1|0"})
}

// A trailing cluster must be resolved at end of stream, and records after a
// cluster break must keep flowing.
func TestResolveClusterBreakAndFinalFlush(t *testing.T) {
	input := header1 +
		"20\t100\t.\tA\tT\t.\t.\t.\tGT\t1|0\n" + // isolated
		"20\t200\t.\tCA\tC\t.\t.\t.\tGT\t1|0\n" + // cluster 1
		"20\t201\t.\tA\tG\t.\t.\t.\tGT\t1|0\n" +
		"20\t300\t.\tG\tC\t.\t.\t.\tGT\t0|1\n" + // isolated
		"20\t400\t.\tTA\tT\t.\t.\t.\tGT\t0|1\n" + // trailing cluster
		"20\t401\t.\tA\tC\t.\t.\t.\tGT\t0|1\n"
	ranks := forge.RegSiteMap{"20": forge.SiteMap{201: 1, 401: 2, 200: 3, 400: 4}}
	out := body(resolveText(t, input, ranks))
	expect.EQ(t, out, []string{
		"20\t100\t.\tA\tT\t.\t.\t.\tGT\t1|0",
		"20\t201\t.\tA\tG\t.\t.\t.\tGT\t1|0",
		"20\t300\t.\tG\tC\t.\t.\t.\tGT\t0|1",
		"20\t401\t.\tA\tC\t.\t.\t.\tGT\t0|1",
	})
}

// Overlapping but compatible records pass through untouched and in order.
func TestResolveCompatibleOverlaps(t *testing.T) {
	input := header2 +
		"20\t14370\t.\tGTTT\tG\t29\t.\t.\tGT\t0|0\t1|0\n" +
		"20\t14370\t.\tG\tT\t29\t.\t.\tGT\t0|1\t1|0\n" +
		"20\t14370\t.\tG\tA\t29\t.\t.\tGT\t1|0\t0|0\n"
	expect.EQ(t, resolveText(t, input, forge.RegSiteMap{}), input)
}

// A chain of pairwise-overlapping sites forms one cluster even when the
// first and the last record do not themselves overlap.
func TestResolveTransitiveCluster(t *testing.T) {
	input := header1 +
		"20\t100\t.\tAAAAA\tA\t.\t.\t.\tGT\t1|0\n" + // [100,104]
		"20\t104\t.\tAAAAA\tA\t.\t.\t.\tGT\t1|0\n" + // [104,108]
		"20\t108\t.\tA\tC\t.\t.\t.\tGT\t1|0\n" // [108,108], overlaps merged range only
	ranks := forge.RegSiteMap{"20": forge.SiteMap{108: 1, 100: 2, 104: 3}}
	out := body(resolveText(t, input, ranks))
	// Variant ranges exclude the anchor base, so only the last two records
	// conflict; the first survives alongside the best-ranked of the pair.
	expect.EQ(t, out, []string{
		"20\t100\t.\tAAAAA\tA\t.\t.\t.\tGT\t1|0",
		"20\t108\t.\tA\tC\t.\t.\t.\tGT\t1|0",
	})
}

func TestResolveOrderPreservedAndIdempotent(t *testing.T) {
	input := header2 +
		"20\t100\t.\tA\tT\t.\t.\t.\tGT\t1|0\t0|0\n" +
		"20\t150\t.\tCA\tC\t.\t.\t.\tGT\t0|1\t1|0\n" +
		"20\t151\t.\tA\tG\t.\t.\t.\tGT\t0|1\t0|0\n" +
		"20\t151\t.\tA\tC\t.\t.\t.\tGT\t1|0\t0|1\n" +
		"21\t151\t.\tG\tC\t.\t.\t.\tGT\t./.\t.\n"
	ranks := forge.RegSiteMap{"20": forge.SiteMap{151: 1, 150: 2, 100: 3}}
	out := resolveText(t, input, ranks)

	inputOrder := map[string]int{}
	for i, line := range body(input) {
		inputOrder[line] = i
	}
	prev := -1
	for _, line := range body(out) {
		idx, ok := inputOrder[line]
		if !ok {
			t.Fatalf("output line not present in input: %q", line)
		}
		expect.True(t, idx > prev, "output out of order at %q", line)
		prev = idx
	}

	expect.EQ(t, resolveText(t, out, ranks), out)
}

// Driving the Resolver by hand: Flush on a fresh Resolver is a no-op, and
// Flush after a lone Add emits that record.
func TestResolverFlush(t *testing.T) {
	recs := scanAll(t, header1+"20\t100\t.\tA\tT\t.\t.\t.\tGT\t1|0\n")
	var buf bytes.Buffer
	w, err := vcf.NewWriter(&buf, recs[0].Header())
	assert.NoError(t, err)
	r := NewResolver(w, forge.RegSiteMap{})
	assert.NoError(t, r.Flush())
	assert.NoError(t, w.Flush())
	expect.EQ(t, len(body(buf.String())), 0)

	assert.NoError(t, r.Add(recs[0]))
	assert.NoError(t, r.Flush())
	assert.NoError(t, w.Flush())
	expect.EQ(t, body(buf.String()), []string{"20\t100\t.\tA\tT\t.\t.\t.\tGT\t1|0"})
}
