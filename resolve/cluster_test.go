package resolve

import (
	"testing"

	"github.com/grailbio/testutil/expect"

	"github.com/cartoonist/forgers/forge"
)

func TestRankOf(t *testing.T) {
	ranks := forge.RegSiteMap{"20": forge.SiteMap{200: 5}}
	recs := scanAll(t, header1+
		"20\t200\t.\tG\tT\t.\t.\t.\tGT\t1|0\n"+
		"20\t201\t.\tA\tC\t.\t.\t.\tGT\t1|0\n")
	expect.EQ(t, rankOf(recs[0], ranks), 5)
	expect.EQ(t, rankOf(recs[1], ranks), worstRank)
}

// The best-ranked member of a conflict group survives, regardless of its
// position in the cluster.
func TestResolveClusterBestRankWins(t *testing.T) {
	cluster := scanAll(t, header1+
		"20\t200\t.\tCA\tC\t.\t.\t.\tGT\t1|0\n"+
		"20\t201\t.\tA\tG\t.\t.\t.\tGT\t1|0\n")
	ranks := forge.RegSiteMap{"20": forge.SiteMap{200: 5, 201: 2}}
	expect.EQ(t, resolveCluster(cluster, ranks), []int{1})

	ranks = forge.RegSiteMap{"20": forge.SiteMap{200: 2, 201: 5}}
	expect.EQ(t, resolveCluster(cluster, ranks), []int{0})
}

// Ties keep the leftmost record, and an unranked record always loses to a
// ranked one.
func TestResolveClusterTiesAndSentinel(t *testing.T) {
	cluster := scanAll(t, header1+
		"20\t200\t.\tG\tT\t.\t.\t.\tGT\t1|0\n"+
		"20\t200\t.\tG\tA\t.\t.\t.\tGT\t1|0\n")
	// Same site, same rank on both: the anchor wins the tie.
	ranks := forge.RegSiteMap{"20": forge.SiteMap{200: 2}}
	expect.EQ(t, resolveCluster(cluster, ranks), []int{0})

	// Neither ranked: still the anchor.
	expect.EQ(t, resolveCluster(cluster, forge.RegSiteMap{}), []int{0})

	// Ranked versus unranked across different sites.
	cluster = scanAll(t, header1+
		"20\t200\t.\tCA\tC\t.\t.\t.\tGT\t1|0\n"+
		"20\t201\t.\tA\tG\t.\t.\t.\tGT\t1|0\n")
	expect.EQ(t, resolveCluster(cluster, forge.RegSiteMap{"20": forge.SiteMap{201: 9}}), []int{1})
}

// Rank monotonicity: every dropped record conflicts with a survivor of
// equal or better rank.
func TestResolveClusterRankMonotonic(t *testing.T) {
	cluster := scanAll(t, header1+
		"20\t100\t.\tATTT\tA\t.\t.\t.\tGT\t1|0\n"+
		"20\t102\t.\tTT\tT\t.\t.\t.\tGT\t1|0\n"+
		"20\t103\t.\tT\tG\t.\t.\t.\tGT\t1|0\n")
	ranks := forge.RegSiteMap{"20": forge.SiteMap{100: 3, 102: 1, 103: 2}}
	selected := resolveCluster(cluster, ranks)
	expect.EQ(t, selected, []int{1})
	for _, idx := range selected {
		for other := range cluster {
			if other != idx && conflicting(cluster[idx], cluster[other]) {
				if rankOf(cluster[idx], ranks) > rankOf(cluster[other], ranks) {
					t.Errorf("survivor %d outranked by dropped record %d", idx, other)
				}
			}
		}
	}
}

// Conflict membership is tested against the anchor only. With A~B and B~C
// coupled but A and C on opposite haplotypes, the anchor A forms the group
// {A, B}; C anchors its own group and survives alongside the best of {A, B}.
// Full connected-component clustering would instead keep a single survivor;
// the anchor-centric policy is the deliberate choice here.
func TestResolveClusterNonTransitiveChain(t *testing.T) {
	cluster := scanAll(t, header1+
		"20\t100\t.\tATTT\tA\t.\t.\t.\tGT\t1|0\n"+ // A
		"20\t102\t.\tTT\tT\t.\t.\t.\tGT\t1|1\n"+ // B: coupled with both
		"20\t103\t.\tT\tG\t.\t.\t.\tGT\t0|1\n") // C: opposite copy from A
	expect.False(t, conflicting(cluster[0], cluster[2]))
	expect.True(t, conflicting(cluster[0], cluster[1]))
	expect.True(t, conflicting(cluster[1], cluster[2]))

	ranks := forge.RegSiteMap{"20": forge.SiteMap{100: 3, 102: 1, 103: 2}}
	expect.EQ(t, resolveCluster(cluster, ranks), []int{1, 2})
}

// Overlapping but compatible records all survive, in order.
func TestResolveClusterAllCompatible(t *testing.T) {
	cluster := scanAll(t, header2+
		"20\t14370\t.\tGTTT\tG\t.\t.\t.\tGT\t0|0\t1|0\n"+
		"20\t14370\t.\tG\tT\t.\t.\t.\tGT\t0|1\t1|0\n"+
		"20\t14370\t.\tG\tA\t.\t.\t.\tGT\t1|0\t0|0\n")
	expect.EQ(t, resolveCluster(cluster, forge.RegSiteMap{}), []int{0, 1, 2})
}
