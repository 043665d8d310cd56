package report

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/hawaesanda/BotFTM-master/internal/models"
)

// counter is a frequency count that remembers first-seen key order so that
// rendered tallies are deterministic.
type counter struct {
	keys   []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if key == "" {
		return
	}
	if _, seen := c.counts[key]; !seen {
		c.keys = append(c.keys, key)
	}
	c.counts[key]++
}

func (c *counter) String() string {
	if len(c.keys) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(c.keys))
	for _, k := range c.keys {
		parts = append(parts, fmt.Sprintf("%d × %s", c.counts[k], k))
	}
	return strings.Join(parts, ", ")
}

// linkGroup is one aggregated uplink bundle.
type linkGroup struct {
	sample    models.MetroRecord
	gponLACP  string
	extraLine string
	hideOTN   bool
	header    string
	gponIntfs []string
	nbrIntfs  []string
	sfp       *counter
	bw        *counter
}

// MetroLinkGroupTexts partitions the rows of one GPON hostname into link
// groups and renders one HTML message block per group. Rows without an OTN
// segment are grouped by their (gpon_lacp, neighbor_lacp) pair; rows passing
// through an OTN are grouped by gpon_hostname. Groups come out in first-seen
// order of their grouping key.
func MetroLinkGroupTexts(rows []models.MetroRecord) []string {
	var direct, transit []models.MetroRecord
	for _, row := range rows {
		if row.OTN == "" {
			direct = append(direct, row)
		} else {
			transit = append(transit, row)
		}
	}

	var groups []*linkGroup

	type lacpKey struct{ gpon, neighbor string }
	directIdx := make(map[lacpKey]*linkGroup)
	for _, row := range direct {
		key := lacpKey{orDash(row.GPONLACP), orDash(row.NeighborLACP)}
		g, ok := directIdx[key]
		if !ok {
			g = &linkGroup{
				sample:    row,
				gponLACP:  key.gpon,
				extraLine: fmt.Sprintf("🧭 <b>Neighbor LACP:</b> %s", html.EscapeString(key.neighbor)),
				hideOTN:   true,
				header:    "📅 <b>Data Metro (Tidak melalui OTN)</b>",
				sfp:       newCounter(),
				bw:        newCounter(),
			}
			directIdx[key] = g
			groups = append(groups, g)
		}
		g.collect(row)
	}

	transitIdx := make(map[string]*linkGroup)
	for _, row := range transit {
		key := orDash(row.GPONHostname)
		g, ok := transitIdx[key]
		if !ok {
			g = &linkGroup{
				sample:   row,
				gponLACP: orDash(row.GPONLACP),
				header:   "📅 <b>Data Metro</b>",
				sfp:      newCounter(),
				bw:       newCounter(),
			}
			transitIdx[key] = g
			groups = append(groups, g)
		}
		g.collect(row)
	}

	texts := make([]string, 0, len(groups))
	for _, g := range groups {
		texts = append(texts, g.render())
	}
	return texts
}

func (g *linkGroup) collect(row models.MetroRecord) {
	if row.GPONIntf != "" {
		g.gponIntfs = append(g.gponIntfs, row.GPONIntf)
	}
	if row.NeighborIntf != "" {
		g.nbrIntfs = append(g.nbrIntfs, row.NeighborIntf)
	}
	g.sfp.add(row.SFP)
	g.bw.add(row.BW)
}

func (g *linkGroup) render() string {
	lines := []string{
		g.header,
		fmt.Sprintf("🖥 <b>GPON Hostname:</b> %s", html.EscapeString(orDash(g.sample.GPONHostname))),
		fmt.Sprintf("🌐 <b>GPON IP:</b> %s", html.EscapeString(orDash(g.sample.GPONIP))),
		fmt.Sprintf("🛠 <b>Merk/Tipe:</b> %s", html.EscapeString(orDash(g.sample.GPONMerkTipe))),
		fmt.Sprintf("🔗 <b>GPON LACP:</b> %s", html.EscapeString(g.gponLACP)),
	}
	if g.extraLine != "" {
		lines = append(lines, g.extraLine)
	}

	lines = append(lines, "🔌 <b>GPON Intf:</b>", bulletList(g.gponIntfs))

	if !g.hideOTN {
		if g.sample.OTN != "" {
			lines = append(lines, fmt.Sprintf("🧹 <b>OTN:</b> %s", html.EscapeString(g.sample.OTN)))
		}
		if g.sample.Port != "" {
			lines = append(lines, fmt.Sprintf("🔌 <b>Port:</b> %s", html.EscapeString(g.sample.Port)))
		}
	}

	lines = append(lines,
		"↔️ <b>Neighbor Intf:</b>",
		bulletList(g.nbrIntfs),
		fmt.Sprintf("💡 <b>SFP:</b> %s", html.EscapeString(g.sfp.String())),
		fmt.Sprintf("📆 <b>BW:</b> %s", html.EscapeString(g.bw.String())),
	)

	return strings.Join(lines, "\n")
}

// bulletList renders the sorted distinct values as stacked bullet lines.
func bulletList(values []string) string {
	seen := make(map[string]bool)
	var distinct []string
	for _, v := range values {
		if v != "" && !seen[v] {
			seen[v] = true
			distinct = append(distinct, v)
		}
	}
	if len(distinct) == 0 {
		return "-"
	}
	sort.Strings(distinct)
	lines := make([]string, len(distinct))
	for i, v := range distinct {
		lines[i] = "• " + html.EscapeString(v)
	}
	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
