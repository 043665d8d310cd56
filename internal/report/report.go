// Package report renders read-only inventory summaries: region and site
// aggregates, per-device detail, metro link groups, and the master-list site
// status cross-check.
package report

import (
	"fmt"
	"strings"

	"github.com/hawaesanda/BotFTM-master/internal/models"
)

// RegionSummaryText renders the aggregate counts for one witel with its
// per-STO breakdown.
func RegionSummaryText(witelName string, s *models.RegionSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Ringkasan Data FTM - %s*\n\n", witelName)
	fmt.Fprintf(&b, "📈 *Total Records:* %d\n", s.TotalRecords)
	fmt.Fprintf(&b, "🏢 *Total STO:* %d\n", s.TotalSTO)
	fmt.Fprintf(&b, "🌐 *Total GPON:* %d\n", s.TotalDevices)
	fmt.Fprintf(&b, "🏗 *Total ODC:* %d\n\n", s.TotalThird)
	b.WriteString("📋 *Detail per STO:*\n")
	for _, c := range s.PerSTO {
		fmt.Fprintf(&b, "• %s: %d records\n", c.STO, c.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}

// SiteDetailText renders the aggregate counts for one STO plus its bounded
// row sample.
func SiteDetailText(witelName, sto string, s *models.SiteSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏢 *Detail STO %s - %s*\n\n", sto, witelName)
	b.WriteString("📊 *Ringkasan:*\n")
	fmt.Fprintf(&b, "📈 Total Records: %d\n", s.TotalRecords)
	fmt.Fprintf(&b, "🌐 Total GPON: %d\n", s.TotalGPON)
	fmt.Fprintf(&b, "🔧 Total Card: %d\n", s.TotalCard)
	fmt.Fprintf(&b, "🏗 Total ODC: %d\n\n", s.TotalODC)
	fmt.Fprintf(&b, "📋 *Sample Data (%d pertama):*\n", len(s.Sample))
	for _, rec := range s.Sample {
		fmt.Fprintf(&b, "• %s | Card %s/%s | %s | %s\n",
			rec.NamaGPON, rec.Card, rec.Port, rec.NamaODC, rec.StatusFeeder)
	}
	if rest := s.TotalRecords - len(s.Sample); rest > 0 {
		fmt.Fprintf(&b, "\n_...dan %d data lainnya_", rest)
	}
	return strings.TrimRight(b.String(), "\n")
}

// DeviceDetailText renders the rows for one GPON across its STOs.
func DeviceDetailText(witelName, gpon string, rows []models.FTMRecord) string {
	if len(rows) == 0 {
		return fmt.Sprintf("❌ Tidak ditemukan data untuk GPON %s", gpon)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🌐 *Detail GPON %s - %s*\n\n", gpon, witelName)
	for _, rec := range rows {
		fmt.Fprintf(&b, "📍 *STO:* %s\n", rec.STO)
		fmt.Fprintf(&b, "🌐 *IP:* %s\n", rec.IP)
		fmt.Fprintf(&b, "🔧 *Card/Port:* %s/%s\n", rec.Card, rec.Port)
		fmt.Fprintf(&b, "🏗 *ODC:* %s\n", rec.NamaODC)
		fmt.Fprintf(&b, "🟢 *Status:* %s\n", rec.StatusFeeder)
		fmt.Fprintf(&b, "📡 *Lemari:* %s\n", rec.NamaLemariFTMEakses)
		fmt.Fprintf(&b, "🎛 *Panel:* %s/%s\n", rec.NoPanelEakses, rec.NoPortPanelEakses)
		b.WriteString("―――――――――――――――――――――\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FTMPortText renders one exact-match card/port row.
func FTMPortText(rec models.FTMRecord) string {
	var b strings.Builder
	b.WriteString("✅ *Data GPON Ditemukan!*\n")
	fmt.Fprintf(&b, "📌 *Witel:* %s\n", rec.Witel)
	fmt.Fprintf(&b, "🏢 *STO:* %s\n", rec.STO)
	fmt.Fprintf(&b, "🛜 *IP:* %s\n", rec.IP)
	fmt.Fprintf(&b, "🔢 *Nama GPON:* %s\n", rec.NamaGPON)
	fmt.Fprintf(&b, "🛠 *Card:* %s\n", rec.Card)
	fmt.Fprintf(&b, "🔌 *Port:* %s\n\n", rec.Port)
	fmt.Fprintf(&b, "📡 *Lemari FTM Eakses:* %s\n", rec.NamaLemariFTMEakses)
	fmt.Fprintf(&b, "🎛 *Panel Eakses:* %s (Port %s)\n\n", rec.NoPanelEakses, rec.NoPortPanelEakses)
	fmt.Fprintf(&b, "🟢 *Status Feeder:* %s\n", rec.StatusFeeder)
	fmt.Fprintf(&b, "🔗 *Nama Feeder:* %s\n\n", rec.NamaSegmenFeederUtama)
	fmt.Fprintf(&b, "🏢 *ODC:* %s", rec.NamaODC)
	return b.String()
}

// SiteStatusText cross-checks the canonical site list against the sites
// actually present in the store. Output keeps canonical master-list order.
func SiteStatusText(domain models.Domain, witelName string, canonical, present []string) string {
	presentSet := make(map[string]bool, len(present))
	for _, s := range present {
		presentSet[strings.ToUpper(s)] = true
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Status STO - %s - %s*\n\n", domain, witelName)
	for i, sto := range canonical {
		mark := "❌"
		if presentSet[sto] {
			mark = "✔️"
		}
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, sto, mark)
	}
	return strings.TrimRight(b.String(), "\n")
}
