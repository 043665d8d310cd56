package report

import (
	"strings"
	"testing"

	"github.com/hawaesanda/BotFTM-master/internal/models"
)

func TestRegionSummaryText(t *testing.T) {
	s := &models.RegionSummary{
		TotalRecords: 120,
		TotalSTO:     3,
		TotalDevices: 12,
		TotalThird:   24,
		PerSTO: []models.STOCount{
			{STO: "MLG", Count: 80},
			{STO: "BTU", Count: 40},
		},
	}
	text := RegionSummaryText("Malang", s)

	for _, want := range []string{
		"Ringkasan Data FTM - Malang",
		"*Total Records:* 120",
		"*Total STO:* 3",
		"*Total GPON:* 12",
		"*Total ODC:* 24",
		"• MLG: 80 records",
		"• BTU: 40 records",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
}

func TestSiteDetailText(t *testing.T) {
	s := &models.SiteSummary{
		TotalRecords: 42,
		TotalGPON:    4,
		TotalCard:    8,
		TotalODC:     6,
		Sample: []models.FTMRecord{
			{NamaGPON: "GPON-01", Card: "1", Port: "2", NamaODC: "ODC-MLG-01", StatusFeeder: "OK"},
		},
	}
	text := SiteDetailText("Malang", "MLG", s)

	if !strings.Contains(text, "Detail STO MLG - Malang") {
		t.Errorf("missing header in:\n%s", text)
	}
	if !strings.Contains(text, "Sample Data (1 pertama)") {
		t.Errorf("missing sample header in:\n%s", text)
	}
	if !strings.Contains(text, "GPON-01 | Card 1/2 | ODC-MLG-01 | OK") {
		t.Errorf("missing sample row in:\n%s", text)
	}
	// The sample is bounded; the remainder is announced, not listed.
	if !strings.Contains(text, "dan 41 data lainnya") {
		t.Errorf("missing remainder line in:\n%s", text)
	}

	s.TotalRecords = 1
	if text := SiteDetailText("Malang", "MLG", s); strings.Contains(text, "lainnya") {
		t.Errorf("remainder line should be absent when the sample is complete:\n%s", text)
	}
}

func TestSiteStatusText(t *testing.T) {
	canonical := []string{"BTU", "KPO", "MLG"}
	present := []string{"mlg", "BTU"} // store casing is not trusted

	text := SiteStatusText(models.DomainFTM, "Malang", canonical, present)

	if !strings.Contains(text, "Status STO - FTM - Malang") {
		t.Errorf("missing header in:\n%s", text)
	}
	for _, want := range []string{"1. BTU ✔️", "2. KPO ❌", "3. MLG ✔️"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
	// Output keeps master-list order.
	if strings.Index(text, "BTU") > strings.Index(text, "KPO") {
		t.Errorf("sites out of canonical order:\n%s", text)
	}
}

func TestMetroLinkGroupsDirect(t *testing.T) {
	rows := []models.MetroRecord{
		{GPONHostname: "GPON-A", GPONLACP: "Eth-Trunk1", NeighborLACP: "Eth-Trunk9", GPONIntf: "0/1", NeighborIntf: "1/0/1", SFP: "10G", BW: "10G"},
		{GPONHostname: "GPON-A", GPONLACP: "Eth-Trunk1", NeighborLACP: "Eth-Trunk9", GPONIntf: "0/2", NeighborIntf: "1/0/2", SFP: "10G", BW: "10G"},
		{GPONHostname: "GPON-A", GPONLACP: "Eth-Trunk2", NeighborLACP: "Eth-Trunk8", GPONIntf: "0/3", NeighborIntf: "1/0/3", SFP: "1G", BW: "1G"},
	}

	texts := MetroLinkGroupTexts(rows)
	if len(texts) != 2 {
		t.Fatalf("expected 2 link groups, got %d", len(texts))
	}

	first := texts[0]
	if !strings.Contains(first, "Tidak melalui OTN") {
		t.Errorf("direct group missing OTN-less header:\n%s", first)
	}
	if !strings.Contains(first, "<b>GPON LACP:</b> Eth-Trunk1") {
		t.Errorf("wrong LACP in first group:\n%s", first)
	}
	if !strings.Contains(first, "<b>Neighbor LACP:</b> Eth-Trunk9") {
		t.Errorf("missing neighbor LACP line:\n%s", first)
	}
	if !strings.Contains(first, "• 0/1\n• 0/2") {
		t.Errorf("member interfaces not stacked:\n%s", first)
	}
	if !strings.Contains(first, "<b>SFP:</b> 2 × 10G") {
		t.Errorf("SFP tally wrong:\n%s", first)
	}

	// Groups come out in first-seen order of their key.
	if !strings.Contains(texts[1], "Eth-Trunk2") {
		t.Errorf("second group should carry the second LACP pair:\n%s", texts[1])
	}
}

func TestMetroLinkGroupsTransit(t *testing.T) {
	rows := []models.MetroRecord{
		{GPONHostname: "GPON-B", OTN: "OTN-MLG-1", Port: "3", GPONLACP: "Eth-Trunk5", GPONIntf: "0/5", NeighborIntf: "2/0/5", SFP: "10G", BW: "10G"},
		{GPONHostname: "GPON-B", OTN: "OTN-MLG-1", Port: "3", GPONLACP: "Eth-Trunk5", GPONIntf: "0/6", NeighborIntf: "2/0/6", SFP: "10G", BW: "10G"},
	}

	texts := MetroLinkGroupTexts(rows)
	if len(texts) != 1 {
		t.Fatalf("expected 1 transit group, got %d", len(texts))
	}
	text := texts[0]
	if strings.Contains(text, "Tidak melalui OTN") {
		t.Errorf("transit group must not use the OTN-less header:\n%s", text)
	}
	if !strings.Contains(text, "<b>OTN:</b> OTN-MLG-1") {
		t.Errorf("missing OTN line:\n%s", text)
	}
	if !strings.Contains(text, "<b>Port:</b> 3") {
		t.Errorf("missing port line:\n%s", text)
	}
}

func TestMetroFieldsEscapedAndDashed(t *testing.T) {
	rows := []models.MetroRecord{
		{GPONHostname: "GPON<C>", OTN: "OTN-1", GPONIntf: "0/1"},
	}
	text := MetroLinkGroupTexts(rows)[0]

	if strings.Contains(text, "GPON<C>") {
		t.Errorf("hostname not HTML-escaped:\n%s", text)
	}
	if !strings.Contains(text, "GPON&lt;C&gt;") {
		t.Errorf("escaped hostname missing:\n%s", text)
	}
	if !strings.Contains(text, "<b>GPON IP:</b> -") {
		t.Errorf("empty fields should render as dash:\n%s", text)
	}
	if !strings.Contains(text, "<b>SFP:</b> -") {
		t.Errorf("empty tally should render as dash:\n%s", text)
	}
}

func TestDeviceDetailText(t *testing.T) {
	if text := DeviceDetailText("Malang", "GPON-01", nil); !strings.Contains(text, "Tidak ditemukan") {
		t.Errorf("empty result should report not found, got %q", text)
	}

	rows := []models.FTMRecord{
		{STO: "MLG", IP: "10.0.0.1", Card: "1", Port: "2", NamaODC: "ODC-1", StatusFeeder: "OK"},
		{STO: "BTU", IP: "10.0.0.2", Card: "3", Port: "4", NamaODC: "ODC-2", StatusFeeder: "OK"},
	}
	text := DeviceDetailText("Malang", "GPON-01", rows)
	if !strings.Contains(text, "Detail GPON GPON-01 - Malang") {
		t.Errorf("missing header:\n%s", text)
	}
	for _, want := range []string{"*STO:* MLG", "*STO:* BTU", "*Card/Port:* 1/2", "*Card/Port:* 3/4"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
}

func TestFTMPortText(t *testing.T) {
	rec := models.FTMRecord{
		Witel: "Malang", STO: "MLG", IP: "10.0.0.1", NamaGPON: "GPON-01",
		Card: "1", Port: "2", NamaLemariFTMEakses: "FTM-01",
		NoPanelEakses: "5", NoPortPanelEakses: "12",
		StatusFeeder: "OK", NamaSegmenFeederUtama: "FE-MLG-01", NamaODC: "ODC-MLG-01",
	}
	text := FTMPortText(rec)
	for _, want := range []string{
		"Data GPON Ditemukan",
		"*Nama GPON:* GPON-01",
		"*Card:* 1",
		"*Port:* 2",
		"*Panel Eakses:* 5 (Port 12)",
		"*ODC:* ODC-MLG-01",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
}
