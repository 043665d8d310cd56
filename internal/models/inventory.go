package models

import "fmt"

// Domain selects which inventory variant a command operates on.
type Domain string

const (
	DomainFTM   Domain = "FTM"
	DomainMetro Domain = "Metro"
)

// Witel is one regional operating area served by the bot.
type Witel struct {
	Name string // display name, e.g. "Malang"
	Code string // table suffix, e.g. "mlg"
}

// Witels lists the supported regions in fixed menu order.
var Witels = []Witel{
	{Name: "Malang", Code: "mlg"},
	{Name: "Madiun", Code: "mdn"},
	{Name: "Kediri", Code: "kdr"},
}

// WitelByName resolves a display name (case-sensitive, as carried in button
// payloads) to its Witel entry.
func WitelByName(name string) (Witel, bool) {
	for _, w := range Witels {
		if w.Name == name {
			return w, true
		}
	}
	return Witel{}, false
}

// FTMRecord is one fiber-distribution row. All columns are stored as text;
// absent values come back as empty strings.
type FTMRecord struct {
	Witel                     string `json:"witel" db:"witel"`
	STO                       string `json:"sto" db:"sto"`
	NamaGPON                  string `json:"nama_gpon" db:"nama_gpon"`
	IP                        string `json:"ip" db:"ip"`
	Card                      string `json:"card" db:"card"`
	Port                      string `json:"port" db:"port"`
	NamaLemariFTMEakses       string `json:"nama_lemari_ftm_eakses" db:"nama_lemari_ftm_eakses"`
	NoPanelEakses             string `json:"no_panel_eakses" db:"no_panel_eakses"`
	NoPortPanelEakses         string `json:"no_port_panel_eakses" db:"no_port_panel_eakses"`
	NamaLemariFTMOakses       string `json:"nama_lemari_ftm_oakses" db:"nama_lemari_ftm_oakses"`
	NoPanelOakses             string `json:"no_panel_oakses" db:"no_panel_oakses"`
	NoPortPanelOakses         string `json:"no_port_panel_oakses" db:"no_port_panel_oakses"`
	NoCoreFeeder              string `json:"no_core_feeder" db:"no_core_feeder"`
	NamaSegmenFeederUtama     string `json:"nama_segmen_feeder_utama" db:"nama_segmen_feeder_utama"`
	StatusFeeder              string `json:"status_feeder" db:"status_feeder"`
	KapasitasKabelFeederUtama string `json:"kapasitas_kabel_feeder_utama" db:"kapasitas_kabel_feeder_utama"`
	NamaODC                   string `json:"nama_odc" db:"nama_odc"`
}

// MetroRecord is one metro uplink row.
type MetroRecord struct {
	Witel            string `json:"witel" db:"witel"`
	STO              string `json:"sto" db:"sto"`
	GPONHostname     string `json:"gpon_hostname" db:"gpon_hostname"`
	GPONIP           string `json:"gpon_ip" db:"gpon_ip"`
	GPONMerk         string `json:"gpon_merk" db:"gpon_merk"`
	GPONTipe         string `json:"gpon_tipe" db:"gpon_tipe"`
	GPONMerkTipe     string `json:"gpon_merk_tipe" db:"gpon_merk_tipe"`
	GPONIntf         string `json:"gpon_intf" db:"gpon_intf"`
	GPONLACP         string `json:"gpon_lacp" db:"gpon_lacp"`
	NeighborHostname string `json:"neighbor_hostname" db:"neighbor_hostname"`
	NeighborIntf     string `json:"neighbor_intf" db:"neighbor_intf"`
	NeighborLACP     string `json:"neighbor_lacp" db:"neighbor_lacp"`
	BW               string `json:"bw" db:"bw"`
	SFP              string `json:"sfp" db:"sfp"`
	VlanSIP          string `json:"vlan_sip" db:"vlan_sip"`
	VlanInternet     string `json:"vlan_internet" db:"vlan_internet"`
	Keterangan       string `json:"keterangan" db:"keterangan"`
	OTN              string `json:"otn" db:"otn"`
	Port             string `json:"port" db:"port"`
}

// DomainSpec describes everything the generic wizard and ingestion engine
// need to know about one inventory variant: which tables it lives in, its
// column contract, and which columns identify a usable row.
type DomainSpec struct {
	Domain       Domain
	TablePrefix  string   // e.g. "ftm_data"
	DeviceColumn string   // column holding the device name
	ThirdColumn  string   // extra distinct dimension for summaries (ODC / neighbor)
	Fields       []string // full column set in insert order
	Required     []string // columns that must be non-null for a row to survive ingestion
	StampWitel   bool     // overwrite the witel column with the selected witel on ingest
}

// Table returns the physical table for a witel code, e.g. "ftm_data_mlg".
func (s DomainSpec) Table(witelCode string) string {
	return fmt.Sprintf("%s_%s", s.TablePrefix, witelCode)
}

// FTMSpec is the fiber-distribution domain descriptor.
var FTMSpec = DomainSpec{
	Domain:       DomainFTM,
	TablePrefix:  "ftm_data",
	DeviceColumn: "nama_gpon",
	ThirdColumn:  "nama_odc",
	Fields: []string{
		"witel", "sto", "nama_gpon", "ip", "card", "port",
		"nama_lemari_ftm_eakses", "no_panel_eakses", "no_port_panel_eakses",
		"nama_lemari_ftm_oakses", "no_panel_oakses", "no_port_panel_oakses",
		"no_core_feeder", "nama_segmen_feeder_utama", "status_feeder",
		"kapasitas_kabel_feeder_utama", "nama_odc",
	},
	Required: []string{"sto", "nama_gpon", "card", "port"},
}

// MetroSpec is the metro-uplink domain descriptor.
var MetroSpec = DomainSpec{
	Domain:       DomainMetro,
	TablePrefix:  "metro_data",
	DeviceColumn: "gpon_hostname",
	ThirdColumn:  "neighbor_hostname",
	Fields: []string{
		"witel", "sto", "gpon_hostname", "gpon_ip", "gpon_merk", "gpon_tipe",
		"gpon_merk_tipe", "gpon_intf", "gpon_lacp",
		"neighbor_hostname", "neighbor_intf", "neighbor_lacp",
		"bw", "sfp", "vlan_sip", "vlan_internet", "keterangan", "otn", "port",
	},
	Required:   []string{"sto", "gpon_hostname", "gpon_intf", "neighbor_hostname"},
	StampWitel: true,
}

// SpecFor returns the descriptor for a domain.
func SpecFor(d Domain) DomainSpec {
	if d == DomainMetro {
		return MetroSpec
	}
	return FTMSpec
}
