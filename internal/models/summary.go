package models

// STOCount pairs a site code with its row count for per-STO breakdowns.
type STOCount struct {
	STO   string `json:"sto"`
	Count int    `json:"count"`
}

// RegionSummary is the aggregate shape for one witel.
type RegionSummary struct {
	TotalRecords int        `json:"total_records"`
	TotalSTO     int        `json:"total_sto"`
	TotalDevices int        `json:"total_devices"`
	TotalThird   int        `json:"total_third"` // ODC (FTM) / neighbor hostnames (Metro)
	PerSTO       []STOCount `json:"per_sto"`
}

// SiteSummary is the aggregate shape for one STO, with a bounded row sample.
type SiteSummary struct {
	TotalRecords int         `json:"total_records"`
	TotalGPON    int         `json:"total_gpon"`
	TotalCard    int         `json:"total_card"`
	TotalODC     int         `json:"total_odc"`
	Sample       []FTMRecord `json:"sample"`
}
