// Package ingest replaces inventory rows for a set of sites with validated
// rows from an uploaded spreadsheet. The replace is all-or-nothing per
// invocation and scoped to the sites that appear in the upload.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/hawaesanda/BotFTM-master/internal/models"
)

var (
	// ErrFormat marks an upload that is not a recognized spreadsheet type.
	ErrFormat = errors.New("unsupported file format")
	// ErrParse marks a spreadsheet that could not be decoded into rows.
	ErrParse = errors.New("spreadsheet could not be parsed")
)

// Store is the write side of the inventory store.
type Store interface {
	ReplaceSites(ctx context.Context, spec models.DomainSpec, witel models.Witel, sites []string, rows []map[string]string) error
}

// MasterData validates STO codes against the canonical per-witel list.
type MasterData interface {
	Valid(d models.Domain, witelCode, sto string) bool
}

// Upload carries one spreadsheet received from the transport.
type Upload struct {
	FileName string
	MIMEType string
	Data     []byte
}

// Result summarizes one ingestion run.
type Result struct {
	RowsRead      int      // rows decoded from the spreadsheet
	Accepted      int      // rows written to the store
	TouchedSites  []string // sites whose rows were replaced, sorted
	RejectedSites []string // distinct sites dropped by the master-list filter, sorted
}

// RejectedSample returns up to n rejected site codes for user-facing summaries.
func (r *Result) RejectedSample(n int) []string {
	if len(r.RejectedSites) <= n {
		return r.RejectedSites
	}
	return r.RejectedSites[:n]
}

// Pipeline validates uploads and writes them through the store.
type Pipeline struct {
	store  Store
	master MasterData
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(store Store, master MasterData) *Pipeline {
	return &Pipeline{store: store, master: master}
}

// Ingest runs the full pipeline for one upload. It returns ErrFormat for a
// wrong MIME type, ErrParse when the bytes cannot be decoded, and a wrapped
// store error if the replace transaction fails. When zero rows survive
// validation the store is left untouched and the Result reports Accepted=0.
func (p *Pipeline) Ingest(ctx context.Context, spec models.DomainSpec, witel models.Witel, up Upload) (*Result, error) {
	if up.MIMEType != mimeXLSX && up.MIMEType != mimeXLS {
		return nil, fmt.Errorf("%w: %s", ErrFormat, up.MIMEType)
	}

	records, err := parseWorkbook(up.Data)
	if err != nil {
		// Raw decode errors go to the log only; the user sees a generic
		// re-prompt.
		log.Printf("[INGEST] parse failed for %s: %v", up.FileName, err)
		return nil, ErrParse
	}

	result := &Result{RowsRead: len(records)}

	projected := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		row := make(map[string]string, len(spec.Fields))
		for _, field := range spec.Fields {
			row[field] = rec[field]
		}
		row["sto"] = strings.ToUpper(strings.TrimSpace(row["sto"]))
		if spec.StampWitel {
			row["witel"] = witel.Name
		} else {
			row["witel"] = strings.TrimSpace(row["witel"])
		}
		if hasRequired(row, spec.Required) {
			projected = append(projected, row)
		}
	}

	rejected := make(map[string]bool)
	accepted := make([]map[string]string, 0, len(projected))
	for _, row := range projected {
		if p.master.Valid(spec.Domain, witel.Code, row["sto"]) {
			accepted = append(accepted, row)
		} else {
			rejected[row["sto"]] = true
		}
	}
	result.RejectedSites = sortedKeys(rejected)

	if len(accepted) == 0 {
		return result, nil
	}

	touched := make(map[string]bool)
	for _, row := range accepted {
		touched[row["sto"]] = true
	}
	result.TouchedSites = sortedKeys(touched)

	if err := p.store.ReplaceSites(ctx, spec, witel, result.TouchedSites, accepted); err != nil {
		return nil, fmt.Errorf("replace rows: %w", err)
	}

	result.Accepted = len(accepted)
	log.Printf("[INGEST] %s/%s: %d rows accepted, %d sites overwritten, %d sites rejected",
		spec.Domain, witel.Code, result.Accepted, len(result.TouchedSites), len(result.RejectedSites))
	return result, nil
}

// hasRequired reports whether every mandatory field carries a value.
func hasRequired(row map[string]string, required []string) bool {
	for _, f := range required {
		if strings.TrimSpace(row[f]) == "" {
			return false
		}
	}
	return true
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
