// Package master holds the authoritative per-witel STO code lists. The data
// is static reference material: inventory rows whose STO is not on the list
// for their witel are rejected during ingestion and flagged in the site
// status report. List order is the canonical reporting order.
package master

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hawaesanda/BotFTM-master/internal/models"
)

//go:embed sites.yaml
var embeddedSites []byte

// Master is the loaded reference data: domain key -> witel code -> STO codes.
type Master struct {
	domains map[string]map[string][]string
}

// Load parses the embedded reference data.
func Load() (*Master, error) {
	return parse(embeddedSites)
}

// LoadFile parses reference data from an external file, overriding the
// embedded copy.
func LoadFile(path string) (*Master, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read master file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Master, error) {
	var raw map[string]map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode master data: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("master data is empty")
	}
	return &Master{domains: raw}, nil
}

func domainKey(d models.Domain) string {
	return strings.ToLower(string(d))
}

// Sites returns the canonical STO list for a domain and witel code, in
// master-list order. Unknown combinations yield an empty list.
func (m *Master) Sites(d models.Domain, witelCode string) []string {
	witels, ok := m.domains[domainKey(d)]
	if !ok {
		return nil
	}
	return witels[witelCode]
}

// Valid reports whether the (already normalized, upper-case) STO code is on
// the canonical list for the domain and witel.
func (m *Master) Valid(d models.Domain, witelCode, sto string) bool {
	for _, s := range m.Sites(d, witelCode) {
		if s == sto {
			return true
		}
	}
	return false
}
