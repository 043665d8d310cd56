package db

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/hawaesanda/BotFTM-master/internal/models"
)

// InventoryRepository handles inventory table access for both domains. Table
// names are derived from the domain descriptor and the fixed witel codes, so
// they never carry user input.
type InventoryRepository struct {
	db *Database
}

// NewInventoryRepository creates a new inventory repository.
func NewInventoryRepository(db *Database) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// DistinctSites returns the distinct STO codes stored for a witel, ascending.
func (r *InventoryRepository) DistinctSites(ctx context.Context, spec models.DomainSpec, witel models.Witel) ([]string, error) {
	query := fmt.Sprintf(
		"SELECT DISTINCT sto FROM %s WHERE LOWER(witel) = LOWER($1) ORDER BY sto",
		spec.Table(witel.Code),
	)
	rows, err := r.db.Pool.Query(ctx, query, witel.Name)
	if err != nil {
		return nil, fmt.Errorf("query distinct sto: %w", err)
	}
	defer rows.Close()
	return collectNonEmpty(rows)
}

// AllSites returns every distinct STO code in the table regardless of the
// stored witel value, upper-cased. The site status report checks presence
// against this set.
func (r *InventoryRepository) AllSites(ctx context.Context, spec models.DomainSpec, witel models.Witel) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT sto FROM %s", spec.Table(witel.Code))
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all sto: %w", err)
	}
	defer rows.Close()
	sites, err := collectNonEmpty(rows)
	if err != nil {
		return nil, err
	}
	for i := range sites {
		sites[i] = strings.ToUpper(sites[i])
	}
	return sites, nil
}

// DistinctDevices returns the device names stored for a witel and STO,
// deduplicated and sorted.
func (r *InventoryRepository) DistinctDevices(ctx context.Context, spec models.DomainSpec, witel models.Witel, sto string) ([]string, error) {
	query := fmt.Sprintf(
		"SELECT DISTINCT %s FROM %s WHERE LOWER(witel) = LOWER($1) AND LOWER(sto) = LOWER($2)",
		spec.DeviceColumn, spec.Table(witel.Code),
	)
	rows, err := r.db.Pool.Query(ctx, query, witel.Name, sto)
	if err != nil {
		return nil, fmt.Errorf("query distinct %s: %w", spec.DeviceColumn, err)
	}
	defer rows.Close()
	devices, err := collectNonEmpty(rows)
	if err != nil {
		return nil, err
	}
	sort.Strings(devices)
	return devices, nil
}

// RegionDevices returns the device names stored anywhere in a witel,
// deduplicated and sorted.
func (r *InventoryRepository) RegionDevices(ctx context.Context, spec models.DomainSpec, witel models.Witel) ([]string, error) {
	query := fmt.Sprintf(
		"SELECT DISTINCT %s FROM %s WHERE LOWER(witel) = LOWER($1)",
		spec.DeviceColumn, spec.Table(witel.Code),
	)
	rows, err := r.db.Pool.Query(ctx, query, witel.Name)
	if err != nil {
		return nil, fmt.Errorf("query region devices: %w", err)
	}
	defer rows.Close()
	devices, err := collectNonEmpty(rows)
	if err != nil {
		return nil, err
	}
	sort.Strings(devices)
	return devices, nil
}

// FTMPortRecords returns the exact-match rows for one card/port on a GPON.
// String columns are matched case-insensitively.
func (r *InventoryRepository) FTMPortRecords(ctx context.Context, witel models.Witel, sto, gpon string, card, port int) ([]models.FTMRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE LOWER(witel) = LOWER($1)
		  AND LOWER(sto) = LOWER($2)
		  AND LOWER(nama_gpon) = LOWER($3)
		  AND card = $4 AND port = $5`,
		ftmColumns, models.FTMSpec.Table(witel.Code),
	)
	rows, err := r.db.Pool.Query(ctx, query, witel.Name, sto, gpon, fmt.Sprint(card), fmt.Sprint(port))
	if err != nil {
		return nil, fmt.Errorf("query ftm port records: %w", err)
	}
	defer rows.Close()
	return scanFTMRows(rows)
}

// FTMDeviceRecords returns up to limit rows for one GPON across all its STOs,
// ordered by sto, card, port.
func (r *InventoryRepository) FTMDeviceRecords(ctx context.Context, witel models.Witel, gpon string, limit int) ([]models.FTMRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE LOWER(witel) = LOWER($1) AND LOWER(nama_gpon) = LOWER($2)
		ORDER BY sto, card, port
		LIMIT $3`,
		ftmColumns, models.FTMSpec.Table(witel.Code),
	)
	rows, err := r.db.Pool.Query(ctx, query, witel.Name, gpon, limit)
	if err != nil {
		return nil, fmt.Errorf("query ftm device records: %w", err)
	}
	defer rows.Close()
	return scanFTMRows(rows)
}

// MetroDeviceRecords returns every row for one GPON hostname within an STO.
func (r *InventoryRepository) MetroDeviceRecords(ctx context.Context, witel models.Witel, sto, hostname string) ([]models.MetroRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE LOWER(sto) = LOWER($1) AND LOWER(gpon_hostname) = LOWER($2)`,
		metroColumns, models.MetroSpec.Table(witel.Code),
	)
	rows, err := r.db.Pool.Query(ctx, query, sto, hostname)
	if err != nil {
		return nil, fmt.Errorf("query metro device records: %w", err)
	}
	defer rows.Close()
	return scanMetroRows(rows)
}

// RegionSummary returns aggregate counts for a witel plus its per-STO row
// breakdown.
func (r *InventoryRepository) RegionSummary(ctx context.Context, spec models.DomainSpec, witel models.Witel) (*models.RegionSummary, error) {
	table := spec.Table(witel.Code)
	query := fmt.Sprintf(`
		SELECT COUNT(*),
		       COUNT(DISTINCT sto),
		       COUNT(DISTINCT %s),
		       COUNT(DISTINCT %s)
		FROM %s
		WHERE LOWER(witel) = LOWER($1)`,
		spec.DeviceColumn, spec.ThirdColumn, table,
	)
	summary := &models.RegionSummary{}
	err := r.db.Pool.QueryRow(ctx, query, witel.Name).Scan(
		&summary.TotalRecords, &summary.TotalSTO, &summary.TotalDevices, &summary.TotalThird,
	)
	if err != nil {
		return nil, fmt.Errorf("query region summary: %w", err)
	}

	breakdown := fmt.Sprintf(`
		SELECT sto, COUNT(*) FROM %s
		WHERE LOWER(witel) = LOWER($1)
		GROUP BY sto ORDER BY sto`,
		table,
	)
	rows, err := r.db.Pool.Query(ctx, breakdown, witel.Name)
	if err != nil {
		return nil, fmt.Errorf("query sto breakdown: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c models.STOCount
		if err := rows.Scan(&c.STO, &c.Count); err != nil {
			return nil, fmt.Errorf("scan sto breakdown: %w", err)
		}
		summary.PerSTO = append(summary.PerSTO, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sto breakdown: %w", err)
	}
	return summary, nil
}

// SiteSummary returns aggregate counts for one STO plus a bounded sample of
// representative rows.
func (r *InventoryRepository) SiteSummary(ctx context.Context, witel models.Witel, sto string) (*models.SiteSummary, error) {
	table := models.FTMSpec.Table(witel.Code)
	query := fmt.Sprintf(`
		SELECT COUNT(*),
		       COUNT(DISTINCT nama_gpon),
		       COUNT(DISTINCT card),
		       COUNT(DISTINCT nama_odc)
		FROM %s
		WHERE LOWER(witel) = LOWER($1) AND LOWER(sto) = LOWER($2)`,
		table,
	)
	summary := &models.SiteSummary{}
	err := r.db.Pool.QueryRow(ctx, query, witel.Name, sto).Scan(
		&summary.TotalRecords, &summary.TotalGPON, &summary.TotalCard, &summary.TotalODC,
	)
	if err != nil {
		return nil, fmt.Errorf("query site summary: %w", err)
	}

	sample := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE LOWER(witel) = LOWER($1) AND LOWER(sto) = LOWER($2)
		ORDER BY nama_gpon, card, port
		LIMIT 10`,
		ftmColumns, table,
	)
	rows, err := r.db.Pool.Query(ctx, sample, witel.Name, sto)
	if err != nil {
		return nil, fmt.Errorf("query site sample: %w", err)
	}
	defer rows.Close()
	summary.Sample, err = scanFTMRows(rows)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ReplaceSites deletes every row whose STO is in sites and inserts the given
// rows, in one transaction. A failure anywhere rolls back, leaving the prior
// rows intact.
func (r *InventoryRepository) ReplaceSites(ctx context.Context, spec models.DomainSpec, witel models.Witel, sites []string, rowValues []map[string]string) error {
	table := spec.Table(witel.Code)

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	deleteSQL := fmt.Sprintf("DELETE FROM %s WHERE sto = ANY($1)", table)
	if _, err := tx.Exec(ctx, deleteSQL, sites); err != nil {
		return fmt.Errorf("delete rows for sites: %w", err)
	}

	placeholders := make([]string, len(spec.Fields))
	for i := range spec.Fields {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(spec.Fields, ", "), strings.Join(placeholders, ", "),
	)

	batch := &pgx.Batch{}
	for _, row := range rowValues {
		args := make([]interface{}, len(spec.Fields))
		for i, field := range spec.Fields {
			if v, ok := row[field]; ok && v != "" {
				args[i] = v
			} else {
				args[i] = nil
			}
		}
		batch.Queue(insertSQL, args...)
	}

	results := tx.SendBatch(ctx, batch)
	for range rowValues {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert row: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

var (
	ftmColumns   = coalesced(models.FTMSpec.Fields)
	metroColumns = coalesced(models.MetroSpec.Fields)
)

// coalesced builds a select list that maps NULL text columns to empty strings.
func coalesced(fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("COALESCE(%s, '')", f)
	}
	return strings.Join(parts, ", ")
}

func collectNonEmpty(rows pgx.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var v *string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		if v != nil && *v != "" {
			out = append(out, *v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func scanFTMRows(rows pgx.Rows) ([]models.FTMRecord, error) {
	var out []models.FTMRecord
	for rows.Next() {
		var rec models.FTMRecord
		err := rows.Scan(
			&rec.Witel, &rec.STO, &rec.NamaGPON, &rec.IP, &rec.Card, &rec.Port,
			&rec.NamaLemariFTMEakses, &rec.NoPanelEakses, &rec.NoPortPanelEakses,
			&rec.NamaLemariFTMOakses, &rec.NoPanelOakses, &rec.NoPortPanelOakses,
			&rec.NoCoreFeeder, &rec.NamaSegmenFeederUtama, &rec.StatusFeeder,
			&rec.KapasitasKabelFeederUtama, &rec.NamaODC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ftm row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ftm rows: %w", err)
	}
	return out, nil
}

func scanMetroRows(rows pgx.Rows) ([]models.MetroRecord, error) {
	var out []models.MetroRecord
	for rows.Next() {
		var rec models.MetroRecord
		err := rows.Scan(
			&rec.Witel, &rec.STO, &rec.GPONHostname, &rec.GPONIP, &rec.GPONMerk,
			&rec.GPONTipe, &rec.GPONMerkTipe, &rec.GPONIntf, &rec.GPONLACP,
			&rec.NeighborHostname, &rec.NeighborIntf, &rec.NeighborLACP,
			&rec.BW, &rec.SFP, &rec.VlanSIP, &rec.VlanInternet,
			&rec.Keterangan, &rec.OTN, &rec.Port,
		)
		if err != nil {
			return nil, fmt.Errorf("scan metro row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metro rows: %w", err)
	}
	return out, nil
}
