package ingest

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hawaesanda/BotFTM-master/internal/models"
)

type fakeStore struct {
	err error

	calls    int
	gotSites []string
	gotRows  []map[string]string
}

func (f *fakeStore) ReplaceSites(ctx context.Context, spec models.DomainSpec, w models.Witel, sites []string, rows []map[string]string) error {
	f.calls++
	f.gotSites = sites
	f.gotRows = rows
	return f.err
}

type fakeMaster struct {
	valid map[string]bool
}

func (f *fakeMaster) Valid(d models.Domain, witelCode, sto string) bool {
	return f.valid[sto]
}

// buildWorkbook writes a one-sheet xlsx with the given header and rows.
func buildWorkbook(t *testing.T, header []string, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			t.Fatalf("set header: %v", err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func xlsxUpload(data []byte) Upload {
	return Upload{FileName: "data.xlsx", MIMEType: mimeXLSX, Data: data}
}

var malang = models.Witel{Name: "Malang", Code: "mlg"}

func TestIngestHappyPath(t *testing.T) {
	// Uppercase headers with spaces exercise the normalization; the lowercase
	// sto exercises code normalization.
	data := buildWorkbook(t,
		[]string{"WITEL", "STO", "NAMA GPON", "CARD", "PORT"},
		[][]string{
			{"Malang", "MLG", "GPON-01", "1", "1"},
			{"Malang", "mlg", "GPON-01", "1", "2"},
			{"Malang", "BTU", "GPON-02", "2", "1"},
			{"Malang", "ZZZ", "GPON-03", "3", "1"},
		},
	)
	store := &fakeStore{}
	master := &fakeMaster{valid: map[string]bool{"MLG": true, "BTU": true}}
	p := NewPipeline(store, master)

	result, err := p.Ingest(context.Background(), models.FTMSpec, malang, xlsxUpload(data))
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if result.RowsRead != 4 {
		t.Errorf("RowsRead = %d, want 4", result.RowsRead)
	}
	if result.Accepted != 3 {
		t.Errorf("Accepted = %d, want 3", result.Accepted)
	}
	if !reflect.DeepEqual(result.TouchedSites, []string{"BTU", "MLG"}) {
		t.Errorf("TouchedSites = %v, want [BTU MLG]", result.TouchedSites)
	}
	if !reflect.DeepEqual(result.RejectedSites, []string{"ZZZ"}) {
		t.Errorf("RejectedSites = %v, want [ZZZ]", result.RejectedSites)
	}

	if store.calls != 1 {
		t.Fatalf("expected one replace call, got %d", store.calls)
	}
	if !reflect.DeepEqual(store.gotSites, []string{"BTU", "MLG"}) {
		t.Errorf("store sites = %v, want [BTU MLG]", store.gotSites)
	}
	if len(store.gotRows) != 3 {
		t.Fatalf("store rows = %d, want 3", len(store.gotRows))
	}
	if store.gotRows[1]["sto"] != "MLG" {
		t.Errorf("sto not upper-cased: %q", store.gotRows[1]["sto"])
	}
	// Every projected row carries the full column set of the domain.
	for _, field := range models.FTMSpec.Fields {
		if _, ok := store.gotRows[0][field]; !ok {
			t.Errorf("projected row missing column %q", field)
		}
	}
}

func TestIngestRequiredFields(t *testing.T) {
	data := buildWorkbook(t,
		[]string{"sto", "nama_gpon", "card", "port"},
		[][]string{
			{"MLG", "GPON-01", "1", "1"},
			{"MLG", "", "1", "2"},      // missing device name
			{"MLG", "GPON-01", "", ""}, // missing card and port
			{"MLG", "GPON-01", "nan", "1"}, // null token counts as missing
		},
	)
	store := &fakeStore{}
	p := NewPipeline(store, &fakeMaster{valid: map[string]bool{"MLG": true}})

	result, err := p.Ingest(context.Background(), models.FTMSpec, malang, xlsxUpload(data))
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if result.Accepted != 1 {
		t.Errorf("Accepted = %d, want 1", result.Accepted)
	}
	if result.RowsRead != 4 {
		t.Errorf("RowsRead = %d, want 4", result.RowsRead)
	}
}

func TestIngestZeroValidRowsLeavesStoreUntouched(t *testing.T) {
	data := buildWorkbook(t,
		[]string{"sto", "nama_gpon", "card", "port"},
		[][]string{
			{"ZZZ", "GPON-01", "1", "1"},
			{"", "GPON-02", "1", "2"},
		},
	)
	store := &fakeStore{}
	p := NewPipeline(store, &fakeMaster{valid: map[string]bool{"MLG": true}})

	result, err := p.Ingest(context.Background(), models.FTMSpec, malang, xlsxUpload(data))
	if err != nil {
		t.Fatalf("zero valid rows must not be an error: %v", err)
	}
	if result.Accepted != 0 {
		t.Errorf("Accepted = %d, want 0", result.Accepted)
	}
	if !reflect.DeepEqual(result.RejectedSites, []string{"ZZZ"}) {
		t.Errorf("RejectedSites = %v, want [ZZZ]", result.RejectedSites)
	}
	if store.calls != 0 {
		t.Fatalf("store must stay untouched, got %d calls", store.calls)
	}
}

func TestIngestWrongMIME(t *testing.T) {
	p := NewPipeline(&fakeStore{}, &fakeMaster{})
	up := Upload{FileName: "data.csv", MIMEType: "text/csv", Data: []byte("sto\nMLG\n")}

	_, err := p.Ingest(context.Background(), models.FTMSpec, malang, up)
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestIngestCorruptBytes(t *testing.T) {
	p := NewPipeline(&fakeStore{}, &fakeMaster{})

	_, err := p.Ingest(context.Background(), models.FTMSpec, malang, xlsxUpload([]byte("not a zip archive")))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	// The wrapped excelize detail stays out of the returned error.
	if err.Error() != ErrParse.Error() {
		t.Fatalf("parse error should carry no decoder detail, got %q", err)
	}
}

func TestIngestStoreErrorWrapped(t *testing.T) {
	data := buildWorkbook(t,
		[]string{"sto", "nama_gpon", "card", "port"},
		[][]string{{"MLG", "GPON-01", "1", "1"}},
	)
	boom := errors.New("deadlock detected")
	p := NewPipeline(&fakeStore{err: boom}, &fakeMaster{valid: map[string]bool{"MLG": true}})

	_, err := p.Ingest(context.Background(), models.FTMSpec, malang, xlsxUpload(data))
	if !errors.Is(err, boom) {
		t.Fatalf("store error should be wrapped, got %v", err)
	}
}

func TestIngestStampsWitelForMetro(t *testing.T) {
	data := buildWorkbook(t,
		[]string{"witel", "sto", "gpon_hostname", "gpon_intf", "neighbor_hostname"},
		[][]string{{"WRONG", "MLG", "GPON-01", "0/1", "ME-01"}},
	)
	store := &fakeStore{}
	p := NewPipeline(store, &fakeMaster{valid: map[string]bool{"MLG": true}})

	if _, err := p.Ingest(context.Background(), models.MetroSpec, malang, xlsxUpload(data)); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if got := store.gotRows[0]["witel"]; got != "Malang" {
		t.Errorf("metro rows must carry the selected witel, got %q", got)
	}
}

func TestParseWorkbookNormalization(t *testing.T) {
	data := buildWorkbook(t,
		[]string{" Nama GPON ", "STO"},
		[][]string{
			{"  GPON-01  ", "MLG"},
			{"None", "null"},
		},
	)
	records, err := parseWorkbook(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["nama_gpon"] != "GPON-01" {
		t.Errorf("header or cell not normalized: %+v", records[0])
	}
	if records[1]["nama_gpon"] != "" || records[1]["sto"] != "" {
		t.Errorf("null tokens should map to empty, got %+v", records[1])
	}
}

func TestRejectedSample(t *testing.T) {
	r := &Result{RejectedSites: []string{"A", "B", "C"}}
	if got := r.RejectedSample(2); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("RejectedSample(2) = %v", got)
	}
	if got := r.RejectedSample(5); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("RejectedSample(5) = %v", got)
	}
}
