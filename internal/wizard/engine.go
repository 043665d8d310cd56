// Package wizard drives the guided-selection conversations: a fixed sequence
// of choices (witel → sto → device → card/port) backed by live store lookups,
// with pagination over large device lists. One generic engine serves the FTM
// and Metro flows; the differences live in the domain descriptor and the
// terminal rendering.
package wizard

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/hawaesanda/BotFTM-master/internal/ingest"
	"github.com/hawaesanda/BotFTM-master/internal/models"
	"github.com/hawaesanda/BotFTM-master/internal/report"
)

// Store is the read side of the inventory store consumed by the wizard.
type Store interface {
	DistinctSites(ctx context.Context, spec models.DomainSpec, witel models.Witel) ([]string, error)
	AllSites(ctx context.Context, spec models.DomainSpec, witel models.Witel) ([]string, error)
	DistinctDevices(ctx context.Context, spec models.DomainSpec, witel models.Witel, sto string) ([]string, error)
	RegionDevices(ctx context.Context, spec models.DomainSpec, witel models.Witel) ([]string, error)
	FTMPortRecords(ctx context.Context, witel models.Witel, sto, gpon string, card, port int) ([]models.FTMRecord, error)
	FTMDeviceRecords(ctx context.Context, witel models.Witel, gpon string, limit int) ([]models.FTMRecord, error)
	MetroDeviceRecords(ctx context.Context, witel models.Witel, sto, hostname string) ([]models.MetroRecord, error)
	RegionSummary(ctx context.Context, spec models.DomainSpec, witel models.Witel) (*models.RegionSummary, error)
	SiteSummary(ctx context.Context, witel models.Witel, sto string) (*models.SiteSummary, error)
}

// Master exposes the canonical site lists.
type Master interface {
	Sites(d models.Domain, witelCode string) []string
}

// Authorizer gates every wizard turn.
type Authorizer interface {
	IsAuthorized(telegramID string) bool
}

// Ingestor runs the spreadsheet pipeline for the upload flows.
type Ingestor interface {
	Ingest(ctx context.Context, spec models.DomainSpec, witel models.Witel, up ingest.Upload) (*ingest.Result, error)
}

// Button is one selectable option offered to the user.
type Button struct {
	Label string
	Data  string // encoded Payload
}

// Message is one reply to render. Edit asks the transport to edit the
// message that carried the pressed button instead of sending a new one.
type Message struct {
	Text    string
	Buttons [][]Button
	HTML    bool
	Edit    bool
}

const (
	deviceDetailLimit = 15

	msgDenied       = "❌ *Akses ditolak*\nAnda belum terdaftar di sistem. Silahkan lakukan pendaftaran dengan register."
	msgStoreFailure = "❌ Terjadi kesalahan saat mengambil data dari database."
	msgCancelled    = "❌ Proses dibatalkan."
)

// Engine owns the transitions of every guided flow.
type Engine struct {
	store    Store
	master   Master
	auth     Authorizer
	ingestor Ingestor
}

// NewEngine creates a wizard engine.
func NewEngine(store Store, master Master, auth Authorizer, ingestor Ingestor) *Engine {
	return &Engine{store: store, master: master, auth: auth, ingestor: ingestor}
}

// Start begins (or restarts) a flow. A running session for the same chat is
// simply replaced; last write wins.
func (e *Engine) Start(flow Flow, userID string) (Session, []Message) {
	if !e.auth.IsAuthorized(userID) {
		return Session{State: StateDone}, []Message{{Text: msgDenied}}
	}

	s := Session{Flow: flow}
	switch flow {
	case FlowSiteStatus:
		s.State = StateDomain
		return s, []Message{{
			Text: "📊 Pilih jenis data STO yang ingin dicek:",
			Buttons: [][]Button{
				{{Label: "🔌 FTM", Data: Payload{Kind: KindMode, Value: string(models.DomainFTM)}.Encode()}},
				{{Label: "🌐 Metro", Data: Payload{Kind: KindMode, Value: string(models.DomainMetro)}.Encode()}},
			},
		}}
	case FlowLookupMetro:
		s.Domain = models.DomainMetro
	case FlowInputMetro:
		s.Domain = models.DomainMetro
	default:
		s.Domain = models.DomainFTM
	}

	s.State = StateRegion
	text := "📍 Silakan pilih *Witel* terlebih dahulu:"
	if flow == FlowInputFTM || flow == FlowInputMetro {
		text = "📍 Pilih *Witel* tujuan input data:"
	}
	return s, []Message{{Text: text, Buttons: witelKeyboard()}}
}

// HandleButton advances a session on a decoded button press.
func (e *Engine) HandleButton(ctx context.Context, s Session, p Payload, userID string) (Session, []Message) {
	if !e.auth.IsAuthorized(userID) {
		s.State = StateDone
		return s, []Message{{Text: msgDenied}}
	}

	switch s.State {
	case StateDomain:
		if p.Kind != KindMode {
			return s, nil
		}
		domain := models.Domain(p.Value)
		if domain != models.DomainFTM && domain != models.DomainMetro {
			return s, nil
		}
		s.Domain = domain
		s.State = StateRegion
		return s, []Message{{
			Text:    "✅ Jenis data *" + p.Value + "* dipilih.\n\nSekarang pilih *WITEL*:",
			Buttons: witelKeyboard(),
			Edit:    true,
		}}

	case StateRegion:
		if p.Kind != KindRegion {
			return s, nil
		}
		witel, ok := models.WitelByName(p.Value)
		if !ok {
			return s, nil
		}
		s.Witel = witel
		return e.afterRegion(ctx, s)

	case StateMode:
		if p.Kind != KindMode {
			return s, nil
		}
		s.Mode = p.Value
		return e.afterMode(ctx, s)

	case StateSite:
		if p.Kind != KindSite {
			return s, nil
		}
		s.STO = p.Value
		return e.afterSite(ctx, s)

	case StateDevice:
		switch p.Kind {
		case KindPageNext:
			s.Page = clampPage(s.Page+1, pageCount(len(s.Devices)))
			return s, []Message{e.devicePage(s, true)}
		case KindPagePrev:
			s.Page = clampPage(s.Page-1, pageCount(len(s.Devices)))
			return s, []Message{e.devicePage(s, true)}
		case KindDevice:
			s.Device = p.Value
			return e.afterDevice(ctx, s)
		}
	}
	return s, nil
}

// HandleText advances a session on free-text input. Only the card/port step
// consumes text; anything else is ignored.
func (e *Engine) HandleText(ctx context.Context, s Session, text, userID string) (Session, []Message) {
	if !e.auth.IsAuthorized(userID) {
		s.State = StateDone
		return s, []Message{{Text: msgDenied}}
	}
	if s.State != StateCardPort {
		return s, nil
	}

	card, port, ok := parseCardPort(text)
	if !ok {
		return s, []Message{{Text: "❌ Format salah. Gunakan format `card/port`.\nContoh: `3/4`"}}
	}

	records, err := e.store.FTMPortRecords(ctx, s.Witel, s.STO, s.Device, card, port)
	if err != nil {
		return e.storeFailure(s, err)
	}
	s.State = StateDone
	if len(records) == 0 {
		return s, []Message{{Text: "⚠️ Data tidak ditemukan untuk input tersebut."}}
	}
	msgs := make([]Message, 0, len(records))
	for _, rec := range records {
		msgs = append(msgs, Message{Text: report.FTMPortText(rec)})
	}
	return s, msgs
}

// HandleUpload feeds a document into the ingestion pipeline. The session
// stays in the upload state after every outcome so the next file can follow
// without restarting the wizard.
func (e *Engine) HandleUpload(ctx context.Context, s Session, up ingest.Upload, userID string) (Session, []Message) {
	if !e.auth.IsAuthorized(userID) {
		s.State = StateDone
		return s, []Message{{Text: msgDenied}}
	}
	if s.State != StateUpload {
		return s, nil
	}

	spec := models.SpecFor(s.Domain)
	result, err := e.ingestor.Ingest(ctx, spec, s.Witel, up)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrFormat):
			return s, []Message{{Text: "❌ Format file salah! Harap kirim file Excel (.xlsx/.xls) yang valid."}}
		case errors.Is(err, ingest.ErrParse):
			return s, []Message{{Text: "❌ Gagal membaca file Excel.\n📎 Silakan kirim ulang file yang valid."}}
		default:
			log.Printf("[WIZARD] ingest failed: %v", err)
			return s, []Message{{Text: "❌ Gagal menyimpan ke database. Silakan coba lagi."}}
		}
	}

	return s, []Message{{Text: ingestSummary(s, result)}}
}

// Cancel terminates a session from any state.
func (e *Engine) Cancel(s Session, userID string) (Session, []Message) {
	if !e.auth.IsAuthorized(userID) {
		s.State = StateDone
		return s, []Message{{Text: msgDenied}}
	}
	s.State = StateDone
	return s, []Message{{Text: msgCancelled}}
}

// afterRegion fans out per flow once a witel is chosen.
func (e *Engine) afterRegion(ctx context.Context, s Session) (Session, []Message) {
	spec := models.SpecFor(s.Domain)

	switch s.Flow {
	case FlowSiteStatus:
		canonical := e.master.Sites(s.Domain, s.Witel.Code)
		present, err := e.store.AllSites(ctx, spec, s.Witel)
		if err != nil {
			return e.storeFailure(s, err)
		}
		s.State = StateDone
		return s, []Message{{Text: report.SiteStatusText(s.Domain, s.Witel.Name, canonical, present), Edit: true}}

	case FlowInputFTM, FlowInputMetro:
		s.State = StateUpload
		return s, []Message{{
			Text: "📂 Witel dipilih: *" + s.Witel.Name + "*\n\n" +
				"📎 Gunakan format kolom sesuai contoh file Excel.\n" +
				"Setelah itu silakan *unggah file Excel* kamu.",
			Edit: true,
		}}

	case FlowShowFTM:
		s.State = StateMode
		return s, []Message{{
			Text: "✅ Witel *" + s.Witel.Name + "* dipilih.\n\nPilih opsi tampilan data:",
			Buttons: [][]Button{
				{{Label: "📊 Show All FTM Data", Data: Payload{Kind: KindMode, Value: "all"}.Encode()}},
				{{Label: "🏢 Show per STO", Data: Payload{Kind: KindMode, Value: "per_sto"}.Encode()}},
				{{Label: "🌐 Show per GPON", Data: Payload{Kind: KindMode, Value: "per_gpon"}.Encode()}},
			},
			Edit: true,
		}}
	}

	sites, err := e.store.DistinctSites(ctx, spec, s.Witel)
	if err != nil {
		return e.storeFailure(s, err)
	}
	if len(sites) == 0 {
		s.State = StateDone
		return s, []Message{{Text: "✅ Witel *" + s.Witel.Name + "* dipilih.\nNamun tidak ditemukan STO.", Edit: true}}
	}
	s.State = StateSite
	return s, []Message{{
		Text:    "✅ Witel *" + s.Witel.Name + "* dipilih.\n\nSilakan pilih *STO* yang tersedia:",
		Buttons: choiceKeyboard(sites, KindSite),
		Edit:    true,
	}}
}

// afterMode handles the /showftm display-mode menu.
func (e *Engine) afterMode(ctx context.Context, s Session) (Session, []Message) {
	spec := models.SpecFor(s.Domain)

	switch s.Mode {
	case "all":
		summary, err := e.store.RegionSummary(ctx, spec, s.Witel)
		if err != nil {
			return e.storeFailure(s, err)
		}
		s.State = StateDone
		return s, []Message{{Text: report.RegionSummaryText(s.Witel.Name, summary), Edit: true}}

	case "per_sto":
		sites, err := e.store.DistinctSites(ctx, spec, s.Witel)
		if err != nil {
			return e.storeFailure(s, err)
		}
		if len(sites) == 0 {
			s.State = StateDone
			return s, []Message{{Text: "❌ Tidak ditemukan STO.", Edit: true}}
		}
		s.State = StateSite
		return s, []Message{{
			Text:    "🏢 Pilih *STO* dari Witel " + s.Witel.Name + ":",
			Buttons: choiceKeyboard(sites, KindSite),
			Edit:    true,
		}}

	case "per_gpon":
		devices, err := e.store.RegionDevices(ctx, spec, s.Witel)
		if err != nil {
			return e.storeFailure(s, err)
		}
		if len(devices) == 0 {
			s.State = StateDone
			return s, []Message{{Text: "❌ Tidak ditemukan GPON.", Edit: true}}
		}
		s.Devices = devices
		s.Page = 0
		s.State = StateDevice
		return s, []Message{e.devicePage(s, true)}
	}
	return s, nil
}

// afterSite fans out once an STO is chosen.
func (e *Engine) afterSite(ctx context.Context, s Session) (Session, []Message) {
	spec := models.SpecFor(s.Domain)

	if s.Flow == FlowShowFTM {
		summary, err := e.store.SiteSummary(ctx, s.Witel, s.STO)
		if err != nil {
			return e.storeFailure(s, err)
		}
		s.State = StateDone
		return s, []Message{{Text: report.SiteDetailText(s.Witel.Name, s.STO, summary), Edit: true}}
	}

	devices, err := e.store.DistinctDevices(ctx, spec, s.Witel, s.STO)
	if err != nil {
		return e.storeFailure(s, err)
	}
	if len(devices) == 0 {
		s.State = StateDone
		return s, []Message{{Text: "❌ Tidak ada *GPON* ditemukan untuk STO " + s.STO + ".", Edit: true}}
	}
	s.Devices = devices
	s.Page = 0
	s.State = StateDevice
	return s, []Message{e.devicePage(s, true)}
}

// afterDevice fans out once a device is chosen: FTM lookup asks for the
// card/port, the other flows render their terminal detail.
func (e *Engine) afterDevice(ctx context.Context, s Session) (Session, []Message) {
	switch s.Flow {
	case FlowLookupFTM:
		s.State = StateCardPort
		return s, []Message{{Text: "Silakan masukkan Nomor Slot/Port dalam format `card/port`.\n\nContoh: `1/1`"}}

	case FlowLookupMetro:
		records, err := e.store.MetroDeviceRecords(ctx, s.Witel, s.STO, s.Device)
		if err != nil {
			return e.storeFailure(s, err)
		}
		s.State = StateDone
		if len(records) == 0 {
			return s, []Message{{Text: "⚠️ Data tidak ditemukan.", Edit: true}}
		}
		texts := report.MetroLinkGroupTexts(records)
		msgs := make([]Message, 0, len(texts))
		for _, t := range texts {
			msgs = append(msgs, Message{Text: t, HTML: true})
		}
		return s, msgs

	case FlowShowFTM:
		records, err := e.store.FTMDeviceRecords(ctx, s.Witel, s.Device, deviceDetailLimit)
		if err != nil {
			return e.storeFailure(s, err)
		}
		s.State = StateDone
		return s, []Message{{Text: report.DeviceDetailText(s.Witel.Name, s.Device, records), Edit: true}}
	}

	s.State = StateDone
	return s, nil
}

// devicePage renders the current page of the cached device list with
// navigation buttons. The list is never re-queried while paging.
func (e *Engine) devicePage(s Session, edit bool) Message {
	pages := pageCount(len(s.Devices))
	visible := pageSlice(s.Devices, s.Page)

	buttons := choiceKeyboard(visible, KindDevice)
	var nav []Button
	if s.Page > 0 {
		nav = append(nav, Button{Label: "⬅️ Sebelumnya", Data: Payload{Kind: KindPagePrev}.Encode()})
	}
	if s.Page < pages-1 {
		nav = append(nav, Button{Label: "➡️ Berikutnya", Data: Payload{Kind: KindPageNext}.Encode()})
	}
	if len(nav) > 0 {
		buttons = append(buttons, nav)
	}

	scope := "Witel *" + s.Witel.Name + "*"
	if s.STO != "" {
		scope = "STO *" + s.STO + "*"
	}
	text := "*Pilih GPON* _(halaman " + strconv.Itoa(s.Page+1) + "/" + strconv.Itoa(pages) + ")_ untuk " + scope + ":"
	return Message{Text: text, Buttons: buttons, Edit: edit}
}

// storeFailure logs the real error and terminates the session with a
// generic user-facing message.
func (e *Engine) storeFailure(s Session, err error) (Session, []Message) {
	log.Printf("[WIZARD] store error in flow %d state %d: %v", s.Flow, s.State, err)
	s.State = StateDone
	return s, []Message{{Text: msgStoreFailure}}
}

// parseCardPort parses "<int>/<int>" with surrounding whitespace tolerated.
func parseCardPort(input string) (card, port int, ok bool) {
	left, right, found := strings.Cut(strings.TrimSpace(input), "/")
	if !found {
		return 0, 0, false
	}
	card, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, false
	}
	port, err = strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return 0, 0, false
	}
	return card, port, true
}

// witelKeyboard lists the fixed regions, one per row.
func witelKeyboard() [][]Button {
	rows := make([][]Button, 0, len(models.Witels))
	for _, w := range models.Witels {
		rows = append(rows, []Button{{
			Label: w.Name,
			Data:  Payload{Kind: KindRegion, Value: w.Name}.Encode(),
		}})
	}
	return rows
}

// choiceKeyboard lays options out in rows of three.
func choiceKeyboard(options []string, kind PayloadKind) [][]Button {
	var rows [][]Button
	for i := 0; i < len(options); i += buttonsPerRow {
		end := i + buttonsPerRow
		if end > len(options) {
			end = len(options)
		}
		row := make([]Button, 0, buttonsPerRow)
		for _, opt := range options[i:end] {
			row = append(row, Button{Label: opt, Data: Payload{Kind: kind, Value: opt}.Encode()})
		}
		rows = append(rows, row)
	}
	return rows
}

// ingestSummary builds the status log shown after a processed upload.
func ingestSummary(s Session, r *ingest.Result) string {
	lines := []string{
		"📂 File diterima.",
		"📄 File berhasil dibaca. Jumlah baris: " + strconv.Itoa(r.RowsRead),
	}
	if len(r.RejectedSites) > 0 {
		lines = append(lines, "⚠️ Ditemukan STO tidak valid (contoh): "+strings.Join(r.RejectedSample(5), ", "))
	}
	lines = append(lines, "✅ Data valid ditemukan: "+strconv.Itoa(r.Accepted)+" baris.")

	if r.Accepted == 0 {
		lines = append(lines,
			"❌ Semua baris memiliki STO yang tidak valid atau kosong.",
			"📎 Silakan periksa kembali dan kirim ulang file yang benar.",
		)
		return strings.Join(lines, "\n")
	}

	lines = append(lines,
		"📌 STO diproses: "+strings.Join(r.TouchedSites, ", "),
		"✅ *Hasil Input Data:*",
		"- Witel: *"+strings.ToUpper(s.Witel.Code)+"*",
		"- Total STO yang dioverwrite: "+strconv.Itoa(len(r.TouchedSites)),
		"- Total Baris Disimpan: "+strconv.Itoa(r.Accepted),
		"",
		"📎 Silakan kirim file Excel berikutnya untuk STO lain.",
		"❌ Atau ketik /cancel untuk mengakhiri proses.",
	)
	return strings.Join(lines, "\n")
}
