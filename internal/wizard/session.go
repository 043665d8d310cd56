package wizard

import "github.com/hawaesanda/BotFTM-master/internal/models"

// Flow identifies which guided conversation a session belongs to.
type Flow int

const (
	FlowLookupFTM   Flow = iota // /cekgpon: region → sto → gpon → card/port
	FlowLookupMetro             // /cekmetro: region → sto → hostname → link groups
	FlowShowFTM                 // /showftm: region → mode → detail
	FlowSiteStatus              // /ceksto: domain → region → status report
	FlowInputFTM                // /inputftm: region → upload loop
	FlowInputMetro              // /inputmetro: region → upload loop
)

// State is the wizard position inside a flow.
type State int

const (
	StateDomain   State = iota // choosing FTM vs Metro (/ceksto only)
	StateRegion                // choosing a witel
	StateMode                  // choosing a display mode (/showftm only)
	StateSite                  // choosing an STO
	StateDevice                // choosing a device, paginated
	StateCardPort              // awaiting free-text card/port input
	StateUpload                // awaiting a spreadsheet document
	StateDone                  // terminal; session is discarded
)

// Session is the explicit per-conversation wizard state, threaded through
// every transition. A new entry command replaces the whole session.
type Session struct {
	Flow    Flow
	State   State
	Domain  models.Domain
	Witel   models.Witel
	STO     string
	Device  string
	Mode    string
	Devices []string // cached device list for pagination; never re-queried
	Page    int
}

// Done reports whether the session reached a terminal state.
func (s Session) Done() bool {
	return s.State == StateDone
}
