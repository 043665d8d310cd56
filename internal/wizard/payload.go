package wizard

import "strings"

// PayloadKind tags the meaning of a button payload.
type PayloadKind string

const (
	KindRegion   PayloadKind = "region"
	KindSite     PayloadKind = "site"
	KindDevice   PayloadKind = "device"
	KindMode     PayloadKind = "mode"
	KindPageNext PayloadKind = "next"
	KindPagePrev PayloadKind = "prev"
)

// Payload is a decoded button press. Buttons carry "kind:value" strings on
// the wire; the transport decodes them exactly once with ParsePayload.
type Payload struct {
	Kind  PayloadKind
	Value string
}

// Encode renders the payload to its wire form.
func (p Payload) Encode() string {
	if p.Value == "" {
		return string(p.Kind)
	}
	return string(p.Kind) + ":" + p.Value
}

// ParsePayload decodes a wire payload. Unknown kinds are rejected.
func ParsePayload(s string) (Payload, bool) {
	kind, value, _ := strings.Cut(s, ":")
	switch PayloadKind(kind) {
	case KindRegion, KindSite, KindDevice, KindMode:
		if value == "" {
			return Payload{}, false
		}
		return Payload{Kind: PayloadKind(kind), Value: value}, true
	case KindPageNext, KindPagePrev:
		return Payload{Kind: PayloadKind(kind)}, true
	}
	return Payload{}, false
}
