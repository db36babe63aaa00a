package auth

import (
	"encoding/gob"
	"net/http"
)

// Flash types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Type    string
	Message string
}

func init() {
	// The cookie store gob-encodes session values.
	gob.Register(Flash{})
}

// AddFlash queues a message for the next page the admin sees.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, f Flash) error {
	cs := m.cookie(r)
	cs.AddFlash(f)
	return cs.Save(r, w)
}

// Flashes pops all queued messages. It must be called before the response
// body is written because it rewrites the cookie.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	cs := m.cookie(r)
	raw := cs.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := cs.Save(r, w); err != nil {
		m.logWarn("failed to clear flashes", "error", err)
	}

	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes
}
