package uievents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookkeeping/internal/ui"
)

// Routing keys, one per kind of side effect.
const (
	KeyToast    = "ui.toast"
	KeyLoading  = "ui.loading"
	KeyRedirect = "ui.redirect"
)

// Event is one UI side effect as published on the bus.
type Event struct {
	Kind       string    `json:"kind"`
	Title      string    `json:"title,omitempty"`
	Icon       ui.Icon   `json:"icon,omitempty"`
	DurationMs int64     `json:"durationMs,omitempty"`
	Mask       bool      `json:"mask,omitempty"`
	Visible    bool      `json:"visible,omitempty"`
	Path       string    `json:"path,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func ToastEvent(t ui.Toast) *Event {
	return &Event{
		Kind:       KeyToast,
		Title:      t.Title,
		Icon:       t.Icon,
		DurationMs: t.Duration.Milliseconds(),
		Mask:       t.Mask,
		Timestamp:  time.Now(),
	}
}

func LoadingEvent(visible, mask bool) *Event {
	return &Event{Kind: KeyLoading, Visible: visible, Mask: mask, Timestamp: time.Now()}
}

func RedirectEvent(path string) *Event {
	return &Event{Kind: KeyRedirect, Path: path, Timestamp: time.Now()}
}

// ToJSON converts the event to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON parses an event and rejects unknown kinds.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Kind {
	case KeyToast, KeyLoading, KeyRedirect:
		return &e, nil
	default:
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
}

// Apply replays the event onto a surface, for the consuming side of the bridge.
func (e *Event) Apply(ctx context.Context, s ui.Surface) {
	switch e.Kind {
	case KeyToast:
		s.Toast(ctx, ui.Toast{
			Title:    e.Title,
			Icon:     e.Icon,
			Duration: time.Duration(e.DurationMs) * time.Millisecond,
			Mask:     e.Mask,
		})
	case KeyLoading:
		if e.Visible {
			s.ShowLoading(ctx, e.Mask)
		} else {
			s.HideLoading(ctx)
		}
	case KeyRedirect:
		s.Redirect(ctx, e.Path)
	}
}
