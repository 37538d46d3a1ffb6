// Package ui defines the user-facing side effects the data-access layer
// triggers: transient notifications, the loading indicator and forced
// navigation. Rendering them is somebody else's job.
package ui

import (
	"context"
	"time"
)

// Icon selects the glyph shown next to a notification.
type Icon string

const (
	IconNone    Icon = "none"
	IconError   Icon = "error"
	IconSuccess Icon = "success"
	IconLoading Icon = "loading"
)

// DefaultToastDuration is how long a notification stays on screen.
const DefaultToastDuration = 2 * time.Second

// Toast is one transient notification.
type Toast struct {
	Title    string
	Duration time.Duration
	Icon     Icon
	// Mask blocks touches while the toast is visible.
	Mask bool
}

// Ports for outbound UI adapters. Calls are fire-and-forget: a surface that
// fails to render something logs it and moves on.
type (
	Notifier interface {
		Toast(ctx context.Context, t Toast)
	}

	Loader interface {
		ShowLoading(ctx context.Context, mask bool)
		HideLoading(ctx context.Context)
	}

	// Navigator replaces the current screen. Redirect never adds a history entry.
	Navigator interface {
		Redirect(ctx context.Context, path string)
	}

	Surface interface {
		Notifier
		Loader
		Navigator
	}
)
