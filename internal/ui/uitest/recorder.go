// Package uitest provides a ui.Surface that remembers what it was asked to do.
package uitest

import (
	"context"
	"sync"

	"bookkeeping/internal/ui"
)

// Recorder is safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	events    []string
	toasts    []ui.Toast
	redirects []string
	shows     int
	hides     int
}

var _ ui.Surface = (*Recorder)(nil)

func (r *Recorder) Toast(_ context.Context, t ui.Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
	r.events = append(r.events, "toast")
}

func (r *Recorder) ShowLoading(_ context.Context, _ bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shows++
	r.events = append(r.events, "show")
}

func (r *Recorder) HideLoading(_ context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hides++
	r.events = append(r.events, "hide")
}

func (r *Recorder) Redirect(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirects = append(r.redirects, path)
	r.events = append(r.events, "redirect")
}

// Events returns the side effects in the order they happened.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *Recorder) Toasts() []ui.Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ui.Toast(nil), r.toasts...)
}

func (r *Recorder) Redirects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.redirects...)
}

func (r *Recorder) Shows() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shows
}

func (r *Recorder) Hides() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hides
}
