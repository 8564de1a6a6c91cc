// Package notify delivers user-facing notifications (connection results, API
// failures, simulated LMS writes) to the terminal and the log.
package notify

import (
	"context"
	"sync"
)

type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
	// SeveritySimulated marks a write that was applied to the local mirror
	// only because the remote endpoint was unavailable.
	SeveritySimulated Severity = "simulated"
)

type Notification struct {
	Title       string
	Description string
	Severity    Severity
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, n Notification)

func (f Func) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Discard drops every notification.
var Discard Notifier = Func(func(context.Context, Notification) {})

// Multi fans a notification out to every non-nil notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, x := range m {
		if x != nil {
			x.Notify(ctx, n)
		}
	}
}

// Recorder keeps every notification it receives.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Titles returns the titles of the recorded notifications.
func (r *Recorder) Titles() []string {
	all := r.All()
	out := make([]string, len(all))
	for i, n := range all {
		out[i] = n.Title
	}
	return out
}
