package page

import (
	"time"

	"meettimer/internal/bus"
	"meettimer/internal/core/visibility"
)

// Document exposes the observable state of the host page.
type Document interface {
	Snapshot() (visibility.Snapshot, error)
}

// Widget is the overlay element rendered on the page.
type Widget interface {
	SetText(text string)
	SetAlarm(active bool)
	Remove()
}

// Mount creates a widget on the page. It may return nil when the page
// cannot host one.
type Mount func() Widget

// Scheduler runs periodic and delayed tasks. Tasks run on scheduler
// goroutines and must only post events back to the controller.
type Scheduler interface {
	Every(name string, interval time.Duration, task func()) (func(), error)
	After(delay time.Duration, task func()) func()
}

// Navigator is told about address changes of a page.
type Navigator interface {
	Navigate(target bus.Target, url string)
}
