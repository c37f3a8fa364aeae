// Package bus carries fire-and-forget messages between the popup and page
// contexts. Delivery is at-most-once: a missing recipient or a full inbox
// drops the message.
package bus

import (
	"context"
	"errors"

	"meettimer/internal/core/message"
)

// ErrNoRecipient indicates nobody is listening on the target. Callers treat
// it as a no-op.
var ErrNoRecipient = errors.New("no recipient")

// Target addresses one context.
type Target string

// PopupTarget is the popup's address.
const PopupTarget Target = "popup"

// Sender sends messages to a target.
type Sender interface {
	Send(ctx context.Context, to Target, msg message.Message) error
}

// Tab is a page known to the host.
type Tab struct {
	Target Target
	URL    string
}

// Tabs reports the currently focused page.
type Tabs interface {
	Active() (Tab, bool)
}

// Envelope is a delivered or attempted message as seen by taps.
type Envelope struct {
	To        Target
	Message   message.Message
	Delivered bool
}
