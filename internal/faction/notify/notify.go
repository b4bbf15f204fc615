// Package notify delivers side-channel messages produced by faction
// operations: direct notices to characters and alerts for staff review.
package notify

import (
	"context"
	"log"
)

// Notifier delivers operation side effects. Delivery is best effort; the
// engine never fails an operation because a notice could not be sent.
type Notifier interface {
	// Notify sends a message to one character.
	Notify(ctx context.Context, characterID, message string)
	// Alert raises a message for staff review.
	Alert(ctx context.Context, message string)
}

// Log writes notifications to the process log.
type Log struct{}

// Notify implements Notifier.
func (Log) Notify(_ context.Context, characterID, message string) {
	log.Printf("faction notify character=%s message=%q", characterID, message)
}

// Alert implements Notifier.
func (Log) Alert(_ context.Context, message string) {
	log.Printf("faction staff alert message=%q", message)
}

// Nop drops all notifications.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, string, string) {}

// Alert implements Notifier.
func (Nop) Alert(context.Context, string) {}
