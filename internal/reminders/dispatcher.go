package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Reminder channels.
const (
	ChannelEmail    = "email"
	ChannelTelegram = "telegram"
)

// Notification is a rendered reminder ready for delivery.
type Notification struct {
	Subject string
	Body    string
}

// Sender delivers a rendered reminder over one channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, notification Notification) error
}

// Dispatcher fans a reminder out to all configured senders.
type Dispatcher struct {
	renderer *Renderer
	senders  []Sender
}

// NewDispatcher creates a new reminder dispatcher.
func NewDispatcher(renderer *Renderer, senders ...Sender) *Dispatcher {
	return &Dispatcher{
		renderer: renderer,
		senders:  senders,
	}
}

// Dispatch renders and sends a reminder on every channel. Failures are
// collected; a single failing channel fails the whole item so the worker
// retries it.
func (d *Dispatcher) Dispatch(ctx context.Context, payload Payload) error {
	var errs []error

	for _, sender := range d.senders {
		channel := sender.Name()

		subject, body, err := d.renderer.Render(channel, payload)
		if err != nil {
			errs = append(errs, fmt.Errorf("render %s: %w", channel, err))
			recordReminderSent(channel, "failed")
			continue
		}

		start := time.Now()
		err = sender.Send(ctx, Notification{Subject: subject, Body: body})
		if err != nil {
			errs = append(errs, fmt.Errorf("send %s: %w", channel, err))
			recordReminderSent(channel, "failed")
			continue
		}

		recordReminderSent(channel, "success")
		recordReminderDuration(channel, time.Since(start))
	}

	return errors.Join(errs...)
}
