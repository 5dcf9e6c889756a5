package service

import (
	"context"

	"github.com/google/uuid"
)

// Channel names one notification transport.
type Channel string

const (
	ChannelDashboard Channel = "dashboard"
	ChannelSMS       Channel = "sms"
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelEmail     Channel = "email"
)

// Notification is the payload fanned out to staff when an emergency case
// opens.
type Notification struct {
	CaseID     uuid.UUID
	Severity   string
	Department string
	Subject    string
	Message    string
}

// Gateway sends one message over one channel. Implementations do a single
// attempt and report the outcome; retry policy belongs to the emergency
// orchestrator, never to the gateway.
type Gateway interface {
	Send(ctx context.Context, channel Channel, target string, notification *Notification) error
}
