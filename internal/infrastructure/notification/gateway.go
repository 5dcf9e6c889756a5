package notification

import (
	"context"
	"fmt"

	"medassist/internal/service"

	"github.com/sirupsen/logrus"
)

// gateway routes each channel to its transport implementation behind the
// uniform service.Gateway interface.
type gateway struct {
	log      *logrus.Logger
	channels map[service.Channel]service.Gateway
}

func NewGateway(log *logrus.Logger, channels map[service.Channel]service.Gateway) service.Gateway {
	return &gateway{
		log:      log,
		channels: channels,
	}
}

func (g *gateway) Send(ctx context.Context, channel service.Channel, target string, n *service.Notification) error {
	impl, ok := g.channels[channel]
	if !ok {
		return fmt.Errorf("notification channel %q is not configured", channel)
	}
	if err := impl.Send(ctx, channel, target, n); err != nil {
		return err
	}
	g.log.Infof("Notification sent: channel=%s case=%s target=%s", channel, n.CaseID, target)
	return nil
}
