package mqtt

import (
	"context"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/bswanson58/NoiseHass/internal/pkg/model"
	"github.com/bswanson58/NoiseHass/internal/pkg/topic"
)

// Publish sends a message fire-and-forget. The message-handling path must
// not block on the broker, so the token is not awaited.
func (s *service) Publish(t string, payload []byte) error {
	token := s.client.Publish(t, subscribeQos, false, payload)
	return token.Error()
}

// WriteState publishes the merged entity snapshot retained, so late-joining
// consumers see the current state immediately.
func (s *service) WriteState(ctx context.Context, snapshot model.EntitySnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	t := topic.Entity(s.namespace, s.deviceName)
	token := s.client.Publish(t, subscribeQos, true, payload)
	token.WaitTimeout(publishTimeout)
	return token.Error()
}

// Announce publishes the retained entity description once per process.
func (s *service) Announce(msg *model.AnnounceMessage) error {
	if s.announced {
		return nil
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	t := topic.Announce(s.namespace, s.deviceName)
	token := s.client.Publish(t, subscribeQos, true, payload)
	if err := token.Error(); err != nil {
		return err
	}
	if res := token.WaitTimeout(publishTimeout); res {
		s.announced = true
		s.logger.Debug("announced entity", zap.String("topic", t), zap.String("device", msg.ID))
	}
	return nil
}
