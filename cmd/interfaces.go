package cmd

import (
	"context"

	"github.com/bswanson58/NoiseHass/internal/pkg/model"
)

// BusService is what cmd.run expects from the mqtt layer.
type BusService interface {
	Connect() error
	Disconnect()
	IsConnected() bool
	Subscribe(filter string, handler func(topic string, payload []byte)) error
	Unsubscribe(filter string) error
	Publish(topic string, payload []byte) error
	WriteState(ctx context.Context, snapshot model.EntitySnapshot) error
	Announce(msg *model.AnnounceMessage) error
}
