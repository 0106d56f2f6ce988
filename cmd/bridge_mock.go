package cmd

import (
	"context"
	"sync"

	"github.com/bswanson58/NoiseHass/internal/pkg/model"
)

// MockBusService is a test double for BusService.
type MockBusService struct {
	mu sync.Mutex

	ConnectFunc    func() error
	SubscribeFunc  func(filter string, handler func(topic string, payload []byte)) error
	PublishFunc    func(topic string, payload []byte) error
	WriteStateFunc func(ctx context.Context, snapshot model.EntitySnapshot) error
	AnnounceFunc   func(msg *model.AnnounceMessage) error

	Published    []PublishedMessage
	Unsubscribed []string
	Disconnected bool
}

type PublishedMessage struct {
	Topic   string
	Payload []byte
}

func (m *MockBusService) Connect() error {
	if m.ConnectFunc != nil {
		return m.ConnectFunc()
	}
	return nil
}

func (m *MockBusService) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Disconnected = true
}

func (m *MockBusService) IsConnected() bool {
	return !m.Disconnected
}

func (m *MockBusService) Subscribe(filter string, handler func(topic string, payload []byte)) error {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(filter, handler)
	}
	return nil
}

func (m *MockBusService) Unsubscribe(filter string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Unsubscribed = append(m.Unsubscribed, filter)
	return nil
}

func (m *MockBusService) Publish(topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(topic, payload)
	}
	m.Published = append(m.Published, PublishedMessage{Topic: topic, Payload: payload})
	return nil
}

func (m *MockBusService) WriteState(ctx context.Context, snapshot model.EntitySnapshot) error {
	if m.WriteStateFunc != nil {
		return m.WriteStateFunc(ctx, snapshot)
	}
	return nil
}

func (m *MockBusService) Announce(msg *model.AnnounceMessage) error {
	if m.AnnounceFunc != nil {
		return m.AnnounceFunc(msg)
	}
	return nil
}
