package mqtt

import (
	"context"
	"testing"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bswanson58/NoiseHass/internal/pkg/model"
)

type fakeToken struct {
	err error
}

func (f *fakeToken) Wait() bool {
	return true
}

func (f *fakeToken) WaitTimeout(time.Duration) bool {
	return true
}

func (f *fakeToken) Done() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

func (f *fakeToken) Error() error {
	return f.err
}

type publishCall struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient records publishes; everything else is inert.
type fakeClient struct {
	paho_mqtt.Client
	published []publishCall
	connected bool
}

func (f *fakeClient) IsConnected() bool {
	return f.connected
}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho_mqtt.Token {
	f.published = append(f.published, publishCall{
		topic:    topic,
		qos:      qos,
		retained: retained,
		payload:  payload.([]byte),
	})
	return &fakeToken{}
}

func (f *fakeClient) Subscribe(string, byte, paho_mqtt.MessageHandler) paho_mqtt.Token {
	return &fakeToken{}
}

func TestPublish_FireAndForget(t *testing.T) {
	t.Parallel()
	client := &fakeClient{}
	svc := New(client, "noisemusicsystem", "SaltMine")

	require.NoError(t, svc.Publish("noisemusicsystem/SaltMine/command", []byte(`{"command":"play","parameter":""}`)))
	require.Len(t, client.published, 1)
	assert.Equal(t, byte(1), client.published[0].qos)
	assert.False(t, client.published[0].retained)
}

func TestWriteState_Retained(t *testing.T) {
	t.Parallel()
	client := &fakeClient{}
	svc := New(client, "noisemusicsystem", "SaltMine")

	err := svc.WriteState(context.Background(), model.EntitySnapshot{DeviceID: "SALTMINE", Available: true})
	require.NoError(t, err)
	require.Len(t, client.published, 1)
	assert.Equal(t, "noisemusicsystem/SaltMine/entity", client.published[0].topic)
	assert.True(t, client.published[0].retained)
}

func TestWriteState_CancelledContext(t *testing.T) {
	t.Parallel()
	client := &fakeClient{}
	svc := New(client, "noisemusicsystem", "SaltMine")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, svc.WriteState(ctx, model.EntitySnapshot{}))
	assert.Empty(t, client.published)
}

func TestAnnounce_OncePerProcess(t *testing.T) {
	t.Parallel()
	client := &fakeClient{}
	svc := New(client, "noisemusicsystem", "SaltMine")

	msg := &model.AnnounceMessage{ID: "SALTMINE", Name: "Salt Mine"}
	require.NoError(t, svc.Announce(msg))
	require.NoError(t, svc.Announce(msg))
	require.Len(t, client.published, 1)
	assert.Equal(t, "noisemusicsystem/SaltMine/bridge/config", client.published[0].topic)
	assert.True(t, client.published[0].retained)
}
