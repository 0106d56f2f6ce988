// Package mqtt wraps the paho client for the bridge: QoS 1 subscription to
// the device namespace, fire-and-forget command publishes, and retained
// snapshot/announce publishes.
package mqtt

import (
	"errors"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/bswanson58/NoiseHass/internal/pkg/config"
)

// ErrConnect indicates the broker could not be reached at setup. Fatal to
// entity setup; there is no inbound path without a subscription.
var ErrConnect = errors.New("unable to connect to mqtt broker")

const (
	subscribeQos   byte = 1
	connectTimeout      = time.Second * 5
	publishTimeout      = time.Second * 10
)

type service struct {
	client     paho_mqtt.Client
	namespace  string
	deviceName string
	logger     *zap.Logger
	announced  bool
}

// NewClient builds a paho client from config. Auto-reconnect re-establishes
// the session; paho resumes subscriptions on a persistent session itself.
func NewClient(cfg *config.MQTTConfig) paho_mqtt.Client {
	opts := paho_mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(time.Minute).
		SetOrderMatters(true)
	return paho_mqtt.NewClient(opts)
}

func New(client paho_mqtt.Client, namespace, deviceName string) *service {
	return &service{
		client:     client,
		namespace:  namespace,
		deviceName: deviceName,
		logger:     zap.L(),
	}
}

func (s *service) Connect() error {
	token := s.client.Connect()
	if res := token.WaitTimeout(connectTimeout); !res {
		return ErrConnect
	}
	if err := token.Error(); err != nil {
		return err
	}
	return nil
}

func (s *service) Disconnect() {
	s.client.Disconnect(250)
}

func (s *service) IsConnected() bool {
	return s.client.IsConnected()
}

// Subscribe registers the handler for a topic filter at QoS 1. The handler
// runs on paho's dispatch goroutine and must return promptly.
func (s *service) Subscribe(filter string, handler func(topic string, payload []byte)) error {
	token := s.client.Subscribe(filter, subscribeQos, func(_ paho_mqtt.Client, msg paho_mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if res := token.WaitTimeout(connectTimeout); !res {
		return errors.New("unable to subscribe in time")
	}
	return token.Error()
}

func (s *service) Unsubscribe(filter string) error {
	token := s.client.Unsubscribe(filter)
	token.WaitTimeout(connectTimeout)
	return token.Error()
}
