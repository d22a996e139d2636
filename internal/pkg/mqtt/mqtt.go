package mqtt

import (
	"errors"
	"sync"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const waitTimeout = 5 * time.Second

var ErrTimeout = errors.New("mqtt: timed out waiting for broker")

type service struct {
	client paho_mqtt.Client
	prefix string
	logger *zap.Logger
	now    func() time.Time

	// published holds the last payload per topic, minus the publish time.
	published sync.Map
}

type Option func(*service)

func WithLogger(l *zap.Logger) Option {
	return func(s *service) {
		s.logger = l
	}
}

func New(client paho_mqtt.Client, prefix string, opts ...Option) *service {
	s := &service{
		client: client,
		prefix: prefix,
		logger: zap.L(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewClientOptions builds broker options in the shape the mirror expects:
// auto reconnect and a random client id.
func NewClientOptions(host, username, password, clientID string) *paho_mqtt.ClientOptions {
	return paho_mqtt.NewClientOptions().
		AddBroker(host).
		SetClientID(clientID).
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectTimeout(waitTimeout)
}

func (s *service) Connect() error {
	token := s.client.Connect()
	if res := token.WaitTimeout(waitTimeout); res {
		return token.Error()
	}
	if err := token.Error(); err != nil {
		return err
	}
	return ErrTimeout
}

func (s *service) Close() {
	s.client.Disconnect(250)
}
