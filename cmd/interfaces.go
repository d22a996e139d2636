package cmd

import (
	"context"
	"net"

	"github.com/anicoll/homedash/internal/pkg/config"
	"github.com/anicoll/homedash/internal/pkg/model"
)

// Mirror defines what cmd.run expects from a state mirror such as the MQTT one.
type Mirror interface {
	Connect() error
	Write(ctx context.Context, view model.View) error
	Close()
}

// dependencies are the pieces of run that reach outside the process.
type dependencies struct {
	newMirror func(cfg config.MqttConfig) (Mirror, error)
	listen    func(network, address string) (net.Listener, error)
}
