package dispatcher

import (
	"context"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/homedash/internal/pkg/model"
)

const (
	MessageSent   = "Command sent successfully."
	MessageFailed = "Failed to send command to backend."
)

type commandSender interface {
	SendCommand(ctx context.Context, deviceID, action string, value any) (*model.CommandResponse, error)
}

type Option func(*Dispatcher)

func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithOnChange registers fn to run after every change of the result slot.
func WithOnChange(fn func()) Option {
	return func(d *Dispatcher) {
		d.onChange = fn
	}
}

// Dispatcher sends user commands and keeps the outcome for the device
// currently open in the presentation layer. It never touches device state;
// a command's effect shows up with the next device poll.
type Dispatcher struct {
	sender   commandSender
	logger   *zap.Logger
	onChange func()

	mu       sync.Mutex
	deviceID string
	gen      uint64 // bumped by every selection and command.
	result   model.CommandResult
}

func New(sender commandSender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender: sender,
		logger: zap.L(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Select opens deviceID and clears the previous result. An empty id closes
// the detail.
func (d *Dispatcher) Select(deviceID string) model.CommandSlot {
	d.mu.Lock()
	d.deviceID = deviceID
	d.gen++
	d.result = model.CommandResult{}
	slot := d.slot()
	d.mu.Unlock()

	d.notify()
	return slot
}

// Dispatch sends action to deviceID and waits for the outcome. The result
// slot shows busy meanwhile. A result superseded by a later Select or
// Dispatch is returned to the caller but not stored.
func (d *Dispatcher) Dispatch(ctx context.Context, deviceID, action string, value any) model.CommandResult {
	d.mu.Lock()
	d.deviceID = deviceID
	d.gen++
	gen := d.gen
	d.result = model.CommandResult{Busy: true}
	d.mu.Unlock()
	d.notify()

	logger := d.logger.With(zap.String("device_id", deviceID), zap.String("action", action))
	res, err := d.sender.SendCommand(ctx, deviceID, action, value)

	out := model.CommandResult{}
	if err != nil {
		logger.Error("failed to send command", zap.Error(err))
		out.Error = lo.ToPtr(MessageFailed)
	} else {
		msg := MessageSent
		if res != nil && lo.FromPtr(res.Message) != "" {
			msg = *res.Message
		}
		logger.Info("command sent", zap.String("message", msg))
		out.Message = lo.ToPtr(msg)
	}

	d.mu.Lock()
	current := d.gen == gen
	if current {
		d.result = out
	}
	d.mu.Unlock()

	if current {
		d.notify()
	} else {
		logger.Debug("command result superseded")
	}
	return out
}

// Result returns the open device and its command result.
func (d *Dispatcher) Result() model.CommandSlot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.slot()
}

func (d *Dispatcher) slot() model.CommandSlot {
	return model.CommandSlot{DeviceID: d.deviceID, Result: d.result}
}

func (d *Dispatcher) notify() {
	if d.onChange != nil {
		d.onChange()
	}
}
