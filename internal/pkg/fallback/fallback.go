package fallback

import (
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/anicoll/homedash/internal/pkg/config"
	"github.com/anicoll/homedash/internal/pkg/model"
)

// Policy supplies the collections shown when the remote service cannot.
type Policy interface {
	Devices() model.Devices
	Events() model.Events
}

// New returns the policy for mode, Seed for anything it does not know.
func New(mode config.FallbackMode) Policy {
	if mode == config.FallbackLastKnownGood {
		return NewLastKnownGood()
	}
	return Seed{}
}

// Seed always returns the built-in dataset.
type Seed struct{}

func (Seed) Devices() model.Devices {
	return seedDevices()
}

func (Seed) Events() model.Events {
	return seedEvents()
}

// LastKnownGood returns the most recently remembered collections, and the
// seed for a collection nothing was remembered for yet.
type LastKnownGood struct {
	mu      sync.RWMutex
	devices model.Devices
	events  model.Events
}

func NewLastKnownGood() *LastKnownGood {
	return &LastKnownGood{}
}

func (l *LastKnownGood) Devices() model.Devices {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.devices == nil {
		return seedDevices()
	}
	return slices.Clone(l.devices)
}

func (l *LastKnownGood) Events() model.Events {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.events == nil {
		return seedEvents()
	}
	return slices.Clone(l.events)
}

func (l *LastKnownGood) RememberDevices(devices model.Devices) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.devices = append(model.Devices{}, devices...)
}

func (l *LastKnownGood) RememberEvents(events model.Events) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(model.Events{}, events...)
}

func ts(v string) model.Timestamp {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		panic(err)
	}
	return model.TimestampOf(t)
}

func seedDevices() model.Devices {
	return model.Devices{
		{
			ID:          "light_livingroom_1",
			Name:        "Living Room Light",
			Type:        model.DeviceTypeLight,
			Status:      "off",
			Brightness:  lo.ToPtr(0),
			LastUpdated: ts("2025-11-20T13:02:00Z"),
		},
		{
			ID:          "thermostat_main",
			Name:        "Main Thermostat",
			Type:        model.DeviceTypeThermostat,
			Status:      "cooling",
			Temperature: lo.ToPtr(72),
			LastUpdated: ts("2025-11-20T13:05:00Z"),
		},
		{
			ID:          "sensor_hall_motion",
			Name:        "Hallway Motion Sensor",
			Type:        model.DeviceTypeMotionSensor,
			Status:      "idle",
			LastUpdated: ts("2025-11-20T13:10:00Z"),
		},
	}
}

func seedEvents() model.Events {
	return model.Events{
		{
			ID:         "evt_001",
			Timestamp:  ts("2025-11-20T13:02:10Z"),
			DeviceID:   "light_livingroom_1",
			DeviceName: "Living Room Light",
			Type:       model.EventTypeAIDecision,
			Message:    "LAM turned on the light due to detected motion.",
		},
		{
			ID:         "evt_002",
			Timestamp:  ts("2025-11-20T13:03:15Z"),
			DeviceID:   "thermostat_main",
			DeviceName: "Main Thermostat",
			Type:       model.EventTypeUserCommand,
			Message:    "User set temperature to 72°F.",
		},
		{
			ID:         "evt_003",
			Timestamp:  ts("2025-11-20T13:04:30Z"),
			DeviceID:   "sensor_hall_motion",
			DeviceName: "Hallway Motion Sensor",
			Type:       model.EventTypeSensorEvent,
			Message:    "Motion detected in hallway.",
		},
	}
}
