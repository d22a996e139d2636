package model

import (
	"encoding/json"
	"maps"
	"time"
)

type DeviceStateMessage struct {
	Device
	PublishedAt time.Time `json:"publishedAt"`
}

// MarshalJSON flattens the device next to the publish time. Without it the
// embedded Device's encoder would drop PublishedAt.
func (m DeviceStateMessage) MarshalJSON() ([]byte, error) {
	type plain Device
	published, err := json.Marshal(m.PublishedAt)
	if err != nil {
		return nil, err
	}
	fields := maps.Clone(m.Device.Attributes)
	if fields == nil {
		fields = Attributes{}
	}
	fields["publishedAt"] = published
	return fields.merge(plain(m.Device))
}

type StatusMessage struct {
	Status
	DeviceCount int       `json:"deviceCount"`
	EventCount  int       `json:"eventCount"`
	PublishedAt time.Time `json:"publishedAt"`
}
