package model

import "github.com/samber/lo"

type Device struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        DeviceType `json:"type"`
	Status      string     `json:"status"`
	Brightness  *int       `json:"brightness,omitempty"`  // lights, 0-100.
	Temperature *int       `json:"temperature,omitempty"` // thermostats, °F.
	Mode        string     `json:"mode,omitempty"`        // thermostats, cool/heat/off.
	LastUpdated Timestamp  `json:"lastUpdated,omitempty"`
	Attributes  Attributes `json:"-"`
}

func (d *Device) UnmarshalJSON(data []byte) error {
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}
	*d = Device{}
	fields.take("id", &d.ID)
	fields.take("name", &d.Name)
	fields.take("type", &d.Type)
	fields.take("status", &d.Status)
	fields.take("brightness", &d.Brightness)
	fields.take("temperature", &d.Temperature)
	fields.take("mode", &d.Mode)
	fields.take("lastUpdated", &d.LastUpdated)
	d.Attributes = fields.rest()
	return nil
}

func (d Device) MarshalJSON() ([]byte, error) {
	type plain Device
	return d.Attributes.merge(plain(d))
}

type Devices []Device

// Find returns the device with the given id.
func (d Devices) Find(id string) (Device, bool) {
	return lo.Find(d, func(device Device) bool {
		return device.ID == id
	})
}

type Event struct {
	ID         string     `json:"id"`
	Timestamp  Timestamp  `json:"timestamp,omitempty"`
	DeviceID   string     `json:"deviceId"` // may reference a device that no longer exists.
	DeviceName string     `json:"deviceName"`
	Type       EventType  `json:"type"`
	Message    string     `json:"message"`
	Attributes Attributes `json:"-"`
}

func (e *Event) UnmarshalJSON(data []byte) error {
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}
	*e = Event{}
	fields.take("id", &e.ID)
	fields.take("timestamp", &e.Timestamp)
	fields.take("deviceId", &e.DeviceID)
	fields.take("deviceName", &e.DeviceName)
	fields.take("type", &e.Type)
	fields.take("message", &e.Message)
	e.Attributes = fields.rest()
	return nil
}

func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	return e.Attributes.merge(plain(e))
}

type Events []Event

// ################################
// Remote service payloads

type DevicesPayload struct {
	Devices Devices `json:"devices"`
}

type EventsPayload struct {
	Events Events `json:"events"`
}

type CommandRequest struct {
	DeviceID string `json:"deviceId"`
	Action   string `json:"action"`
	Value    any    `json:"value,omitempty"`
}

type CommandResponse struct {
	Message *string `json:"message,omitempty"`
}

// ################################
