package model

type DeviceType string

func (dt DeviceType) String() string {
	return string(dt)
}

const (
	DeviceTypeLight        DeviceType = "light"
	DeviceTypeThermostat   DeviceType = "thermostat"
	DeviceTypeMotionSensor DeviceType = "motion_sensor"
)

type EventType string

func (et EventType) String() string {
	return string(et)
}

const (
	EventTypeUserCommand EventType = "user_command"
	EventTypeSensorEvent EventType = "sensor_event"
	EventTypeAIDecision  EventType = "ai_decision"
	EventTypeError       EventType = "error"
)

// ResourceKind names a polled collection. The string value doubles as the
// field the remote service wraps the collection in.
type ResourceKind string

func (rk ResourceKind) String() string {
	return string(rk)
}

const (
	ResourceDevices ResourceKind = "devices"
	ResourceEvents  ResourceKind = "events"
)

var ResourceKinds = []ResourceKind{
	ResourceDevices,
	ResourceEvents,
}

// Actions understood by the dashboard's device controls. The gateway
// forwards any action string untouched.
const (
	ActionTurnOn         = "turn_on"
	ActionTurnOff        = "turn_off"
	ActionSetBrightness  = "set_brightness"
	ActionSetTemperature = "set_temperature"
	ActionSetMode        = "set_mode"
)
