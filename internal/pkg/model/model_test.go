package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevice_JSON(t *testing.T) {
	raw := `{"id":"th","name":"Hall","type":"humidistat","status":"idle","humidity":40,"temperature":"warm","lastUpdated":"2025-11-20T13:02:10.123456"}`

	var d Device
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	assert.Equal(t, "th", d.ID)
	assert.Nil(t, d.Temperature, "a value that does not fit stays an attribute")
	assert.JSONEq(t, `40`, string(d.Attributes["humidity"]))
	assert.JSONEq(t, `"warm"`, string(d.Attributes["temperature"]))

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestDevice_JSONWithoutExtras(t *testing.T) {
	var d Device
	require.NoError(t, json.Unmarshal([]byte(`{"id":"light_1","name":"Lamp","type":"light","status":"on","brightness":40}`), &d))
	assert.Nil(t, d.Attributes)
	assert.True(t, d.LastUpdated.IsZero())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"light_1","name":"Lamp","type":"light","status":"on","brightness":40}`, string(out))
}

func TestDevice_NotAnObject(t *testing.T) {
	for _, raw := range []string{`42`, `"light"`, `null`, `[]`} {
		var d Device
		assert.Error(t, json.Unmarshal([]byte(raw), &d), raw)
	}
}

func TestEvent_JSON(t *testing.T) {
	raw := `{"id":"evt_1","timestamp":1732107720,"deviceId":"light_1","deviceName":"Lamp","type":"ai_decision","message":"on","confidence":0.9}`

	var e Event
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	assert.Equal(t, EventTypeAIDecision, e.Type)
	assert.Equal(t, "1732107720", e.Timestamp.String())

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestDeviceStateMessage_JSON(t *testing.T) {
	msg := DeviceStateMessage{
		Device:      Device{ID: "th", Name: "Hall", Type: "humidistat", Status: "idle", Attributes: Attributes{"humidity": json.RawMessage(`40`)}},
		PublishedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	out, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"th","name":"Hall","type":"humidistat","status":"idle","humidity":40,"publishedAt":"2026-01-02T03:04:05Z"}`, string(out))
	assert.Len(t, msg.Device.Attributes, 1, "marshalling leaves the device untouched")
}
