package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anicoll/homedash/internal/pkg/config"
	"github.com/anicoll/homedash/internal/pkg/model"
)

func TestSeed(t *testing.T) {
	devices := Seed{}.Devices()
	assert.Len(t, devices, 3)
	assert.Equal(t, []string{"light_livingroom_1", "thermostat_main", "sensor_hall_motion"},
		[]string{devices[0].ID, devices[1].ID, devices[2].ID})
	assert.Equal(t, 72, *devices[1].Temperature)

	events := Seed{}.Events()
	assert.Len(t, events, 3)
	assert.Equal(t, "evt_001", events[0].ID)
	assert.Equal(t, model.EventTypeSensorEvent, events[2].Type)
}

func TestSeed_ReturnsCopies(t *testing.T) {
	devices := Seed{}.Devices()
	devices[0].Status = "on"
	*devices[0].Brightness = 80

	fresh := Seed{}.Devices()
	assert.Equal(t, "off", fresh[0].Status)
	assert.Equal(t, 0, *fresh[0].Brightness)
}

func TestLastKnownGood(t *testing.T) {
	l := NewLastKnownGood()
	assert.Equal(t, Seed{}.Devices(), l.Devices(), "nothing remembered yet")
	assert.Equal(t, Seed{}.Events(), l.Events())

	remembered := model.Devices{{ID: "plug_1", Name: "Plug"}}
	l.RememberDevices(remembered)
	remembered[0].Name = "mutated"

	assert.Equal(t, model.Devices{{ID: "plug_1", Name: "Plug"}}, l.Devices())
	assert.Equal(t, Seed{}.Events(), l.Events(), "events are remembered independently")

	l.RememberEvents(model.Events{})
	assert.Empty(t, l.Events(), "an empty collection is a legitimate last-known-good")
	assert.NotNil(t, l.Events())
}

func TestNew(t *testing.T) {
	assert.IsType(t, Seed{}, New(config.FallbackSeed))
	assert.IsType(t, &LastKnownGood{}, New(config.FallbackLastKnownGood))
	assert.IsType(t, Seed{}, New("whatever"))
}
