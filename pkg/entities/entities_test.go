/*
 * Copyright (c) 2023 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package entities

import (
	"context"
	"encoding/json"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/discovery"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/ihc"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
	"time"
)

const serial = "4c1234"

func openSimulator(t *testing.T) (*ihc.Simulator, *ihc.Session) {
	sim := ihc.NewSimulator(serial, "")
	session, err := ihc.Open(context.Background(), func(string, string, string) (ihc.Controller, error) {
		return sim, nil
	}, "", "", "")
	require.NoError(t, err)
	t.Cleanup(session.Close)
	return sim, session
}

// attach registers the entity and returns a function waiting for the n-th change notification
func attach(t *testing.T, entity Entity) func(n int) {
	mux := sync.Mutex{}
	count := 0
	require.True(t, entity.Attach(func(e Entity) {
		assert.Same(t, entity, e)
		mux.Lock()
		defer mux.Unlock()
		count++
	}))
	return func(n int) {
		assert.Eventually(t, func() bool {
			mux.Lock()
			defer mux.Unlock()
			return count >= n
		}, time.Second, 5*time.Millisecond)
	}
}

func state(t *testing.T, entity Entity, result interface{}) {
	payload, err := entity.State()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, result))
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *int {
	return &i
}

func TestBase(t *testing.T) {
	_, session := openSimulator(t)
	device := discovery.Device{
		ResourceId: 123,
		Product:    discovery.Product{Id: 77, Name: "Dimmer", Note: "note", Position: "wall", Model: "0x4406", Group: "Kitchen"},
	}
	entity := NewSensor(session, "Kitchen_123", device)
	assert.Equal(t, "ihc4c1234123", entity.UniqueId())
	assert.Equal(t, model.Sensor, entity.Platform())
	assert.Equal(t, serial, entity.ControllerId())

	productDevice, ok := entity.ProductDevice()
	assert.True(t, ok)
	assert.Equal(t, ProductDevice{
		Id:           "4c1234_77",
		Name:         "Dimmer (wall)",
		Manufacturer: "Schneider Electric",
		Model:        "0x4406",
		ViaDevice:    serial,
	}, productDevice)

	assert.Empty(t, entity.StateAttributes(false, true))
	assert.Equal(t, map[string]interface{}{
		"ihc_id":       123,
		"ihc_name":     "Dimmer",
		"ihc_note":     "note",
		"ihc_position": "wall",
	}, entity.StateAttributes(true, false))
	assert.Equal(t, serial, entity.StateAttributes(true, true)["ihc_controller"])

	manual := NewSensor(session, "ihc_5", discovery.Device{ResourceId: 5, Product: discovery.Product{Name: "ihc_5"}})
	_, ok = manual.ProductDevice()
	assert.False(t, ok)

	_, err := manual.Handle(context.Background(), "unknown", nil)
	assert.ErrorIs(t, err, model.ErrUnknownService)
}

func TestAttachRegistersOnce(t *testing.T) {
	sim, session := openSimulator(t)
	entity := NewSwitch(session, "s", discovery.Device{ResourceId: 1})
	attach(t, entity)
	assert.Equal(t, 1, sim.NotifyRegistrations(1))
}

func TestBinarySensor(t *testing.T) {
	sim, session := openSimulator(t)

	sensor := NewBinarySensor(session, "b", discovery.Device{ResourceId: 1, Config: discovery.ProductConfig{Type: "door"}})
	inverted := NewBinarySensor(session, "i", discovery.Device{ResourceId: 2, Config: discovery.ProductConfig{Inverting: true, Type: "unknown-class"}})

	result := BinarySensorState{}
	state(t, sensor, &result)
	assert.Nil(t, result.State, "unknown until first notification")

	waitSensor := attach(t, sensor)
	waitInverted := attach(t, inverted)
	sim.Trigger(1, true)
	sim.Trigger(2, true)
	waitSensor(1)
	waitInverted(1)

	state(t, sensor, &result)
	assert.Equal(t, BinarySensorState{State: boolPtr(true), DeviceClass: "door"}, result)
	result = BinarySensorState{}
	state(t, inverted, &result)
	assert.Equal(t, BinarySensorState{State: boolPtr(false)}, result)
}

func TestSwitch(t *testing.T) {
	sim, session := openSimulator(t)
	entity := NewSwitch(session, "s", discovery.Device{ResourceId: 10})
	wait := attach(t, entity)

	_, err := entity.Handle(context.Background(), model.SetService, []byte(`{"state": true}`))
	require.NoError(t, err)
	wait(1)
	result := SwitchState{}
	state(t, entity, &result)
	assert.True(t, result.State)

	_, err = entity.Handle(context.Background(), model.SetService, []byte(`{"state": false}`))
	require.NoError(t, err)
	assert.Equal(t, []ihc.Write{{ResourceId: 10, Value: true}, {ResourceId: 10, Value: false}}, sim.Writes())

	_, err = entity.Handle(context.Background(), model.SetService, []byte(`{}`))
	assert.ErrorIs(t, err, model.ErrInvalidCommand)
	_, err = entity.Handle(context.Background(), model.SetService, []byte(`not json`))
	assert.ErrorIs(t, err, model.ErrInvalidCommand)
}

func TestSwitchPulseIds(t *testing.T) {
	sim, session := openSimulator(t)
	entity := NewSwitch(session, "s", discovery.Device{ResourceId: 10, Config: discovery.ProductConfig{OnId: 11, OffId: 12}})

	require.NoError(t, entity.TurnOn(context.Background()))
	require.NoError(t, entity.TurnOff(context.Background()))
	assert.Equal(t, []ihc.Write{
		{ResourceId: 11, Value: true},
		{ResourceId: 11, Value: false},
		{ResourceId: 12, Value: true},
		{ResourceId: 12, Value: false},
	}, sim.Writes())
}

func TestBrightnessConversion(t *testing.T) {
	for brightness := 0; brightness <= MaxBrightness; brightness++ {
		level := BrightnessToLevel(brightness)
		assert.GreaterOrEqual(t, level, 0)
		assert.LessOrEqual(t, level, 100)
	}
	assert.Equal(t, 100, BrightnessToLevel(255))
	assert.Equal(t, 50, BrightnessToLevel(128))
	assert.Equal(t, 1, BrightnessToLevel(2))
	assert.Equal(t, 255, LevelToBrightness(100))
	assert.Equal(t, 128, LevelToBrightness(50))
	assert.Equal(t, 3, LevelToBrightness(1))
	for level := 0; level <= 100; level++ {
		assert.Equal(t, level, BrightnessToLevel(LevelToBrightness(float64(level))), level)
	}
}

func TestDimmableLight(t *testing.T) {
	sim, session := openSimulator(t)
	light := NewLight(session, "l", discovery.Device{ResourceId: 20, Config: discovery.ProductConfig{Dimmable: true}})
	wait := attach(t, light)
	ctx := context.Background()

	require.NoError(t, light.TurnOn(ctx, nil))
	wait(1)
	result := LightState{}
	state(t, light, &result)
	assert.Equal(t, LightState{State: boolPtr(true), Brightness: 255, Dimmable: true}, result)

	_, err := light.Handle(ctx, model.SetService, []byte(`{"state": true, "brightness": 128}`))
	require.NoError(t, err)
	wait(2)
	state(t, light, &result)
	assert.Equal(t, LightState{State: boolPtr(true), Brightness: 128, Dimmable: true}, result)

	_, err = light.Handle(ctx, model.SetService, []byte(`{"state": false}`))
	require.NoError(t, err)
	wait(3)
	state(t, light, &result)
	assert.Equal(t, LightState{State: boolPtr(false), Brightness: 128, Dimmable: true}, result, "brightness is kept while off")

	require.NoError(t, light.TurnOn(ctx, nil))
	assert.Equal(t, []ihc.Write{
		{ResourceId: 20, Value: 100},
		{ResourceId: 20, Value: 50},
		{ResourceId: 20, Value: 0},
		{ResourceId: 20, Value: 50},
	}, sim.Writes())

	_, err = light.Handle(ctx, model.SetService, []byte(`{"brightness": 300}`))
	assert.ErrorIs(t, err, model.ErrInvalidCommand)
}

func TestLightBecomesSwitchOnBoolNotification(t *testing.T) {
	sim, session := openSimulator(t)
	light := NewLight(session, "l", discovery.Device{ResourceId: 20, Config: discovery.ProductConfig{Dimmable: true}})
	wait := attach(t, light)
	sim.Trigger(20, true)
	wait(1)

	result := LightState{}
	state(t, light, &result)
	assert.Equal(t, LightState{State: boolPtr(true), Dimmable: false}, result)

	require.NoError(t, light.TurnOff(context.Background()))
	assert.Equal(t, []ihc.Write{{ResourceId: 20, Value: false}}, sim.Writes())
}

func TestLightPulseIds(t *testing.T) {
	sim, session := openSimulator(t)
	light := NewLight(session, "l", discovery.Device{ResourceId: 20, Config: discovery.ProductConfig{OnId: 21, OffId: 22}})
	require.NoError(t, light.TurnOn(context.Background(), intPtr(10)))
	require.NoError(t, light.TurnOff(context.Background()))
	assert.Equal(t, []ihc.Write{
		{ResourceId: 21, Value: true},
		{ResourceId: 21, Value: false},
		{ResourceId: 22, Value: true},
		{ResourceId: 22, Value: false},
	}, sim.Writes())
}

func TestSensor(t *testing.T) {
	sim, session := openSimulator(t)
	sensor := NewSensor(session, "t", discovery.Device{ResourceId: 30, Config: discovery.ProductConfig{Unit: "°C"}})
	wait := attach(t, sensor)
	sim.Trigger(30, 21.5)
	wait(1)

	payload, err := sensor.Handle(context.Background(), model.GetService, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value": 21.5, "unit": "°C"}`, string(payload))
}

func TestButton(t *testing.T) {
	sim, session := openSimulator(t)
	sim.Trigger(40, true)
	button := NewButton(session, "b", discovery.Device{ResourceId: 40})
	wait := attach(t, button)
	wait(1)

	_, err := button.Handle(context.Background(), model.PressService, nil)
	require.NoError(t, err)
	assert.Equal(t, []ihc.Write{{ResourceId: 40, Value: true}, {ResourceId: 40, Value: false}}, sim.Writes())
	wait(3)

	result := ButtonState{}
	state(t, button, &result)
	assert.False(t, result.State)
}

func TestBuild(t *testing.T) {
	_, session := openSimulator(t)
	mapping := discovery.Mapping{
		model.Switch: {
			"b": {ResourceId: 2},
			"a": {ResourceId: 1},
		},
		model.BinarySensor: {
			"c": {ResourceId: 3},
		},
	}
	list := Build(session, mapping)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].Name())
	assert.Equal(t, model.BinarySensor, list[0].Platform())
	assert.Equal(t, "a", list[1].Name())
	assert.Equal(t, "b", list[2].Name())
	assert.Equal(t, 2, list[2].ResourceId())
}
