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
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/discovery"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"math"
)

const MaxBrightness = 255

// Light is either dimmable (integer level resource, 0-100) or a plain on/off resource.
// The kind is corrected by the type of the first notification value.
type Light struct {
	Base
	state      *bool
	brightness int
	dimmable   bool
	onId       int
	offId      int
}

type LightState struct {
	State      *bool `json:"state"`
	Brightness int   `json:"brightness"`
	Dimmable   bool  `json:"dimmable"`
}

type LightCommand struct {
	State      *bool `json:"state"`
	Brightness *int  `json:"brightness,omitempty"`
}

func NewLight(session Session, name string, device discovery.Device) *Light {
	this := &Light{
		dimmable: device.Config.Dimmable,
		onId:     device.Config.OnId,
		offId:    device.Config.OffId,
	}
	this.init(session, model.Light, name, device, this)
	return this
}

// BrightnessToLevel converts a brightness (0-255) to an ihc light level (0-100).
func BrightnessToLevel(brightness int) int {
	return int(math.Round(float64(brightness) * 100 / MaxBrightness))
}

// LevelToBrightness converts an ihc light level (0-100) to a brightness (0-255).
func LevelToBrightness(level float64) int {
	return int(math.Round(level * MaxBrightness / 100))
}

// TurnOn uses brightness if not nil, else the last known brightness or full brightness.
func (this *Light) TurnOn(ctx context.Context, brightness *int) error {
	this.mux.Lock()
	dimmable := this.dimmable
	target := this.brightness
	this.mux.Unlock()
	if brightness != nil {
		target = *brightness
	} else if target == 0 {
		target = MaxBrightness
	}
	if dimmable {
		return this.session.SetInt(ctx, this.resourceId, BrightnessToLevel(target))
	}
	return this.switchTo(ctx, true, this.onId, this.offId)
}

func (this *Light) TurnOff(ctx context.Context) error {
	this.mux.Lock()
	dimmable := this.dimmable
	this.mux.Unlock()
	if dimmable {
		return this.session.SetInt(ctx, this.resourceId, 0)
	}
	return this.switchTo(ctx, false, this.onId, this.offId)
}

func (this *Light) onIhcChange(value interface{}) {
	this.mux.Lock()
	defer this.mux.Unlock()
	if b, ok := value.(bool); ok {
		this.dimmable = false
		this.state = &b
		return
	}
	level, ok := toFloat(value)
	if !ok {
		return
	}
	this.dimmable = true
	on := level > 0
	this.state = &on
	if on {
		this.brightness = LevelToBrightness(level)
	}
}

func (this *Light) State() ([]byte, error) {
	this.mux.Lock()
	defer this.mux.Unlock()
	return json.Marshal(LightState{State: this.state, Brightness: this.brightness, Dimmable: this.dimmable})
}

func (this *Light) Handle(ctx context.Context, serviceId string, data []byte) ([]byte, error) {
	if serviceId != model.SetService {
		return this.handleGet(serviceId)
	}
	command := LightCommand{}
	err := decodeCommand(data, &command)
	if err != nil {
		return nil, err
	}
	if command.Brightness != nil && (*command.Brightness < 0 || *command.Brightness > MaxBrightness) {
		return nil, fmt.Errorf("%w: brightness %v out of range 0-%v", model.ErrInvalidCommand, *command.Brightness, MaxBrightness)
	}
	switch {
	case command.State == nil && command.Brightness == nil:
		return nil, fmt.Errorf("%w: missing state", model.ErrInvalidCommand)
	case command.State != nil && !*command.State:
		return nil, this.TurnOff(ctx)
	default:
		return nil, this.TurnOn(ctx, command.Brightness)
	}
}
