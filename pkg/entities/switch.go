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
)

// Switch writes its resource directly or pulses separate on/off resources if configured.
type Switch struct {
	Base
	state bool
	onId  int
	offId int
}

type SwitchState struct {
	State bool `json:"state"`
}

type SwitchCommand struct {
	State *bool `json:"state"`
}

func NewSwitch(session Session, name string, device discovery.Device) *Switch {
	this := &Switch{onId: device.Config.OnId, offId: device.Config.OffId}
	this.init(session, model.Switch, name, device, this)
	return this
}

func (this *Switch) TurnOn(ctx context.Context) error {
	return this.switchTo(ctx, true, this.onId, this.offId)
}

func (this *Switch) TurnOff(ctx context.Context) error {
	return this.switchTo(ctx, false, this.onId, this.offId)
}

func (this *Switch) onIhcChange(value interface{}) {
	this.mux.Lock()
	defer this.mux.Unlock()
	this.state = toBool(value)
}

func (this *Switch) State() ([]byte, error) {
	this.mux.Lock()
	defer this.mux.Unlock()
	return json.Marshal(SwitchState{State: this.state})
}

func (this *Switch) Handle(ctx context.Context, serviceId string, data []byte) ([]byte, error) {
	if serviceId != model.SetService {
		return this.handleGet(serviceId)
	}
	command := SwitchCommand{}
	err := decodeCommand(data, &command)
	if err != nil {
		return nil, err
	}
	if command.State == nil {
		return nil, fmt.Errorf("%w: missing state", model.ErrInvalidCommand)
	}
	if *command.State {
		return nil, this.TurnOn(ctx)
	}
	return nil, this.TurnOff(ctx)
}
