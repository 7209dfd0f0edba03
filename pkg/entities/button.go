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
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
)

// Button pulses its resource on press.
type Button struct {
	Base
	state bool
}

type ButtonState struct {
	State bool `json:"state"`
}

func NewButton(session Session, name string, device discovery.Device) *Button {
	this := &Button{}
	this.init(session, model.Button, name, device, this)
	return this
}

func (this *Button) Press(ctx context.Context) error {
	return this.session.Pulse(ctx, this.resourceId)
}

func (this *Button) onIhcChange(value interface{}) {
	this.mux.Lock()
	defer this.mux.Unlock()
	this.state = toBool(value)
}

func (this *Button) State() ([]byte, error) {
	this.mux.Lock()
	defer this.mux.Unlock()
	return json.Marshal(ButtonState{State: this.state})
}

func (this *Button) Handle(ctx context.Context, serviceId string, _ []byte) ([]byte, error) {
	if serviceId == model.PressService {
		return nil, this.Press(ctx)
	}
	return this.handleGet(serviceId)
}
