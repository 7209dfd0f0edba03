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
	"slices"
)

// BinarySensor reports a boolean resource, optionally inverted.
type BinarySensor struct {
	Base
	state       *bool
	inverting   bool
	deviceClass string
}

type BinarySensorState struct {
	State       *bool  `json:"state"`
	DeviceClass string `json:"device_class,omitempty"`
}

func NewBinarySensor(session Session, name string, device discovery.Device) *BinarySensor {
	this := &BinarySensor{inverting: device.Config.Inverting}
	if slices.Contains(discovery.BinarySensorDeviceClasses, device.Config.Type) {
		this.deviceClass = device.Config.Type
	}
	this.init(session, model.BinarySensor, name, device, this)
	return this
}

func (this *BinarySensor) onIhcChange(value interface{}) {
	state := toBool(value)
	if this.inverting {
		state = !state
	}
	this.mux.Lock()
	defer this.mux.Unlock()
	this.state = &state
}

func (this *BinarySensor) State() ([]byte, error) {
	this.mux.Lock()
	defer this.mux.Unlock()
	return json.Marshal(BinarySensorState{State: this.state, DeviceClass: this.deviceClass})
}

func (this *BinarySensor) Handle(_ context.Context, serviceId string, _ []byte) ([]byte, error) {
	return this.handleGet(serviceId)
}
