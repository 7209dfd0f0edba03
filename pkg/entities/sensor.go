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

type Sensor struct {
	Base
	value interface{}
	unit  string
}

type SensorState struct {
	Value interface{} `json:"value"`
	Unit  string      `json:"unit"`
}

func NewSensor(session Session, name string, device discovery.Device) *Sensor {
	this := &Sensor{unit: device.Config.Unit}
	this.init(session, model.Sensor, name, device, this)
	return this
}

func (this *Sensor) onIhcChange(value interface{}) {
	this.mux.Lock()
	defer this.mux.Unlock()
	this.value = value
}

func (this *Sensor) State() ([]byte, error) {
	this.mux.Lock()
	defer this.mux.Unlock()
	return json.Marshal(SensorState{Value: this.value, Unit: this.unit})
}

func (this *Sensor) Handle(_ context.Context, serviceId string, _ []byte) ([]byte, error) {
	return this.handleGet(serviceId)
}
