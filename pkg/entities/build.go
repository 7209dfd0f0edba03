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
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/discovery"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
)

type constructor func(session Session, name string, device discovery.Device) Entity

var constructors = map[model.Platform]constructor{
	model.BinarySensor: func(s Session, n string, d discovery.Device) Entity { return NewBinarySensor(s, n, d) },
	model.Light:        func(s Session, n string, d discovery.Device) Entity { return NewLight(s, n, d) },
	model.Sensor:       func(s Session, n string, d discovery.Device) Entity { return NewSensor(s, n, d) },
	model.Switch:       func(s Session, n string, d discovery.Device) Entity { return NewSwitch(s, n, d) },
	model.Button:       func(s Session, n string, d discovery.Device) Entity { return NewButton(s, n, d) },
}

// Build creates one entity per mapped device, ordered by platform and name.
func Build(session Session, mapping discovery.Mapping) (result []Entity) {
	for _, platform := range model.Platforms {
		for _, name := range mapping.Names(platform) {
			result = append(result, constructors[platform](session, name, mapping[platform][name]))
		}
	}
	return result
}
