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

package discovery

import (
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"sort"
)

// ProductConfig holds the static per platform options of a device.
// Zero values mean "not set": OnId/OffId 0 disables pulse switching.
type ProductConfig struct {
	Inverting bool   `yaml:"inverting,omitempty"`
	Type      string `yaml:"type,omitempty"`
	Dimmable  bool   `yaml:"dimmable,omitempty"`
	OnId      int    `yaml:"on_id,omitempty"`
	OffId     int    `yaml:"off_id,omitempty"`
	Unit      string `yaml:"unit_of_measurement,omitempty"`
}

// Product describes the ihc product a resource belongs to.
// Id is only set for products found in the controller project.
type Product struct {
	Id       int    `yaml:"id,omitempty"`
	Name     string `yaml:"name"`
	Note     string `yaml:"note"`
	Position string `yaml:"position"`
	Model    string `yaml:"model,omitempty"`
	Group    string `yaml:"group,omitempty"`
}

type Device struct {
	ResourceId   int           `yaml:"ihc_id"`
	ControllerId string        `yaml:"ctrl_id"`
	Product      Product       `yaml:"product"`
	Config       ProductConfig `yaml:"product_cfg"`
}

// Mapping maps platform -> device name -> device
type Mapping map[model.Platform]map[string]Device

// Merge copies all devices of other into this mapping; devices of other win on name collisions.
func (this Mapping) Merge(other Mapping) {
	for platform, devices := range other {
		if len(devices) == 0 {
			continue
		}
		if this[platform] == nil {
			this[platform] = map[string]Device{}
		}
		for name, device := range devices {
			this[platform][name] = device
		}
	}
}

func (this Mapping) Len() (result int) {
	for _, devices := range this {
		result = result + len(devices)
	}
	return result
}

// Names returns the device names of platform in sorted order.
func (this Mapping) Names(platform model.Platform) (result []string) {
	for name := range this[platform] {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func (this Mapping) String() string {
	counts := map[model.Platform]int{}
	for platform, devices := range this {
		counts[platform] = len(devices)
	}
	return fmt.Sprint(counts)
}
