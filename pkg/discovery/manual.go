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
	"errors"
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"slices"
)

const ManualSetupFile = "ihc_manual_setup.yaml"

var ErrInvalidManualSetup = errors.New("invalid ihc manual setup data")

type ManualDevice struct {
	Id            int    `yaml:"id"`
	Name          string `yaml:"name"`
	Note          string `yaml:"note,omitempty"`
	Position      string `yaml:"position,omitempty"`
	ProductConfig `yaml:",inline"`
}

type ManualController struct {
	Controller string
	// overrides the info option of the controller entry when set
	Info       *bool
	Devices    map[model.Platform][]ManualDevice
}

var deviceKeys = []string{"id", "name", "note", "position"}

var manualKeys = map[model.Platform][]string{
	model.BinarySensor: append(slices.Clone(deviceKeys), "inverting", "type"),
	model.Light:        append(slices.Clone(deviceKeys), "dimmable", "on_id", "off_id"),
	model.Sensor:       append(slices.Clone(deviceKeys), "unit_of_measurement"),
	model.Switch:       append(slices.Clone(deviceKeys), "on_id", "off_id"),
	model.Button:       slices.Clone(deviceKeys),
}

// ManualSetup reads ManualSetupFile from dir and returns the devices configured for controllerId.
// A missing file or a file without entry for the controller results in an empty mapping.
func ManualSetup(dir string, controllerId string) (Mapping, error) {
	controller, err := LoadManualController(dir, controllerId)
	if err != nil {
		return nil, err
	}
	return controller.Mapping(), nil
}

// LoadManualController returns the entry of controllerId in ManualSetupFile; the zero value if there is none.
func LoadManualController(dir string, controllerId string) (ManualController, error) {
	content, err := os.ReadFile(filepath.Join(dir, ManualSetupFile))
	if errors.Is(err, os.ErrNotExist) {
		return ManualController{Controller: controllerId}, nil
	}
	if err != nil {
		return ManualController{}, err
	}
	controllers, err := ParseManualSetup(content)
	if err != nil {
		return ManualController{}, err
	}
	for _, controller := range controllers {
		if controller.Controller == controllerId {
			return controller, nil
		}
	}
	return ManualController{Controller: controllerId}, nil
}

// Mapping converts the manual device list; devices are keyed by their name.
func (this ManualController) Mapping() Mapping {
	result := Mapping{}
	for _, platform := range model.Platforms {
		devices := map[string]Device{}
		for _, device := range this.Devices[platform] {
			devices[device.Name] = Device{
				ResourceId:   device.Id,
				ControllerId: this.Controller,
				Product: Product{
					Name:     device.Name,
					Note:     device.Note,
					Position: device.Position,
				},
				Config: device.ProductConfig,
			}
		}
		if len(devices) > 0 {
			result[platform] = devices
		}
	}
	return result
}

func ParseManualSetup(content []byte) (result []ManualController, err error) {
	root, err := parseDocument(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManualSetup, err)
	}
	pairs, err := mappingPairs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManualSetup, err)
	}
	found := false
	for _, pair := range pairs {
		if pair.key != "ihc" {
			return nil, fmt.Errorf("%w: extra key %v not allowed", ErrInvalidManualSetup, pair.key)
		}
		found = true
		for i, item := range ensureList(pair.value) {
			controller, err := parseManualController(item)
			if err != nil {
				return nil, fmt.Errorf("%w: ihc[%v]: %w", ErrInvalidManualSetup, i, err)
			}
			result = append(result, controller)
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: missing key ihc", ErrInvalidManualSetup)
	}
	return result, nil
}

func parseManualController(node *yaml.Node) (result ManualController, err error) {
	pairs, err := mappingPairs(node)
	if err != nil {
		return result, err
	}
	result.Devices = map[model.Platform][]ManualDevice{}
	hasController := false
	for _, pair := range pairs {
		switch pair.key {
		case "controller":
			err = pair.value.Decode(&result.Controller)
			if err != nil {
				return result, err
			}
			hasController = true
		case "info":
			var info bool
			err = pair.value.Decode(&info)
			if err != nil {
				return result, err
			}
			result.Info = &info
		default:
			platform := model.Platform(pair.key)
			allowed, ok := manualKeys[platform]
			if !ok {
				return result, fmt.Errorf("extra key %v not allowed", pair.key)
			}
			for i, item := range ensureList(pair.value) {
				device, err := parseManualDevice(platform, item, allowed)
				if err != nil {
					return result, fmt.Errorf("%v[%v]: %w", platform, i, err)
				}
				result.Devices[platform] = append(result.Devices[platform], device)
			}
		}
	}
	if !hasController {
		return result, errors.New("missing key controller")
	}
	return result, nil
}

func parseManualDevice(platform model.Platform, node *yaml.Node, allowed []string) (device ManualDevice, err error) {
	keys, err := decodeStrict(node, &device, allowed)
	if err != nil {
		return device, err
	}
	if !slices.Contains(keys, "id") {
		return device, errors.New("missing key id")
	}
	if device.Id < 0 || device.OnId < 0 || device.OffId < 0 {
		return device, errors.New("ids must not be negative")
	}
	if device.Name == "" {
		device.Name = fmt.Sprintf("ihc_%v", device.Id)
	}
	if platform == model.Sensor && !slices.Contains(keys, "unit_of_measurement") {
		device.Unit = DefaultUnit
	}
	if platform == model.BinarySensor && device.Type != "" && !slices.Contains(BinarySensorDeviceClasses, device.Type) {
		return device, fmt.Errorf("unknown binary sensor type %v", device.Type)
	}
	return device, nil
}

// BinarySensorDeviceClasses are the known binary sensor types.
var BinarySensorDeviceClasses = []string{
	"battery", "battery_charging", "carbon_monoxide", "cold", "connectivity", "door", "garage_door", "gas", "heat",
	"light", "lock", "moisture", "motion", "moving", "occupancy", "opening", "plug", "power", "presence", "problem",
	"running", "safety", "smoke", "sound", "tamper", "update", "vibration", "window",
}
