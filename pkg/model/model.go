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

package model

import (
	"errors"
	"github.com/SENERGY-Platform/models/go/models"
)

var ErrNotFound = errors.New("not found")
var ErrNotReady = errors.New("not ready")
var NoMatchingDeviceTypeFound = errors.New("unable to find matching device type")

var ErrNoController = errors.New("no ihc controller registered")
var ErrUnknownController = errors.New("unknown ihc controller")
var ErrAuthenticationFailed = errors.New("unable to authenticate on ihc controller")
var ErrNoSystemInfo = errors.New("unable to read system info of ihc controller")
var ErrWriteRejected = errors.New("ihc controller rejected runtime value")

var ErrInvalidServiceCall = errors.New("invalid service call")
var ErrUnknownService = errors.New("use of unknown service")
var ErrInvalidCommand = errors.New("invalid command")

type Platform string

const (
	BinarySensor Platform = "binary_sensor"
	Light        Platform = "light"
	Sensor       Platform = "sensor"
	Switch       Platform = "switch"
	Button       Platform = "button"

	// connector level devices without ihc resource
	ControllerPlatform Platform = "controller"
	ServicesPlatform   Platform = "services"
)

// Platforms lists the entity platforms in setup order.
var Platforms = []Platform{BinarySensor, Light, Sensor, Switch, Button}

func (this Platform) IsEntityPlatform() bool {
	for _, p := range Platforms {
		if p == this {
			return true
		}
	}
	return false
}

type DeviceType struct {
	Id          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Attributes  []models.Attribute `json:"attributes"`
}
