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

package mgw

import (
	"encoding/json"
	"github.com/SENERGY-Platform/models/go/models"
)

type State string

const (
	Online  State = "online"
	Offline State = "offline"
)

type DeviceInfo struct {
	Name       string             `json:"name"`
	State      State              `json:"state"`
	DeviceType string             `json:"device_type"`
	Attributes []models.Attribute `json:"attributes,omitempty"`
}

type DeviceInfoUpdate struct {
	Method   string     `json:"method"`
	DeviceId string     `json:"device_id"`
	Data     DeviceInfo `json:"data"`
}

func (this *Client) SetDevice(deviceId string, info DeviceInfo) error {
	return this.sendDeviceInfoUpdate(DeviceInfoUpdate{
		Method:   "set",
		DeviceId: deviceId,
		Data:     info,
	})
}

func (this *Client) RemoveDevice(deviceId string) error {
	return this.sendDeviceInfoUpdate(DeviceInfoUpdate{
		Method:   "delete",
		DeviceId: deviceId,
	})
}

func (this *Client) sendDeviceInfoUpdate(update DeviceInfoUpdate) error {
	msg, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return this.publish(this.deviceManagerTopic(), msg)
}
