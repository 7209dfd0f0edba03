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
	paho "github.com/eclipse/paho.mqtt.golang"
)

type Command struct {
	CommandId string `json:"command_id"`
	Data      string `json:"data"`
}

// ListenToDeviceCommands subscribes to all services of deviceId.
func (this *Client) ListenToDeviceCommands(deviceId string, handler DeviceCommandHandler) error {
	this.deviceCommandsMux.Lock()
	this.deviceCommands[deviceId] = handler
	this.deviceCommandsMux.Unlock()
	return this.subscribe(commandTopic(deviceId), this.handleCommandMessage)
}

func (this *Client) StopListenToDeviceCommands(deviceId string) error {
	this.deviceCommandsMux.Lock()
	delete(this.deviceCommands, deviceId)
	this.deviceCommandsMux.Unlock()
	return this.unsubscribe(commandTopic(deviceId))
}

func (this *Client) handleCommandMessage(_ paho.Client, message paho.Message) {
	deviceId, serviceId, ok := parseCommandTopic(message.Topic())
	if !ok {
		this.logger.Info("WARNING: unable to parse command topic", "topic", message.Topic())
		return
	}
	command := Command{}
	err := json.Unmarshal(message.Payload(), &command)
	if err != nil {
		this.logger.Error(err, "unable to unmarshal command", "topic", message.Topic())
		return
	}
	this.deviceCommandsMux.Lock()
	handler, ok := this.deviceCommands[deviceId]
	this.deviceCommandsMux.Unlock()
	if !ok {
		this.logger.Info("WARNING: received command for unknown device", "device", deviceId)
		return
	}
	handler(deviceId, serviceId, command)
}

func (this *Client) Respond(deviceId string, serviceId string, response Command) error {
	msg, err := json.Marshal(response)
	if err != nil {
		return err
	}
	return this.publish(responseTopic(deviceId, serviceId), msg)
}
