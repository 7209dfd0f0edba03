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

func (this *Client) SendEvent(deviceId string, serviceId string, value []byte) error {
	return this.publish(eventTopic(deviceId, serviceId), value)
}

// SendClientError publishes message prefixed by the connector id.
func (this *Client) SendClientError(message string) {
	err := this.publish(ClientErrorTopic, []byte(this.connectorId+": "+message))
	if err != nil {
		this.logger.Error(err, "unable to send client error", "message", message)
	}
}

func (this *Client) SendDeviceError(deviceId string, message string) {
	err := this.publish(deviceErrorTopicPrefix+deviceId, []byte(message))
	if err != nil {
		this.logger.Error(err, "unable to send device error", "device", deviceId, "message", message)
	}
}

func (this *Client) SendCommandError(commandId string, message string) {
	err := this.publish(commandErrorTopicPrefix+commandId, []byte(message))
	if err != nil {
		this.logger.Error(err, "unable to send command error", "command", commandId, "message", message)
	}
}
