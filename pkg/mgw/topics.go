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
	"errors"
	"strings"
)

var ErrNotConnected = errors.New("mqtt client not connected")

const RefreshTopic = "device-manager/refresh"
const deviceManagerTopicPrefix = "device-manager/device/"
const commandTopicPrefix = "command/"
const responseTopicPrefix = "response/"
const eventTopicPrefix = "event/"
const ClientErrorTopic = "error/client"
const deviceErrorTopicPrefix = "error/device/"
const commandErrorTopicPrefix = "error/command/"

func (this *Client) deviceManagerTopic() string {
	return deviceManagerTopicPrefix + this.connectorId
}

func (this *Client) lastWillTopic() string {
	return this.deviceManagerTopic() + "/lw"
}

func commandTopic(deviceId string) string {
	return commandTopicPrefix + deviceId + "/+"
}

func responseTopic(deviceId string, serviceId string) string {
	return responseTopicPrefix + deviceId + "/" + serviceId
}

func eventTopic(deviceId string, serviceId string) string {
	return eventTopicPrefix + deviceId + "/" + serviceId
}

// parseCommandTopic splits "command/{deviceId}/{serviceId}"; device ids may contain '/'
func parseCommandTopic(topic string) (deviceId string, serviceId string, ok bool) {
	if !strings.HasPrefix(topic, commandTopicPrefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(topic, commandTopicPrefix)
	index := strings.LastIndex(rest, "/")
	if index <= 0 || index == len(rest)-1 {
		return "", "", false
	}
	return rest[:index], rest[index+1:], true
}
