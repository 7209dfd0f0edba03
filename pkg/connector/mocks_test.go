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

package connector

import (
	"context"
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/configuration"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/ihc"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/mgw"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"github.com/stretchr/testify/require"
	"os"
	"sort"
	"sync"
	"testing"
)

type mgwMock struct {
	mux           sync.Mutex
	refresh       func()
	devices       map[string]mgw.DeviceInfo
	removed       []string
	events        map[string][]string
	responses     map[string][]mgw.Command
	clientErrors  []string
	commandErrors map[string]string
	handlers      map[string]mgw.DeviceCommandHandler
}

func newMgwMock() *mgwMock {
	return &mgwMock{
		devices:       map[string]mgw.DeviceInfo{},
		events:        map[string][]string{},
		responses:     map[string][]mgw.Command{},
		commandErrors: map[string]string{},
		handlers:      map[string]mgw.DeviceCommandHandler{},
	}
}

func (this *mgwMock) factory(_ context.Context, _ *sync.WaitGroup, _ configuration.Config, refreshNotifier func()) (MgwClient, error) {
	this.mux.Lock()
	defer this.mux.Unlock()
	this.refresh = refreshNotifier
	return this, nil
}

func (this *mgwMock) SetDevice(deviceId string, info mgw.DeviceInfo) error {
	this.mux.Lock()
	defer this.mux.Unlock()
	this.devices[deviceId] = info
	return nil
}

func (this *mgwMock) RemoveDevice(deviceId string) error {
	this.mux.Lock()
	defer this.mux.Unlock()
	delete(this.devices, deviceId)
	this.removed = append(this.removed, deviceId)
	return nil
}

func (this *mgwMock) SendEvent(deviceId string, serviceId string, value []byte) error {
	this.mux.Lock()
	defer this.mux.Unlock()
	this.events[deviceId+"/"+serviceId] = append(this.events[deviceId+"/"+serviceId], string(value))
	return nil
}

func (this *mgwMock) Respond(deviceId string, serviceId string, response mgw.Command) error {
	this.mux.Lock()
	defer this.mux.Unlock()
	this.responses[response.CommandId] = append(this.responses[response.CommandId], response)
	return nil
}

func (this *mgwMock) SendClientError(message string) {
	this.mux.Lock()
	defer this.mux.Unlock()
	this.clientErrors = append(this.clientErrors, message)
}

func (this *mgwMock) SendDeviceError(deviceId string, message string) {}

func (this *mgwMock) SendCommandError(commandId string, message string) {
	this.mux.Lock()
	defer this.mux.Unlock()
	this.commandErrors[commandId] = message
}

func (this *mgwMock) ListenToDeviceCommands(deviceId string, handler mgw.DeviceCommandHandler) error {
	this.mux.Lock()
	defer this.mux.Unlock()
	this.handlers[deviceId] = handler
	return nil
}

func (this *mgwMock) StopListenToDeviceCommands(deviceId string) error {
	this.mux.Lock()
	defer this.mux.Unlock()
	delete(this.handlers, deviceId)
	return nil
}

func (this *mgwMock) deviceIds() (result []string) {
	this.mux.Lock()
	defer this.mux.Unlock()
	for id := range this.devices {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

func (this *mgwMock) device(id string) (mgw.DeviceInfo, bool) {
	this.mux.Lock()
	defer this.mux.Unlock()
	info, ok := this.devices[id]
	return info, ok
}

func (this *mgwMock) eventList(topic string) []string {
	this.mux.Lock()
	defer this.mux.Unlock()
	return append([]string{}, this.events[topic]...)
}

func (this *mgwMock) response(commandId string) ([]mgw.Command, string) {
	this.mux.Lock()
	defer this.mux.Unlock()
	return append([]mgw.Command{}, this.responses[commandId]...), this.commandErrors[commandId]
}

func (this *mgwMock) clientErrorList() []string {
	this.mux.Lock()
	defer this.mux.Unlock()
	return append([]string{}, this.clientErrors...)
}

// command simulates a hub command on a subscribed device
func (this *mgwMock) command(deviceId string, serviceId string, commandId string, data string) bool {
	this.mux.Lock()
	handler, ok := this.handlers[deviceId]
	this.mux.Unlock()
	if ok {
		handler(deviceId, serviceId, mgw.Command{CommandId: commandId, Data: data})
	}
	return ok
}

type deviceRepoMock struct {
	mux         sync.Mutex
	deviceTypes map[model.Platform]string
}

func (this *deviceRepoMock) FindDeviceTypeId(platform model.Platform) (string, bool, error) {
	this.mux.Lock()
	defer this.mux.Unlock()
	dtId, ok := this.deviceTypes[platform]
	if !ok {
		return "", false, fmt.Errorf("%w: platform=%v", model.NoMatchingDeviceTypeFound, platform)
	}
	return dtId, false, nil
}

func (this *deviceRepoMock) set(platform model.Platform, dtId string) {
	this.mux.Lock()
	defer this.mux.Unlock()
	this.deviceTypes[platform] = dtId
}

func allDeviceTypes() *deviceRepoMock {
	return &deviceRepoMock{deviceTypes: map[model.Platform]string{
		model.BinarySensor:       "dt-binary-sensor",
		model.Light:              "dt-light",
		model.Sensor:             "dt-sensor",
		model.Switch:             "dt-switch",
		model.Button:             "dt-button",
		model.ControllerPlatform: "dt-controller",
		model.ServicesPlatform:   "dt-services",
	}}
}

// simulatorBackend registers a controller factory which creates a new simulator with project on every call.
func simulatorBackend(t *testing.T, serial string) (backend string, latest func() *ihc.Simulator) {
	content, err := os.ReadFile("../discovery/testdata/project.xml")
	require.NoError(t, err)
	mux := sync.Mutex{}
	var current *ihc.Simulator
	backend = "connector-test-" + t.Name() + "-" + serial
	ihc.RegisterFactory(backend, func(url string, username string, password string) (ihc.Controller, error) {
		mux.Lock()
		defer mux.Unlock()
		current = ihc.NewSimulator(serial, string(content))
		return current, nil
	})
	return backend, func() *ihc.Simulator {
		mux.Lock()
		defer mux.Unlock()
		return current
	}
}

func testConfig(t *testing.T) configuration.Config {
	return configuration.Config{
		ConnectorId:    "mgw-ihc-dc",
		DeviceIdPrefix: "ihc:",
		ConfigDir:      t.TempDir(),
	}
}
