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
	"encoding/json"
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/configuration"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/ihc"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"github.com/SENERGY-Platform/models/go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func ExampleGetMissingDeviceTypeMessage() {
	fmt.Print(strings.TrimSpace(GetMissingDeviceTypeMessage(model.Switch)))

	//output:
	//missing ihc device-type, please provide a device-type with:
	//attributes:
	//     - senergy/ihc-dc = true
	//     - senergy/ihc-platform = switch
	//services:
	//---------------
	//local-id: get
	//interaction: event+request
	//protocol: standard-connector
	//example output data:
	//{
	//     "state": true
	//}
	//---------------
	//local-id: set
	//interaction: request
	//protocol: standard-connector
	//example input data:
	//{
	//     "state": true
	//}
	//---------------
}

var expectedEntityDevices = []string{
	"ihc:ihc4c123419986",
	"ihc:ihc4c123420481",
	"ihc:ihc4c123424577",
	"ihc:ihc4c123424578",
	"ihc:ihc4c123428673",
	"ihc:ihc4c123432769",
	"ihc:ihc4c123436865",
}

func TestSetup(t *testing.T) {
	wg := &sync.WaitGroup{}
	defer wg.Wait()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgwClient := newMgwMock()
	repo := allDeviceTypes()
	config := testConfig(t)
	backend, simulator := simulatorBackend(t, "4c1234")

	c, err := StartWithDependencies(ctx, wg, config, mgwClient.factory, repo)
	require.NoError(t, err)

	controller, err := c.Setup(configuration.ControllerConfig{Url: "http://ihc", AutoSetup: true, Info: true, Backend: backend})
	require.NoError(t, err)
	assert.Equal(t, "4c1234", controller.Id)
	assert.Len(t, controller.Entities, 7)

	t.Run("hub devices", func(t *testing.T) {
		assert.Equal(t, append([]string{"ihc:4c1234"}, expectedEntityDevices...), mgwClient.deviceIds())

		info, ok := mgwClient.device("ihc:4c1234")
		require.True(t, ok)
		assert.Equal(t, "4c1234", info.Name)
		assert.Equal(t, "dt-controller", info.DeviceType)
		assert.Contains(t, info.Attributes, models.Attribute{Key: "manufacturer", Value: "Schneider Electric"})
		assert.Contains(t, info.Attributes, models.Attribute{Key: "model", Value: "ihc simulator 1"})

		info, ok = mgwClient.device("ihc:ihc4c123419986")
		require.True(t, ok)
		assert.Equal(t, "Kitchen_19986", info.Name)
		assert.Equal(t, "dt-binary-sensor", info.DeviceType)
		assert.Equal(t, []models.Attribute{
			{Key: "ihc/platform", Value: "binary_sensor"},
			{Key: "manufacturer", Value: "Schneider Electric"},
			{Key: "model", Value: "0x2109"},
			{Key: "product", Value: "Magnet contact (left)"},
			{Key: "product_id", Value: "4c1234_19985"},
			{Key: "via_device", Value: "ihc:4c1234"},
			{Key: "ihc_id", Value: "19986"},
			{Key: "ihc_name", Value: "Magnet contact"},
			{Key: "ihc_note", Value: "window"},
			{Key: "ihc_position", Value: "left"},
		}, info.Attributes)
	})

	t.Run("event", func(t *testing.T) {
		simulator().Trigger(32769, true)
		require.Eventually(t, func() bool {
			return len(mgwClient.eventList("ihc:ihc4c123432769/get")) == 1
		}, 5*time.Second, 20*time.Millisecond)
		assert.Equal(t, []string{`{"state":true}`}, mgwClient.eventList("ihc:ihc4c123432769/get"))

		simulator().Trigger(20481, 50)
		require.Eventually(t, func() bool {
			return len(mgwClient.eventList("ihc:ihc4c123420481/get")) == 1
		}, 5*time.Second, 20*time.Millisecond)
		assert.Equal(t, []string{`{"state":true,"brightness":128,"dimmable":true}`}, mgwClient.eventList("ihc:ihc4c123420481/get"))
	})

	t.Run("command", func(t *testing.T) {
		require.True(t, mgwClient.command("ihc:ihc4c123432769", "set", "c1", `{"state":false}`))
		require.Eventually(t, func() bool {
			responses, _ := mgwClient.response("c1")
			return len(responses) == 1
		}, 5*time.Second, 20*time.Millisecond)
		value, ok := simulator().Value(32769)
		assert.True(t, ok)
		assert.Equal(t, false, value)

		require.True(t, mgwClient.command("ihc:ihc4c123420481", "get", "c2", ``))
		require.Eventually(t, func() bool {
			responses, _ := mgwClient.response("c2")
			return len(responses) == 1
		}, 5*time.Second, 20*time.Millisecond)
		responses, _ := mgwClient.response("c2")
		assert.JSONEq(t, `{"state":true,"brightness":128,"dimmable":true}`, responses[0].Data)

		require.True(t, mgwClient.command("ihc:4c1234", "get", "c3", ``))
		require.Eventually(t, func() bool {
			responses, _ := mgwClient.response("c3")
			return len(responses) == 1
		}, 5*time.Second, 20*time.Millisecond)
		responses, _ = mgwClient.response("c3")
		info := ihc.SystemInfo{}
		require.NoError(t, json.Unmarshal([]byte(responses[0].Data), &info))
		assert.Equal(t, "4c1234", info.SerialNumber)

		require.True(t, mgwClient.command("ihc:ihc4c123432769", "press", "c4", `{}`))
		require.Eventually(t, func() bool {
			_, errMsg := mgwClient.response("c4")
			return errMsg != ""
		}, 5*time.Second, 20*time.Millisecond)
		_, errMsg := mgwClient.response("c4")
		assert.Contains(t, errMsg, model.ErrUnknownService.Error())
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := c.Setup(configuration.ControllerConfig{Url: "http://ihc", Backend: backend})
		assert.Error(t, err)
		assert.Equal(t, 1, c.Registry().Len())
	})

	t.Run("reload", func(t *testing.T) {
		old := simulator()
		reloaded, err := c.Reload("4c1234")
		require.NoError(t, err)
		assert.NotSame(t, controller, reloaded)
		assert.NotSame(t, old, simulator())
		assert.Equal(t, append([]string{"ihc:4c1234"}, expectedEntityDevices...), mgwClient.deviceIds())

		// true and false from the earlier event and set command, true from the new simulator
		simulator().Trigger(32769, true)
		require.Eventually(t, func() bool {
			return len(mgwClient.eventList("ihc:ihc4c123432769/get")) == 3
		}, 5*time.Second, 20*time.Millisecond)
		assert.Equal(t, []string{`{"state":true}`, `{"state":false}`, `{"state":true}`}, mgwClient.eventList("ihc:ihc4c123432769/get"))
	})

	t.Run("unload", func(t *testing.T) {
		require.NoError(t, c.Unload("4c1234"))
		assert.Empty(t, mgwClient.deviceIds())
		assert.Equal(t, 0, c.Registry().Len())
		assert.ErrorIs(t, c.Unload("4c1234"), model.ErrUnknownController)
		assert.False(t, mgwClient.command("ihc:ihc4c123432769", "set", "c5", `{"state":true}`))
	})
}

func TestSetupFailures(t *testing.T) {
	wg := &sync.WaitGroup{}
	defer wg.Wait()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := testConfig(t)
	err := os.WriteFile(filepath.Join(config.ConfigDir, "ihc_manual_setup.yaml"), []byte("ihc:\n  - controller: \"4c0002\"\n    switch:\n      - id: 17\n"), 0644)
	require.NoError(t, err)

	mgwClient := newMgwMock()
	c, err := StartWithDependencies(ctx, wg, config, mgwClient.factory, allDeviceTypes())
	require.NoError(t, err)

	t.Run("authentication", func(t *testing.T) {
		backend := "connector-test-" + t.Name()
		ihc.RegisterFactory(backend, func(url string, username string, password string) (ihc.Controller, error) {
			simulator := ihc.NewSimulator("4c0001", "")
			simulator.RejectAuthentication(true)
			return simulator, nil
		})
		_, err := c.Setup(configuration.ControllerConfig{Url: "http://ihc", Backend: backend})
		assert.ErrorIs(t, err, model.ErrAuthenticationFailed)
	})

	t.Run("system info", func(t *testing.T) {
		backend := "connector-test-" + t.Name()
		ihc.RegisterFactory(backend, func(url string, username string, password string) (ihc.Controller, error) {
			return ihc.NewSimulator("", ""), nil
		})
		_, err := c.Setup(configuration.ControllerConfig{Url: "http://ihc", Backend: backend})
		assert.ErrorIs(t, err, model.ErrNoSystemInfo)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := c.Setup(configuration.ControllerConfig{Url: "http://ihc", Backend: "unknown"})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("failed auto setup keeps manual devices", func(t *testing.T) {
		backend := "connector-test-" + t.Name()
		ihc.RegisterFactory(backend, func(url string, username string, password string) (ihc.Controller, error) {
			return ihc.NewSimulator("4c0002", "<not xml"), nil
		})
		controller, err := c.Setup(configuration.ControllerConfig{Url: "http://ihc", AutoSetup: true, Backend: backend})
		require.NoError(t, err)
		require.Len(t, controller.Entities, 1)
		assert.Equal(t, "ihc_17", controller.Entities[0].Name())
	})

	assert.Equal(t, []string{"4c0002"}, c.Registry().ControllerIds())
}

func TestMissingDeviceType(t *testing.T) {
	wg := &sync.WaitGroup{}
	defer wg.Wait()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgwClient := newMgwMock()
	repo := allDeviceTypes()
	delete(repo.deviceTypes, model.Sensor)
	backend, _ := simulatorBackend(t, "4c1234")

	c, err := StartWithDependencies(ctx, wg, testConfig(t), mgwClient.factory, repo)
	require.NoError(t, err)
	_, err = c.Setup(configuration.ControllerConfig{Url: "http://ihc", AutoSetup: true, Backend: backend})
	require.NoError(t, err)

	assert.NotContains(t, mgwClient.deviceIds(), "ihc:ihc4c123424577")
	assert.Contains(t, mgwClient.clientErrorList(), GetMissingDeviceTypeMessage(model.Sensor))

	repo.set(model.Sensor, "dt-sensor")
	c.NotifyRefresh()
	require.Eventually(t, func() bool {
		_, ok := mgwClient.device("ihc:ihc4c123424577")
		return ok
	}, 5*time.Second, 20*time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok := mgwClient.device("ihc:services")
		return ok
	}, 5*time.Second, 20*time.Millisecond)
}

func TestManualInfoOverridesEntry(t *testing.T) {
	wg := &sync.WaitGroup{}
	defer wg.Wait()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := testConfig(t)
	err := os.WriteFile(filepath.Join(config.ConfigDir, "ihc_manual_setup.yaml"), []byte("ihc:\n  - controller: \"4c1234\"\n    info: true\n"), 0644)
	require.NoError(t, err)

	mgwClient := newMgwMock()
	backend, _ := simulatorBackend(t, "4c1234")
	c, err := StartWithDependencies(ctx, wg, config, mgwClient.factory, allDeviceTypes())
	require.NoError(t, err)
	controller, err := c.Setup(configuration.ControllerConfig{Url: "http://ihc", AutoSetup: true, Info: false, Backend: backend})
	require.NoError(t, err)
	assert.True(t, controller.Info)

	info, ok := mgwClient.device("ihc:ihc4c123419986")
	require.True(t, ok)
	assert.Contains(t, info.Attributes, models.Attribute{Key: "ihc_id", Value: "19986"})
}
