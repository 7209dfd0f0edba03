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

package ihc

import (
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"sort"
	"sync"
)

// Controller is the client surface of an ihc controller.
// Calls block on network io and must not run concurrently; use an Executor.
type Controller interface {
	Authenticate() (bool, error)
	GetProject() (string, error)
	GetSystemInfo() (SystemInfo, error)
	SetRuntimeValueBool(resourceId int, value bool) (bool, error)
	SetRuntimeValueInt(resourceId int, value int) (bool, error)
	SetRuntimeValueFloat(resourceId int, value float64) (bool, error)
	// AddNotifyEvent registers cb for value changes of resourceId.
	// The controller calls cb from its own goroutine, starting with the current value.
	AddNotifyEvent(resourceId int, cb NotifyCallback, delayed bool) bool
	Disconnect()
}

// NotifyCallback receives bool, int or float64 values.
type NotifyCallback func(resourceId int, value interface{})

type SystemInfo struct {
	SerialNumber            string `json:"serial_number"`
	Brand                   string `json:"brand"`
	HWRevision              string `json:"hw_revision"`
	Version                 string `json:"version"`
	ProductionDate          string `json:"production_date,omitempty"`
	DatalineVersion         string `json:"dataline_version,omitempty"`
	RFModuleSoftwareVersion string `json:"rf_module_software_version,omitempty"`
	RFModuleSerialNumber    string `json:"rf_module_serial_number,omitempty"`
}

type ControllerFactory func(url string, username string, password string) (Controller, error)

var factoriesMux sync.Mutex
var factories = map[string]ControllerFactory{}

// RegisterFactory makes a controller implementation available under name.
// Registering an existing name replaces the previous factory.
func RegisterFactory(name string, factory ControllerFactory) {
	factoriesMux.Lock()
	defer factoriesMux.Unlock()
	factories[name] = factory
}

func GetFactory(name string) (ControllerFactory, error) {
	factoriesMux.Lock()
	defer factoriesMux.Unlock()
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: ihc backend %v (known: %v)", model.ErrNotFound, name, factoryNames())
	}
	return factory, nil
}

func factoryNames() (result []string) {
	for name := range factories {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func init() {
	RegisterFactory(SimulatorBackend, NewSimulatorFromUrl)
}
