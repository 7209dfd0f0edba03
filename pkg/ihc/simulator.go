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
	"errors"
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"net/url"
	"os"
	"sync"
)

const SimulatorBackend = "simulator"

// Simulator is an in-memory controller.
// Notifications are delivered in order from one goroutine, like the long polling notify loop of a real controller.
type Simulator struct {
	mux            sync.Mutex
	info           SystemInfo
	project        string
	values         map[int]interface{}
	callbacks      map[int][]NotifyCallback
	writes         []Write
	rejectAuth     bool
	rejectWrites   bool
	disconnected   bool
	notifications  chan notification
	stop           chan struct{}
	disconnectOnce sync.Once
}

type Write struct {
	ResourceId int
	Value      interface{}
}

type notification struct {
	resourceId int
	value      interface{}
	callbacks  []NotifyCallback
}

func NewSimulator(serial string, project string) *Simulator {
	this := &Simulator{
		info: SystemInfo{
			SerialNumber: serial,
			Brand:        "ihc simulator",
			HWRevision:   "1",
			Version:      "1.0.0",
		},
		project:       project,
		values:        map[int]interface{}{},
		callbacks:     map[int][]NotifyCallback{},
		notifications: make(chan notification, 1000),
		stop:          make(chan struct{}),
	}
	go this.notifyLoop()
	return this
}

// NewSimulatorFromUrl interprets rawUrl as path to a project file.
// The serial number may be set with the query parameter serial, e.g. "simulator:project.xml?serial=4c12".
func NewSimulatorFromUrl(rawUrl string, _ string, _ string) (Controller, error) {
	u, err := url.Parse(rawUrl)
	if err != nil {
		return nil, err
	}
	path := u.Path
	if u.Opaque != "" {
		path = u.Opaque
	}
	serial := u.Query().Get("serial")
	if serial == "" {
		serial = SimulatorBackend
	}
	project := ""
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		project = string(content)
	}
	return NewSimulator(serial, project), nil
}

func (this *Simulator) notifyLoop() {
	for {
		select {
		case <-this.stop:
			return
		case n := <-this.notifications:
			for _, cb := range n.callbacks {
				cb(n.resourceId, n.value)
			}
		}
	}
}

func (this *Simulator) Authenticate() (bool, error) {
	this.mux.Lock()
	defer this.mux.Unlock()
	return !this.rejectAuth, nil
}

func (this *Simulator) GetProject() (string, error) {
	this.mux.Lock()
	defer this.mux.Unlock()
	if this.project == "" {
		return "", fmt.Errorf("%w: project", model.ErrNotFound)
	}
	return this.project, nil
}

func (this *Simulator) GetSystemInfo() (SystemInfo, error) {
	this.mux.Lock()
	defer this.mux.Unlock()
	return this.info, nil
}

func (this *Simulator) SetRuntimeValueBool(resourceId int, value bool) (bool, error) {
	return this.set(resourceId, value)
}

func (this *Simulator) SetRuntimeValueInt(resourceId int, value int) (bool, error) {
	return this.set(resourceId, value)
}

func (this *Simulator) SetRuntimeValueFloat(resourceId int, value float64) (bool, error) {
	return this.set(resourceId, value)
}

func (this *Simulator) set(resourceId int, value interface{}) (bool, error) {
	this.mux.Lock()
	if this.disconnected {
		this.mux.Unlock()
		return false, errors.New("simulator is disconnected")
	}
	if this.rejectWrites {
		this.mux.Unlock()
		return false, nil
	}
	this.writes = append(this.writes, Write{ResourceId: resourceId, Value: value})
	this.mux.Unlock()
	this.Trigger(resourceId, value)
	return true, nil
}

func (this *Simulator) AddNotifyEvent(resourceId int, cb NotifyCallback, _ bool) bool {
	this.mux.Lock()
	defer this.mux.Unlock()
	this.callbacks[resourceId] = append(this.callbacks[resourceId], cb)
	if value, ok := this.values[resourceId]; ok {
		this.enqueue(notification{resourceId: resourceId, value: value, callbacks: []NotifyCallback{cb}})
	}
	return true
}

func (this *Simulator) Disconnect() {
	this.disconnectOnce.Do(func() {
		this.mux.Lock()
		this.disconnected = true
		this.mux.Unlock()
		close(this.stop)
	})
}

// Trigger simulates a value change on the controller side.
func (this *Simulator) Trigger(resourceId int, value interface{}) {
	this.mux.Lock()
	defer this.mux.Unlock()
	this.values[resourceId] = value
	callbacks := append([]NotifyCallback{}, this.callbacks[resourceId]...)
	if len(callbacks) > 0 {
		this.enqueue(notification{resourceId: resourceId, value: value, callbacks: callbacks})
	}
}

// expects locked mux
func (this *Simulator) enqueue(n notification) {
	select {
	case this.notifications <- n:
	case <-this.stop:
	}
}

// Writes returns all successful runtime value writes in call order.
func (this *Simulator) Writes() []Write {
	this.mux.Lock()
	defer this.mux.Unlock()
	return append([]Write{}, this.writes...)
}

func (this *Simulator) Value(resourceId int) (value interface{}, ok bool) {
	this.mux.Lock()
	defer this.mux.Unlock()
	value, ok = this.values[resourceId]
	return
}

func (this *Simulator) NotifyRegistrations(resourceId int) int {
	this.mux.Lock()
	defer this.mux.Unlock()
	return len(this.callbacks[resourceId])
}

func (this *Simulator) RejectAuthentication(reject bool) {
	this.mux.Lock()
	defer this.mux.Unlock()
	this.rejectAuth = reject
}

func (this *Simulator) RejectWrites(reject bool) {
	this.mux.Lock()
	defer this.mux.Unlock()
	this.rejectWrites = reject
}

func (this *Simulator) SetSystemInfo(info SystemInfo) {
	this.mux.Lock()
	defer this.mux.Unlock()
	this.info = info
}
