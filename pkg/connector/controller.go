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
	"errors"
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/configuration"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/discovery"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/entities"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/ihc"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"sync"
)

// Controller is one set up config entry.
type Controller struct {
	Id       string
	DeviceId string
	Entry    configuration.ControllerConfig
	// state attributes are published when set
	Info     bool
	Session  *ihc.Session
	Entities []entities.Entity

	mux       sync.Mutex
	byDevice  map[string]entities.Entity
	published map[string]bool
	attached  map[string]bool
}

func (this *Controller) entity(deviceId string) (entities.Entity, bool) {
	e, ok := this.byDevice[deviceId]
	return e, ok
}

// markPublished returns true the first time deviceId is published.
func (this *Controller) markPublished(deviceId string) bool {
	this.mux.Lock()
	defer this.mux.Unlock()
	if this.published[deviceId] {
		return false
	}
	this.published[deviceId] = true
	return true
}

func (this *Controller) publishedDevices() (result []string) {
	this.mux.Lock()
	defer this.mux.Unlock()
	for id := range this.published {
		result = append(result, id)
	}
	return result
}

func (this *Controller) markAttached(deviceId string) bool {
	this.mux.Lock()
	defer this.mux.Unlock()
	if this.attached[deviceId] {
		return false
	}
	this.attached[deviceId] = true
	return true
}

// Setup connects to the controller of entry, discovers its resources and registers them as hub devices.
func (this *Connector) Setup(entry configuration.ControllerConfig) (*Controller, error) {
	this.setupMux.Lock()
	defer this.setupMux.Unlock()
	return this.setup(entry)
}

func (this *Connector) setup(entry configuration.ControllerConfig) (*Controller, error) {
	backend := entry.Backend
	if backend == "" {
		backend = this.config.Backend
	}
	factory, err := ihc.GetFactory(backend)
	if err != nil {
		return nil, err
	}
	this.logger.Info("set up ihc controller", "url", entry.Url, "backend", backend)
	session, err := ihc.Open(this.ctx, factory, entry.Url, entry.Username, entry.Password)
	if err != nil {
		this.logger.Error(err, "unable to set up ihc controller", "url", entry.Url)
		return nil, err
	}
	controllerId := session.Id()
	if _, exists := this.registry.Get(controllerId); exists {
		session.Close()
		return nil, fmt.Errorf("ihc controller %v is already set up", controllerId)
	}

	mapping := discovery.Mapping{}
	if entry.AutoSetup {
		autoMapping, err := this.autoSetup(session)
		if err != nil {
			this.logger.Error(err, "auto setup failed", "controller", controllerId)
		} else {
			mapping.Merge(autoMapping)
		}
	}
	info := entry.Info
	manual, err := discovery.LoadManualController(this.config.ConfigDir, controllerId)
	if err != nil {
		this.logger.Error(err, "manual setup failed", "controller", controllerId)
	} else {
		mapping.Merge(manual.Mapping())
		if manual.Info != nil {
			info = *manual.Info
		}
	}
	this.logger.V(1).Info("discovered resources", "controller", controllerId, "mapping", mapping.String())

	controller := &Controller{
		Id:        controllerId,
		DeviceId:  this.config.DeviceIdPrefix + controllerId,
		Entry:     entry,
		Info:      info,
		Session:   session,
		Entities:  entities.Build(session, mapping),
		byDevice:  map[string]entities.Entity{},
		published: map[string]bool{},
		attached:  map[string]bool{},
	}
	for _, e := range controller.Entities {
		controller.byDevice[this.getEntityDeviceId(e)] = e
	}
	err = this.registry.Add(controller)
	if err != nil {
		session.Close()
		return nil, err
	}
	this.logger.Info("ihc controller set up", "controller", controllerId, "entities", len(controller.Entities))

	this.registerControllerDevices(controller)
	if this.registry.Len() > 1 {
		// state attributes of the other controllers now carry ihc_controller
		this.NotifyRefresh()
	}
	return controller, nil
}

func (this *Connector) autoSetup(session *ihc.Session) (discovery.Mapping, error) {
	project, err := session.GetProject(this.ctx)
	if err != nil {
		return nil, err
	}
	rules, err := discovery.LoadRules(this.config.ConfigDir)
	if err != nil {
		return nil, err
	}
	return discovery.AutoSetup(project, rules, session.Id())
}

// SetupAll sets up every entry; failing entries are logged and skipped.
func (this *Connector) SetupAll(entries []configuration.ControllerConfig) (err error) {
	defer this.registry.MarkInitialized()
	for _, entry := range entries {
		_, setupErr := this.Setup(entry)
		if setupErr != nil {
			err = errors.Join(err, setupErr)
		}
	}
	return err
}

// Unload disconnects the controller and removes its hub devices.
func (this *Connector) Unload(controllerId string) error {
	this.setupMux.Lock()
	defer this.setupMux.Unlock()
	return this.unload(controllerId)
}

func (this *Connector) unload(controllerId string) error {
	controller, ok := this.registry.Remove(controllerId)
	if !ok {
		return fmt.Errorf("%w: %v", model.ErrUnknownController, controllerId)
	}
	this.logger.Info("unload ihc controller", "controller", controllerId)
	for _, deviceId := range controller.publishedDevices() {
		err := this.mgw.StopListenToDeviceCommands(deviceId)
		if err != nil {
			this.logger.Error(err, "unable to stop command listener", "device", deviceId)
		}
		err = this.mgw.RemoveDevice(deviceId)
		if err != nil {
			this.logger.Error(err, "unable to remove device", "device", deviceId)
		}
	}
	controller.Session.Close()
	return nil
}

// Reload sets up the controller again with its current entry.
func (this *Connector) Reload(controllerId string) (*Controller, error) {
	this.setupMux.Lock()
	defer this.setupMux.Unlock()
	controller, ok := this.registry.Get(controllerId)
	if !ok {
		return nil, fmt.Errorf("%w: %v", model.ErrUnknownController, controllerId)
	}
	err := this.unload(controllerId)
	if err != nil {
		return nil, err
	}
	return this.setup(controller.Entry)
}

// ReloadAll replaces all set up controllers by entries.
func (this *Connector) ReloadAll(entries []configuration.ControllerConfig) error {
	this.setupMux.Lock()
	for _, controller := range this.registry.List() {
		err := this.unload(controller.Id)
		if err != nil {
			this.logger.Error(err, "unable to unload controller", "controller", controller.Id)
		}
	}
	this.setupMux.Unlock()
	return this.SetupAll(entries)
}

func (this *Connector) UnloadAll() {
	for _, id := range this.registry.ControllerIds() {
		err := this.Unload(id)
		if err != nil {
			this.logger.Error(err, "unable to unload controller", "controller", id)
		}
	}
}
