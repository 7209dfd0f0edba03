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
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/auth"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/configuration"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/devicerepo"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/entities"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/log"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/mgw"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/services"
	"github.com/go-logr/logr"
	"sync"
)

type Connector struct {
	config        configuration.Config
	ctx           context.Context
	wg            *sync.WaitGroup
	logger        logr.Logger
	eventbuffer   chan EventDesc
	commandbuffer chan CommandDesc
	refreshbuffer chan bool
	mgw           MgwClient
	devicerepo    DeviceRepo
	registry      *Registry
	services      *services.Dispatcher
	setupMux      sync.Mutex
}

type EventDesc struct {
	DeviceId string
	Entity   entities.Entity
}

type CommandDesc struct {
	DeviceId  string
	ServiceId string
	Command   mgw.Command
}

type DeviceRepo interface {
	FindDeviceTypeId(platform model.Platform) (dtId string, usedFallback bool, err error)
}

type MgwClient interface {
	SetDevice(deviceId string, info mgw.DeviceInfo) error
	RemoveDevice(deviceId string) error
	SendEvent(deviceId string, serviceId string, value []byte) error
	Respond(deviceId string, serviceId string, response mgw.Command) error
	SendClientError(message string)
	SendDeviceError(deviceId string, message string)
	SendCommandError(commandId string, message string)
	ListenToDeviceCommands(deviceId string, handler mgw.DeviceCommandHandler) error
	StopListenToDeviceCommands(deviceId string) error
}

type MgwFactory func(ctx context.Context, wg *sync.WaitGroup, config configuration.Config, refreshNotifier func()) (MgwClient, error)

// Start connects to the mgw and sets up all configured controllers.
func Start(ctx context.Context, wg *sync.WaitGroup, config configuration.Config) (connector *Connector, err error) {
	deviceRepo, err := devicerepo.New(config, auth.New())
	if err != nil {
		return nil, err
	}
	connector, err = StartWithDependencies(ctx, wg, config, MgwFactoryCast(mgw.New), deviceRepo)
	if err != nil {
		return connector, err
	}
	err = connector.SetupAll(config.Controllers)
	if err != nil {
		connector.logger.Error(err, "not all ihc controllers could be set up")
	}
	return connector, nil
}

// StartWithDependencies starts the relay goroutines; controllers have to be added with Setup or SetupAll.
func StartWithDependencies(ctx context.Context, wg *sync.WaitGroup, config configuration.Config, mgwFactory MgwFactory, devicerepo DeviceRepo) (connector *Connector, err error) {
	connector = &Connector{
		config:        config,
		ctx:           ctx,
		wg:            wg,
		logger:        log.Logger.WithName("connector"),
		eventbuffer:   make(chan EventDesc, 100),
		commandbuffer: make(chan CommandDesc, 100),
		refreshbuffer: make(chan bool, 1),
		devicerepo:    devicerepo,
		registry:      NewRegistry(),
	}
	connector.services = services.New(connector.registry)
	connector.mgw, err = mgwFactory(ctx, wg, config, connector.NotifyRefresh)
	if err != nil {
		return
	}
	err = connector.Start(ctx, wg)
	if err != nil {
		return
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		connector.UnloadAll()
	}()
	return connector, nil
}

// NotifyRefresh schedules the re-registration of all hub devices.
func (this *Connector) NotifyRefresh() {
	select {
	case this.refreshbuffer <- true:
	default:
		// a refresh is already pending
	}
}

func (this *Connector) Event(entity entities.Entity) {
	select {
	case this.eventbuffer <- EventDesc{
		DeviceId: this.getEntityDeviceId(entity),
		Entity:   entity,
	}:
	case <-this.ctx.Done():
	}
}

func (this *Connector) Command(deviceId string, serviceId string, command mgw.Command) {
	select {
	case this.commandbuffer <- CommandDesc{
		DeviceId:  deviceId,
		ServiceId: serviceId,
		Command:   command,
	}:
	case <-this.ctx.Done():
	}
}

func (this *Connector) Registry() *Registry {
	return this.registry
}

func (this *Connector) Start(ctx context.Context, wg *sync.WaitGroup) (err error) {
	err = this.startDeviceHandling(ctx, wg)
	if err != nil {
		return
	}
	err = this.startCommandHandling(ctx, wg)
	if err != nil {
		return
	}
	err = this.startEventHandling(ctx, wg)
	if err != nil {
		return
	}
	return nil
}
