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
	"errors"
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/entities"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/mgw"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"github.com/SENERGY-Platform/models/go/models"
	"sort"
	"sync"
)

func (this *Connector) startDeviceHandling(ctx context.Context, wg *sync.WaitGroup) error {
	wg.Add(1)
	go func() {
		defer wg.Done()
		this.logger.Info("start device info handling")
		for {
			select {
			case <-ctx.Done():
				this.logger.Info("stop device info handling")
				return
			case <-this.refreshbuffer:
				this.registerServicesDevice()
				for _, controller := range this.registry.List() {
					this.registerControllerDevices(controller)
				}
			}
		}
	}()
	return nil
}

func (this *Connector) registerServicesDevice() {
	deviceId := this.getServicesDeviceId()
	ok := this.setDevice(deviceId, this.config.ConnectorId+" services", model.ServicesPlatform, nil)
	if !ok {
		return
	}
	err := this.mgw.ListenToDeviceCommands(deviceId, this.Command)
	if err != nil {
		this.logger.Error(err, "unable to listen to services commands")
	}
}

// registerControllerDevices publishes the controller and all its entities; it may be called repeatedly.
// Entities without device-type are skipped and picked up by later calls.
func (this *Connector) registerControllerDevices(controller *Controller) {
	if _, stillRegistered := this.registry.Get(controller.Id); !stillRegistered {
		return
	}
	info := controller.Session.Info()
	if this.setDevice(controller.DeviceId, controller.Id, model.ControllerPlatform, []models.Attribute{
		{Key: "manufacturer", Value: entities.Manufacturer},
		{Key: "model", Value: info.Brand + " " + info.HWRevision},
		{Key: "sw_version", Value: info.Version},
	}) {
		this.listen(controller, controller.DeviceId)
	}
	multiController := this.registry.Len() > 1
	for _, entity := range controller.Entities {
		deviceId := this.getEntityDeviceId(entity)
		if !this.setDevice(deviceId, entity.Name(), entity.Platform(), this.getEntityAttributes(controller, entity, multiController)) {
			continue
		}
		this.listen(controller, deviceId)
		if controller.markAttached(deviceId) {
			if !entity.Attach(this.Event) {
				this.logger.Info("WARNING: unable to register notify callback", "device", deviceId, "ihc_id", entity.ResourceId())
			}
		}
	}
}

func (this *Connector) listen(controller *Controller, deviceId string) {
	if !controller.markPublished(deviceId) {
		return
	}
	err := this.mgw.ListenToDeviceCommands(deviceId, this.Command)
	if err != nil {
		this.logger.Error(err, "unable to listen to device commands", "device", deviceId)
	}
}

func (this *Connector) setDevice(deviceId string, name string, platform model.Platform, attributes []models.Attribute) bool {
	deviceTypeId, err := this.getDeviceTypeId(platform)
	if errors.Is(err, model.NoMatchingDeviceTypeFound) {
		this.logger.Info("WARNING: unable to find matching device type", "platform", platform)
		this.mgw.SendClientError(GetMissingDeviceTypeMessage(platform))
		return false
	}
	if err != nil {
		this.logger.Error(err, "unable to get device type", "platform", platform)
		return false
	}
	err = this.mgw.SetDevice(deviceId, mgw.DeviceInfo{
		Name:       name,
		State:      mgw.Online,
		DeviceType: deviceTypeId,
		Attributes: attributes,
	})
	if err != nil {
		this.logger.Error(err, "unable to set device", "device", deviceId)
		return false
	}
	return true
}

func (this *Connector) getEntityDeviceId(entity entities.Entity) string {
	return this.config.DeviceIdPrefix + entity.UniqueId()
}

func (this *Connector) getServicesDeviceId() string {
	return this.config.DeviceIdPrefix + "services"
}

func (this *Connector) getDeviceTypeId(platform model.Platform) (string, error) {
	dtId, usedFallback, err := this.devicerepo.FindDeviceTypeId(platform)
	if usedFallback {
		this.logger.V(1).Info("device type from fallback", "platform", platform, "device_type", dtId)
	}
	return dtId, err
}

func (this *Connector) getEntityAttributes(controller *Controller, entity entities.Entity, multiController bool) (result []models.Attribute) {
	result = append(result, models.Attribute{Key: "ihc/platform", Value: string(entity.Platform())})
	if product, ok := entity.ProductDevice(); ok {
		result = append(result,
			models.Attribute{Key: "manufacturer", Value: product.Manufacturer},
			models.Attribute{Key: "model", Value: product.Model},
			models.Attribute{Key: "product", Value: product.Name},
			models.Attribute{Key: "product_id", Value: product.Id},
			models.Attribute{Key: "via_device", Value: this.config.DeviceIdPrefix + product.ViaDevice},
		)
	}
	stateAttributes := entity.StateAttributes(controller.Info, multiController)
	keys := make([]string, 0, len(stateAttributes))
	for key := range stateAttributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		result = append(result, models.Attribute{Key: key, Value: fmt.Sprint(stateAttributes[key])})
	}
	return result
}
