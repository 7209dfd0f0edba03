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
	"sync"
)

func (this *Connector) startEventHandling(ctx context.Context, wg *sync.WaitGroup) error {
	wg.Add(1)
	go func() {
		defer wg.Done()
		this.logger.Info("start event handling")
		for {
			select {
			case <-ctx.Done():
				this.logger.Info("stop event handling")
				return
			case event := <-this.eventbuffer:
				this.handleEvent(event)
			}
		}
	}()
	return nil
}

func (this *Connector) handleEvent(event EventDesc) {
	if !this.eventIsAllowed(event) {
		this.logger.V(1).Info("drop event of unregistered device", "device", event.DeviceId)
		return
	}
	payload, err := event.Entity.State()
	if err != nil {
		this.logger.Error(err, "unable to encode state", "device", event.DeviceId)
		return
	}
	err = this.mgw.SendEvent(event.DeviceId, "get", payload)
	if err != nil {
		this.logger.Error(err, "unable to send event to mgw", "device", event.DeviceId)
		this.mgw.SendDeviceError(event.DeviceId, "unable to send event to mgw: "+err.Error())
	}
}

// events of unloaded controllers may still be buffered
func (this *Connector) eventIsAllowed(event EventDesc) bool {
	_, entity, ok := this.registry.FindEntity(event.DeviceId)
	return ok && entity == event.Entity
}
