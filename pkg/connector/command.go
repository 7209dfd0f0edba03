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
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/mgw"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"sync"
	"time"
)

const CommandTimeout = 30 * time.Second

func (this *Connector) startCommandHandling(ctx context.Context, wg *sync.WaitGroup) error {
	wg.Add(1)
	go func() {
		defer wg.Done()
		this.logger.Info("start command handling")
		for {
			select {
			case <-ctx.Done():
				this.logger.Info("stop command handling")
				return
			case command := <-this.commandbuffer:
				// controller calls are serialized by the session executor, commands must not wait for each other
				wg.Add(1)
				go func() {
					defer wg.Done()
					this.handleCommand(ctx, command)
				}()
			}
		}
	}()
	return nil
}

func (this *Connector) handleCommand(ctx context.Context, command CommandDesc) {
	ctx, cancel := context.WithTimeout(ctx, CommandTimeout)
	defer cancel()
	err := this.registry.WaitForInit(ctx)
	if err != nil {
		this.mgw.SendCommandError(command.Command.CommandId, err.Error())
		return
	}
	var result []byte
	switch {
	case command.DeviceId == this.getServicesDeviceId():
		err = this.services.Call(ctx, command.ServiceId, []byte(command.Command.Data))
	default:
		result, err = this.handleDeviceCommand(ctx, command)
	}
	if err != nil {
		this.logger.Info("WARNING: command failed", "device", command.DeviceId, "service", command.ServiceId, "error", err.Error())
		this.mgw.SendCommandError(command.Command.CommandId, err.Error())
		return
	}
	err = this.mgw.Respond(command.DeviceId, command.ServiceId, mgw.Command{
		CommandId: command.Command.CommandId,
		Data:      string(result),
	})
	if err != nil {
		this.logger.Error(err, "unable to send response", "device", command.DeviceId)
		this.mgw.SendCommandError(command.Command.CommandId, "unable to send response: "+err.Error())
	}
}

func (this *Connector) handleDeviceCommand(ctx context.Context, command CommandDesc) ([]byte, error) {
	if controller, ok := this.registry.FindController(command.DeviceId); ok {
		if command.ServiceId != model.GetService {
			return nil, model.ErrUnknownService
		}
		return json.Marshal(controller.Session.Info())
	}
	_, entity, ok := this.registry.FindEntity(command.DeviceId)
	if !ok {
		return nil, model.ErrNotFound
	}
	return entity.Handle(ctx, command.ServiceId, []byte(command.Command.Data))
}
