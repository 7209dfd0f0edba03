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

package services

import (
	"context"
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/log"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"github.com/go-logr/logr"
)

// Writer is the controller access needed by the services, implemented by *ihc.Session.
type Writer interface {
	SetBool(ctx context.Context, resourceId int, value bool) error
	SetInt(ctx context.Context, resourceId int, value int) error
	SetFloat(ctx context.Context, resourceId int, value float64) error
	Pulse(ctx context.Context, resourceId int) error
}

type Controllers interface {
	// ControllerIds returns the ids of all registered controllers in registration order.
	ControllerIds() []string
	Writer(controllerId string) (Writer, bool)
}

type Dispatcher struct {
	controllers Controllers
	logger      logr.Logger
}

func New(controllers Controllers) *Dispatcher {
	return &Dispatcher{
		controllers: controllers,
		logger:      log.Logger.WithName("services"),
	}
}

// Call validates data against the schema of service and executes it on the selected controller.
func (this *Dispatcher) Call(ctx context.Context, service string, data []byte) error {
	call, err := Parse(service, data)
	if err != nil {
		return err
	}
	writer, controllerId, err := this.SelectController(call.ControllerId)
	if err != nil {
		return err
	}
	this.logger.V(1).Info("service call", "service", service, "controller", controllerId, "ihc_id", call.ResourceId, "value", call.Value)
	switch service {
	case model.ServiceSetRuntimeValueBool:
		return writer.SetBool(ctx, call.ResourceId, call.Value.(bool))
	case model.ServiceSetRuntimeValueInt:
		return writer.SetInt(ctx, call.ResourceId, call.Value.(int))
	case model.ServiceSetRuntimeValueFloat:
		return writer.SetFloat(ctx, call.ResourceId, call.Value.(float64))
	case model.ServicePulse:
		return writer.Pulse(ctx, call.ResourceId)
	}
	return fmt.Errorf("%w: %v", model.ErrUnknownService, service)
}

// SelectController returns the controller with id requested.
// An empty id selects the first registered controller; with more than one controller registered a warning is logged.
func (this *Dispatcher) SelectController(requested string) (writer Writer, controllerId string, err error) {
	controllerId = requested
	if controllerId == "" {
		ids := this.controllers.ControllerIds()
		if len(ids) == 0 {
			return nil, "", model.ErrNoController
		}
		controllerId = ids[0]
		if len(ids) > 1 {
			this.logger.Info("WARNING: service call without controller_id while multiple controllers are registered, use first registered controller", "controller", controllerId, "registered", ids)
		}
	}
	writer, ok := this.controllers.Writer(controllerId)
	if !ok {
		return nil, controllerId, fmt.Errorf("%w: %v", model.ErrUnknownController, controllerId)
	}
	return writer, controllerId, nil
}
