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

package entities

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/discovery"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/ihc"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"sync"
)

const Manufacturer = "Schneider Electric"

// Session is the controller access of entities, implemented by *ihc.Session.
type Session interface {
	Id() string
	SetBool(ctx context.Context, resourceId int, value bool) error
	SetInt(ctx context.Context, resourceId int, value int) error
	Pulse(ctx context.Context, resourceId int) error
	AddNotifyEvent(resourceId int, cb ihc.NotifyCallback) bool
}

type Entity interface {
	Platform() model.Platform
	Name() string
	UniqueId() string
	ResourceId() int
	ControllerId() string
	ProductDevice() (ProductDevice, bool)
	StateAttributes(info bool, multiController bool) map[string]interface{}
	// Attach registers the notify callback at the controller; listener is called after every value change.
	Attach(listener func(Entity)) bool
	// State returns the payload of the get service.
	State() ([]byte, error)
	// Handle executes a hub command and returns the response payload.
	Handle(ctx context.Context, serviceId string, data []byte) ([]byte, error)
	onIhcChange(value interface{})
}

// ProductDevice is the physical ihc product an entity belongs to.
type ProductDevice struct {
	Id           string
	Name         string
	Manufacturer string
	Model        string
	ViaDevice    string
}

type Base struct {
	session      Session
	platform     model.Platform
	name         string
	resourceId   int
	controllerId string
	product      discovery.Product
	self         Entity
	mux          sync.Mutex
	listener     func(Entity)
}

func (this *Base) init(session Session, platform model.Platform, name string, device discovery.Device, self Entity) {
	this.session = session
	this.platform = platform
	this.name = name
	this.resourceId = device.ResourceId
	this.controllerId = session.Id()
	this.product = device.Product
	this.self = self
}

func (this *Base) Platform() model.Platform {
	return this.platform
}

func (this *Base) Name() string {
	return this.name
}

func (this *Base) UniqueId() string {
	return fmt.Sprintf("ihc%v%v", this.controllerId, this.resourceId)
}

func (this *Base) ResourceId() int {
	return this.resourceId
}

func (this *Base) ControllerId() string {
	return this.controllerId
}

// ProductDevice is only available for resources found in the controller project.
// The name follows the ihc visual application: "product name (position)".
func (this *Base) ProductDevice() (ProductDevice, bool) {
	if this.product.Id == 0 {
		return ProductDevice{}, false
	}
	name := this.product.Name
	if this.product.Position != "" {
		name = name + " (" + this.product.Position + ")"
	}
	return ProductDevice{
		Id:           fmt.Sprintf("%v_%v", this.controllerId, this.product.Id),
		Name:         name,
		Manufacturer: Manufacturer,
		Model:        this.product.Model,
		ViaDevice:    this.controllerId,
	}, true
}

func (this *Base) StateAttributes(info bool, multiController bool) map[string]interface{} {
	if !info {
		return map[string]interface{}{}
	}
	result := map[string]interface{}{
		"ihc_id":       this.resourceId,
		"ihc_name":     this.product.Name,
		"ihc_note":     this.product.Note,
		"ihc_position": this.product.Position,
	}
	if multiController {
		result["ihc_controller"] = this.controllerId
	}
	return result
}

func (this *Base) Attach(listener func(Entity)) bool {
	this.mux.Lock()
	this.listener = listener
	this.mux.Unlock()
	return this.session.AddNotifyEvent(this.resourceId, this.notify)
}

func (this *Base) notify(_ int, value interface{}) {
	this.self.onIhcChange(value)
	this.mux.Lock()
	listener := this.listener
	this.mux.Unlock()
	if listener != nil {
		listener(this.self)
	}
}

// handleGet answers the get service, every other service is unknown.
func (this *Base) handleGet(serviceId string) ([]byte, error) {
	if serviceId != model.GetService {
		return nil, fmt.Errorf("%w: %v", model.ErrUnknownService, serviceId)
	}
	return this.self.State()
}

func (this *Base) switchTo(ctx context.Context, on bool, onId int, offId int) error {
	if on && onId != 0 {
		return this.session.Pulse(ctx, onId)
	}
	if !on && offId != 0 {
		return this.session.Pulse(ctx, offId)
	}
	return this.session.SetBool(ctx, this.resourceId, on)
}

func decodeCommand(data []byte, command interface{}) error {
	err := json.Unmarshal(data, command)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrInvalidCommand, err)
	}
	return nil
}

// toBool interprets notification values; numbers are true if not 0
func toBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	}
	return value != nil
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}
