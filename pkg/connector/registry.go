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
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/entities"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/services"
	"sync"
	"time"
)

// Registry holds the set up controllers in registration order.
type Registry struct {
	list     []*Controller
	byId     map[string]*Controller
	mux      sync.Mutex
	init     bool
	initWg   *sync.WaitGroup
	initOnce sync.Once
}

func NewRegistry() *Registry {
	wg := &sync.WaitGroup{}
	wg.Add(1)
	return &Registry{
		list:   []*Controller{},
		byId:   map[string]*Controller{},
		initWg: wg,
	}
}

// MarkInitialized signals that the configured controllers had their first setup attempt.
func (this *Registry) MarkInitialized() {
	this.initOnce.Do(func() {
		this.mux.Lock()
		this.init = true
		this.mux.Unlock()
		this.initWg.Done()
	})
}

// WaitForInit blocks until MarkInitialized was called.
// ctx may be nil (defaults to context with 1 minute timeout)
// if the ctx is done first, model.ErrNotReady is returned
func (this *Registry) WaitForInit(ctx context.Context) error {
	this.mux.Lock()
	init := this.init
	this.mux.Unlock()
	if init {
		return nil
	}
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
	}
	done := make(chan struct{})
	go func() {
		this.initWg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", model.ErrNotReady, ctx.Err())
	}
}

func (this *Registry) Add(controller *Controller) error {
	this.mux.Lock()
	defer this.mux.Unlock()
	if _, exists := this.byId[controller.Id]; exists {
		return fmt.Errorf("ihc controller %v is already set up", controller.Id)
	}
	this.list = append(this.list, controller)
	this.byId[controller.Id] = controller
	return nil
}

func (this *Registry) Remove(id string) (*Controller, bool) {
	this.mux.Lock()
	defer this.mux.Unlock()
	controller, ok := this.byId[id]
	if !ok {
		return nil, false
	}
	delete(this.byId, id)
	list := make([]*Controller, 0, len(this.list))
	for _, c := range this.list {
		if c.Id != id {
			list = append(list, c)
		}
	}
	this.list = list
	return controller, true
}

func (this *Registry) Get(id string) (*Controller, bool) {
	this.mux.Lock()
	defer this.mux.Unlock()
	controller, ok := this.byId[id]
	return controller, ok
}

func (this *Registry) List() []*Controller {
	this.mux.Lock()
	defer this.mux.Unlock()
	return append([]*Controller{}, this.list...)
}

func (this *Registry) Len() int {
	this.mux.Lock()
	defer this.mux.Unlock()
	return len(this.list)
}

func (this *Registry) ControllerIds() (result []string) {
	for _, c := range this.List() {
		result = append(result, c.Id)
	}
	return result
}

func (this *Registry) Writer(controllerId string) (services.Writer, bool) {
	controller, ok := this.Get(controllerId)
	if !ok {
		return nil, false
	}
	return controller.Session, true
}

// FindEntity returns the entity registered as hub device deviceId.
func (this *Registry) FindEntity(deviceId string) (*Controller, entities.Entity, bool) {
	for _, c := range this.List() {
		if e, ok := c.entity(deviceId); ok {
			return c, e, true
		}
	}
	return nil, nil, false
}

// FindController returns the controller whose own hub device is deviceId.
func (this *Registry) FindController(deviceId string) (*Controller, bool) {
	for _, c := range this.List() {
		if c.DeviceId == deviceId {
			return c, true
		}
	}
	return nil, false
}
