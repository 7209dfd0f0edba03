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
	"context"
	"errors"
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"sync"
	"time"
)

// PulseDelay is the time between the on and off write of a pulse.
const PulseDelay = 100 * time.Millisecond

// PulseOffTimeout bounds the off write of a pulse whose context is already done.
const PulseOffTimeout = 10 * time.Second

// Session is an authenticated controller connection.
// Every blocking controller call is routed through the session executor.
type Session struct {
	controller Controller
	executor   *Executor
	info       SystemInfo
	cancel     context.CancelFunc
	wg         *sync.WaitGroup
	closeOnce  sync.Once
}

// Open creates a controller with factory, authenticates and reads the system info.
// A failed authentication returns model.ErrAuthenticationFailed, a missing serial number model.ErrNoSystemInfo.
func Open(ctx context.Context, factory ControllerFactory, url string, username string, password string) (*Session, error) {
	sessionCtx, cancel := context.WithCancel(context.Background())
	this := &Session{
		cancel: cancel,
		wg:     &sync.WaitGroup{},
	}
	this.executor = NewExecutor(sessionCtx, this.wg)

	controller, err := Call(ctx, this.executor, func() (Controller, error) {
		return factory(url, username, password)
	})
	if err != nil {
		this.Close()
		return nil, err
	}
	this.controller = controller

	ok, err := Call(ctx, this.executor, controller.Authenticate)
	if err != nil {
		this.Close()
		return nil, fmt.Errorf("%w: %v: %w", model.ErrAuthenticationFailed, url, err)
	}
	if !ok {
		this.Close()
		return nil, fmt.Errorf("%w: %v", model.ErrAuthenticationFailed, url)
	}

	this.info, err = Call(ctx, this.executor, controller.GetSystemInfo)
	if err != nil {
		this.Close()
		return nil, fmt.Errorf("%w: %v: %w", model.ErrNoSystemInfo, url, err)
	}
	if this.info.SerialNumber == "" {
		this.Close()
		return nil, fmt.Errorf("%w: %v", model.ErrNoSystemInfo, url)
	}
	return this, nil
}

// Id returns the controller serial number.
func (this *Session) Id() string {
	return this.info.SerialNumber
}

func (this *Session) Info() SystemInfo {
	return this.info
}

func (this *Session) GetProject(ctx context.Context) (string, error) {
	return Call(ctx, this.executor, this.controller.GetProject)
}

func (this *Session) AddNotifyEvent(resourceId int, cb NotifyCallback) bool {
	return this.controller.AddNotifyEvent(resourceId, cb, true)
}

func (this *Session) SetBool(ctx context.Context, resourceId int, value bool) error {
	ok, err := Call(ctx, this.executor, func() (bool, error) {
		return this.controller.SetRuntimeValueBool(resourceId, value)
	})
	return checkWrite(ok, err, resourceId, value)
}

func (this *Session) SetInt(ctx context.Context, resourceId int, value int) error {
	ok, err := Call(ctx, this.executor, func() (bool, error) {
		return this.controller.SetRuntimeValueInt(resourceId, value)
	})
	return checkWrite(ok, err, resourceId, value)
}

func (this *Session) SetFloat(ctx context.Context, resourceId int, value float64) error {
	ok, err := Call(ctx, this.executor, func() (bool, error) {
		return this.controller.SetRuntimeValueFloat(resourceId, value)
	})
	return checkWrite(ok, err, resourceId, value)
}

// Pulse writes true, waits PulseDelay and writes false, independent of the current value.
// Once true is written the delay and the off write happen even if ctx is done.
func (this *Session) Pulse(ctx context.Context, resourceId int) error {
	err := this.SetBool(ctx, resourceId, true)
	if err != nil && ctx.Err() == nil {
		return err
	}
	offCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PulseOffTimeout)
	defer cancel()
	if err != nil {
		// the on write may already run on the executor
		return errors.Join(err, this.SetBool(offCtx, resourceId, false))
	}
	time.Sleep(PulseDelay)
	return this.SetBool(offCtx, resourceId, false)
}

// Close disconnects the controller and stops the executor.
func (this *Session) Close() {
	this.closeOnce.Do(func() {
		if this.controller != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = this.executor.Do(ctx, this.controller.Disconnect)
			cancel()
		}
		this.cancel()
		this.wg.Wait()
	})
}

func checkWrite(ok bool, err error, resourceId int, value interface{}) error {
	if err != nil {
		return fmt.Errorf("unable to set %v to %v: %w", resourceId, value, err)
	}
	if !ok {
		return fmt.Errorf("%w: %v = %v", model.ErrWriteRejected, resourceId, value)
	}
	return nil
}
