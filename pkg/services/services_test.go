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
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

type writerMock struct {
	calls []string
}

func (this *writerMock) SetBool(_ context.Context, resourceId int, value bool) error {
	this.calls = append(this.calls, fmt.Sprintf("bool %v %v", resourceId, value))
	return nil
}

func (this *writerMock) SetInt(_ context.Context, resourceId int, value int) error {
	this.calls = append(this.calls, fmt.Sprintf("int %v %v", resourceId, value))
	return nil
}

func (this *writerMock) SetFloat(_ context.Context, resourceId int, value float64) error {
	this.calls = append(this.calls, fmt.Sprintf("float %v %v", resourceId, value))
	return nil
}

func (this *writerMock) Pulse(_ context.Context, resourceId int) error {
	this.calls = append(this.calls, fmt.Sprintf("pulse %v", resourceId))
	return nil
}

type controllersMock struct {
	ids     []string
	writers map[string]*writerMock
}

func newControllersMock(ids ...string) *controllersMock {
	result := &controllersMock{ids: ids, writers: map[string]*writerMock{}}
	for _, id := range ids {
		result.writers[id] = &writerMock{}
	}
	return result
}

func (this *controllersMock) ControllerIds() []string {
	return this.ids
}

func (this *controllersMock) Writer(controllerId string) (Writer, bool) {
	w, ok := this.writers[controllerId]
	return w, ok
}

func TestCall(t *testing.T) {
	controllers := newControllersMock("first", "second")
	dispatcher := New(controllers)
	ctx := context.Background()

	require.NoError(t, dispatcher.Call(ctx, model.ServiceSetRuntimeValueBool, []byte(`{"ihc_id": 1, "value": "on"}`)))
	require.NoError(t, dispatcher.Call(ctx, model.ServiceSetRuntimeValueInt, []byte(`{"ihc_id": 2, "value": "42", "controller_id": "second"}`)))
	require.NoError(t, dispatcher.Call(ctx, model.ServiceSetRuntimeValueFloat, []byte(`{"ihc_id": 3, "value": 1.5, "controller_id": ""}`)))
	require.NoError(t, dispatcher.Call(ctx, model.ServicePulse, []byte(`{"ihc_id": "4"}`)))

	assert.Equal(t, []string{"bool 1 true", "float 3 1.5", "pulse 4"}, controllers.writers["first"].calls)
	assert.Equal(t, []string{"int 2 42"}, controllers.writers["second"].calls)
}

func TestSelectController(t *testing.T) {
	t.Run("none registered", func(t *testing.T) {
		_, _, err := New(newControllersMock()).SelectController("")
		assert.ErrorIs(t, err, model.ErrNoController)
	})
	t.Run("single", func(t *testing.T) {
		_, id, err := New(newControllersMock("a")).SelectController("")
		assert.NoError(t, err)
		assert.Equal(t, "a", id)
	})
	t.Run("first registered", func(t *testing.T) {
		_, id, err := New(newControllersMock("b", "a")).SelectController("")
		assert.NoError(t, err)
		assert.Equal(t, "b", id)
	})
	t.Run("explicit", func(t *testing.T) {
		_, id, err := New(newControllersMock("b", "a")).SelectController("a")
		assert.NoError(t, err)
		assert.Equal(t, "a", id)
	})
	t.Run("unknown", func(t *testing.T) {
		_, _, err := New(newControllersMock("b", "a")).SelectController("c")
		assert.ErrorIs(t, err, model.ErrUnknownController)
	})
}

func TestParse(t *testing.T) {
	valid := []struct {
		service  string
		data     string
		expected ServiceCall
	}{
		{model.ServiceSetRuntimeValueBool, `{"ihc_id": 1, "value": true}`, ServiceCall{ResourceId: 1, Value: true}},
		{model.ServiceSetRuntimeValueBool, `{"ihc_id": 1, "value": "OFF"}`, ServiceCall{ResourceId: 1, Value: false}},
		{model.ServiceSetRuntimeValueBool, `{"ihc_id": 1, "value": "yes"}`, ServiceCall{ResourceId: 1, Value: true}},
		{model.ServiceSetRuntimeValueBool, `{"ihc_id": 1, "value": 0}`, ServiceCall{ResourceId: 1, Value: false}},
		{model.ServiceSetRuntimeValueBool, `{"ihc_id": 1, "value": 2}`, ServiceCall{ResourceId: 1, Value: true}},
		{model.ServiceSetRuntimeValueInt, `{"ihc_id": 1, "value": 3.7}`, ServiceCall{ResourceId: 1, Value: 3}},
		{model.ServiceSetRuntimeValueInt, `{"ihc_id": 1, "value": " -5 "}`, ServiceCall{ResourceId: 1, Value: -5}},
		{model.ServiceSetRuntimeValueFloat, `{"ihc_id": 1, "value": "2.25"}`, ServiceCall{ResourceId: 1, Value: 2.25}},
		{model.ServiceSetRuntimeValueFloat, `{"ihc_id": 1, "value": 2}`, ServiceCall{ResourceId: 1, Value: 2.0}},
		{model.ServicePulse, `{"ihc_id": 0, "controller_id": "4c1234"}`, ServiceCall{ResourceId: 0, ControllerId: "4c1234"}},
	}
	for _, c := range valid {
		actual, err := Parse(c.service, []byte(c.data))
		if assert.NoError(t, err, c.data) {
			assert.Equal(t, c.expected, actual, c.data)
		}
	}

	invalid := []struct {
		service string
		data    string
	}{
		{model.ServiceSetRuntimeValueBool, `{"value": true}`},
		{model.ServiceSetRuntimeValueBool, `{"ihc_id": 1}`},
		{model.ServiceSetRuntimeValueBool, `{"ihc_id": 1, "value": "maybe"}`},
		{model.ServiceSetRuntimeValueBool, `{"ihc_id": -1, "value": true}`},
		{model.ServiceSetRuntimeValueInt, `{"ihc_id": 1, "value": "3.5"}`},
		{model.ServiceSetRuntimeValueInt, `{"ihc_id": 1, "value": 1e30}`},
		{model.ServiceSetRuntimeValueInt, `{"ihc_id": 1, "value": -1e30}`},
		{model.ServiceSetRuntimeValueInt, `{"ihc_id": 1, "value": 99999999999999999999}`},
		{model.ServiceSetRuntimeValueBool, `{"ihc_id": 1e30, "value": true}`},
		{model.ServiceSetRuntimeValueFloat, `{"ihc_id": 1, "value": "abc"}`},
		{model.ServicePulse, `{"ihc_id": 1, "value": true}`},
		{model.ServicePulse, `{"ihc_id": 1, "controller_id": true}`},
		{model.ServicePulse, `{"ihc_id": 1, "extra": 1}`},
		{model.ServicePulse, `not json`},
	}
	for _, c := range invalid {
		_, err := Parse(c.service, []byte(c.data))
		assert.ErrorIs(t, err, model.ErrInvalidServiceCall, c.data)
	}

	_, err := Parse("unknown", []byte(`{}`))
	assert.ErrorIs(t, err, model.ErrUnknownService)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"pulse", "set_runtime_value_bool", "set_runtime_value_float", "set_runtime_value_int"}, Names())
}
