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
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
)

const AttrIhcId = "ihc_id"
const AttrValue = "value"
const AttrControllerId = "controller_id"

// ServiceCall is a validated service call; Value is bool, int or float64 depending on the service, nil for pulse.
type ServiceCall struct {
	ResourceId   int
	Value        interface{}
	ControllerId string
}

type coercion func(value interface{}) (interface{}, error)

var valueSchema = map[string]coercion{
	model.ServiceSetRuntimeValueBool:  coerceBool,
	model.ServiceSetRuntimeValueInt:   coerceInt,
	model.ServiceSetRuntimeValueFloat: coerceFloat,
	model.ServicePulse:                nil,
}

func Names() (result []string) {
	for name := range valueSchema {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Parse validates a json service call.
func Parse(service string, data []byte) (result ServiceCall, err error) {
	valueCoercion, ok := valueSchema[service]
	if !ok {
		return result, fmt.Errorf("%w: %v", model.ErrUnknownService, service)
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	fields := map[string]interface{}{}
	err = decoder.Decode(&fields)
	if err != nil {
		return result, invalid(service, "%v", err)
	}
	allowed := []string{AttrIhcId, AttrControllerId}
	if valueCoercion != nil {
		allowed = append(allowed, AttrValue)
	}
	for key := range fields {
		if !slices.Contains(allowed, key) {
			return result, invalid(service, "extra key %v not allowed", key)
		}
	}

	rawId, ok := fields[AttrIhcId]
	if !ok {
		return result, invalid(service, "missing %v", AttrIhcId)
	}
	id, err := coerceInt(rawId)
	if err != nil || id.(int) < 0 {
		return result, invalid(service, "%v must be a positive integer", AttrIhcId)
	}
	result.ResourceId = id.(int)

	if valueCoercion != nil {
		rawValue, ok := fields[AttrValue]
		if !ok {
			return result, invalid(service, "missing %v", AttrValue)
		}
		result.Value, err = valueCoercion(rawValue)
		if err != nil {
			return result, invalid(service, "%v: %v", AttrValue, err)
		}
	}

	if rawControllerId, ok := fields[AttrControllerId]; ok {
		switch v := rawControllerId.(type) {
		case string:
			result.ControllerId = v
		case json.Number:
			result.ControllerId = v.String()
		default:
			return result, invalid(service, "%v must be a string", AttrControllerId)
		}
	}
	return result, nil
}

func invalid(service string, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %v: %v", model.ErrInvalidServiceCall, service, fmt.Sprintf(format, args...))
}

func coerceBool(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return f != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on", "enable":
			return true, nil
		case "0", "false", "no", "off", "disable":
			return false, nil
		}
		return nil, fmt.Errorf("invalid boolean value %q", v)
	}
	return nil, fmt.Errorf("invalid boolean value %v", value)
}

// coerceInt truncates fractional numbers, strings must contain an integer
func coerceInt(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			if i < math.MinInt || i > math.MaxInt {
				return nil, fmt.Errorf("integer value %v out of range", v)
			}
			return int(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		// -math.MinInt is the first value above math.MaxInt
		if f < math.MinInt || f >= -math.MinInt {
			return nil, fmt.Errorf("integer value %v out of range", v)
		}
		return int(f), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid integer value %q", v)
		}
		return i, nil
	}
	return nil, fmt.Errorf("invalid integer value %v", value)
}

func coerceFloat(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return 1.0, nil
		}
		return 0.0, nil
	case json.Number:
		return v.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float value %q", v)
		}
		return f, nil
	}
	return nil, fmt.Errorf("invalid float value %v", value)
}
