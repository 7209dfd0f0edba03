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

package model

// ServiceDescription describes one hub service of a platform device-type.
// Input and Output hold example payloads; nil means the service has no such content.
type ServiceDescription struct {
	LocalId     string
	Interaction string
	Input       map[string]interface{}
	Output      map[string]interface{}
}

const InteractionEventAndRequest = "event+request"
const InteractionRequest = "request"

const GetService = "get"
const SetService = "set"
const PressService = "press"

const ServiceSetRuntimeValueBool = "set_runtime_value_bool"
const ServiceSetRuntimeValueInt = "set_runtime_value_int"
const ServiceSetRuntimeValueFloat = "set_runtime_value_float"
const ServicePulse = "pulse"

func getService(output map[string]interface{}) ServiceDescription {
	return ServiceDescription{
		LocalId:     GetService,
		Interaction: InteractionEventAndRequest,
		Output:      output,
	}
}

func PlatformServices(platform Platform) []ServiceDescription {
	switch platform {
	case BinarySensor:
		return []ServiceDescription{
			getService(map[string]interface{}{"state": true, "device_class": "motion"}),
		}
	case Switch:
		return []ServiceDescription{
			getService(map[string]interface{}{"state": true}),
			{LocalId: SetService, Interaction: InteractionRequest, Input: map[string]interface{}{"state": true}},
		}
	case Light:
		return []ServiceDescription{
			getService(map[string]interface{}{"state": true, "brightness": 255, "dimmable": true}),
			{LocalId: SetService, Interaction: InteractionRequest, Input: map[string]interface{}{"state": true, "brightness": 255}},
		}
	case Sensor:
		return []ServiceDescription{
			getService(map[string]interface{}{"value": 21.5, "unit": "°C"}),
		}
	case Button:
		return []ServiceDescription{
			getService(map[string]interface{}{"state": false}),
			{LocalId: PressService, Interaction: InteractionRequest},
		}
	case ControllerPlatform:
		return []ServiceDescription{
			{LocalId: GetService, Interaction: InteractionRequest, Output: map[string]interface{}{
				"serial_number":    "4c1234567890",
				"brand":            "ihc",
				"hw_revision":      "6",
				"version":          "2.7.186",
				"production_date":  "2018-09-01",
				"dataline_version": "IOB 1.0",
			}},
		}
	case ServicesPlatform:
		return []ServiceDescription{
			{LocalId: ServiceSetRuntimeValueBool, Interaction: InteractionRequest, Input: map[string]interface{}{"ihc_id": 12345, "value": true, "controller_id": ""}},
			{LocalId: ServiceSetRuntimeValueInt, Interaction: InteractionRequest, Input: map[string]interface{}{"ihc_id": 12345, "value": 42, "controller_id": ""}},
			{LocalId: ServiceSetRuntimeValueFloat, Interaction: InteractionRequest, Input: map[string]interface{}{"ihc_id": 12345, "value": 4.2, "controller_id": ""}},
			{LocalId: ServicePulse, Interaction: InteractionRequest, Input: map[string]interface{}{"ihc_id": 12345, "controller_id": ""}},
		}
	}
	return nil
}
