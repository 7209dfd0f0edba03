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

package devicerepo

import (
	"bytes"
	"encoding/json"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/entities"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"github.com/SENERGY-Platform/models/go/models"
	"net/http"
	"sort"
)

const DefaultDeviceClassId = "urn:infai:ses:device-class:ff64280a-58e6-4cf9-9a44-e70d3831a79d"

func (this *DeviceRepo) createDeviceType(platform model.Platform) (result models.DeviceType, err error) {
	this.createMux.Lock()
	defer this.createMux.Unlock()
	if dt, ok := this.createdDt[platform]; ok {
		return dt, nil
	}
	dt := GenerateDeviceType(platform, this.config.CreateMissingDeviceTypesWithProtocol, this.config.CreateMissingDeviceTypesWithProtocolSegment)
	this.logger.Info("create missing device-type", "platform", platform, "name", dt.Name)
	token, err := this.getToken()
	if err != nil {
		return result, err
	}
	buf := &bytes.Buffer{}
	err = json.NewEncoder(buf).Encode(dt)
	if err != nil {
		return result, err
	}
	req, err := http.NewRequest(http.MethodPost, this.config.DeviceManagerUrl+"/device-types", buf)
	if err != nil {
		return result, err
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("Content-Type", "application/json")
	result, _, err = Do[models.DeviceType](req)
	if err != nil {
		this.logger.Error(err, "unable to create device-type", "platform", platform)
		return result, err
	}
	this.createdDt[platform] = result
	return result, nil
}

// GenerateDeviceType describes the hub device-type of platform with one service per model.PlatformServices entry.
func GenerateDeviceType(platform model.Platform, protocolId string, protocolSegmentId string) models.DeviceType {
	result := models.DeviceType{
		Name:          entities.Manufacturer + " IHC " + string(platform),
		DeviceClassId: DefaultDeviceClassId,
		Attributes: []models.Attribute{
			{Key: AttributeUsedForIhc, Value: "true"},
			{Key: AttributeIhcPlatform, Value: string(platform)},
		},
	}
	for _, desc := range model.PlatformServices(platform) {
		service := models.Service{
			LocalId:     desc.LocalId,
			Name:        desc.LocalId,
			Interaction: models.Interaction(desc.Interaction),
			ProtocolId:  protocolId,
		}
		if desc.Input != nil {
			service.Inputs = []models.Content{{
				ContentVariable:   GenerateContentVariable("value", desc.Input),
				Serialization:     models.JSON,
				ProtocolSegmentId: protocolSegmentId,
			}}
		}
		if desc.Output != nil {
			service.Outputs = []models.Content{{
				ContentVariable:   GenerateContentVariable("value", desc.Output),
				Serialization:     models.JSON,
				ProtocolSegmentId: protocolSegmentId,
			}}
		}
		result.Services = append(result.Services, service)
	}
	return result
}

// GenerateContentVariable derives the content variable structure from an example value.
func GenerateContentVariable(name string, example interface{}) models.ContentVariable {
	result := models.ContentVariable{Name: name}
	switch v := example.(type) {
	case bool:
		result.Type = models.Boolean
	case int, int64:
		result.Type = models.Integer
	case float32, float64:
		result.Type = models.Float
	case string:
		result.Type = models.String
	case map[string]interface{}:
		result.Type = models.Structure
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			result.SubContentVariables = append(result.SubContentVariables, GenerateContentVariable(key, v[key]))
		}
	default:
		result.Type = models.String
	}
	return result
}
