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
	"bytes"
	"encoding/json"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/devicerepo"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"text/template"
)

const missingDeviceTypeTemplate = `missing ihc device-type, please provide a device-type with:
attributes:
    - {{.UsedForIhc}} = true
    - {{.PlatformAttr}} = {{.Platform}}
services:
---------------
{{range .Services}}local-id: {{.LocalId}}
interaction: {{.Interaction}}
protocol: standard-connector
{{if .Input}}example input data:
{{.Input}}
{{end}}{{if .Output}}example output data:
{{.Output}}
{{end}}---------------
{{end}}`

var missingDeviceTypeMessage = template.Must(template.New("missing").Parse(missingDeviceTypeTemplate))

type missingDeviceTypeService struct {
	LocalId     string
	Interaction string
	Input       string
	Output      string
}

// GetMissingDeviceTypeMessage describes the device-type the hub needs for devices of platform.
func GetMissingDeviceTypeMessage(platform model.Platform) string {
	services := []missingDeviceTypeService{}
	for _, desc := range model.PlatformServices(platform) {
		services = append(services, missingDeviceTypeService{
			LocalId:     desc.LocalId,
			Interaction: desc.Interaction,
			Input:       exampleJson(desc.Input),
			Output:      exampleJson(desc.Output),
		})
	}
	buf := &bytes.Buffer{}
	err := missingDeviceTypeMessage.Execute(buf, map[string]interface{}{
		"UsedForIhc":   devicerepo.AttributeUsedForIhc,
		"PlatformAttr": devicerepo.AttributeIhcPlatform,
		"Platform":     platform,
		"Services":     services,
	})
	if err != nil {
		return "missing ihc device-type for " + string(platform) + ": " + err.Error()
	}
	return buf.String()
}

func exampleJson(example map[string]interface{}) string {
	if example == nil {
		return ""
	}
	temp, err := json.MarshalIndent(example, "", "    ")
	if err != nil {
		return err.Error()
	}
	return string(temp)
}
