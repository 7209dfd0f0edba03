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

package resources

import (
	_ "embed"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/devicerepo"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"github.com/SENERGY-Platform/models/go/models"
)

// Project is an ihc project export with two groups and seven auto discoverable resources.
//
//go:embed project.xml
var Project string

// ProjectDeviceIds are the hub device ids of the Project resources on controller 4c1234 with prefix "ihc:".
var ProjectDeviceIds = []string{
	"ihc:ihc4c123419986",
	"ihc:ihc4c123420481",
	"ihc:ihc4c123424577",
	"ihc:ihc4c123424578",
	"ihc:ihc4c123428673",
	"ihc:ihc4c123432769",
	"ihc:ihc4c123436865",
}

// DeviceTypes returns one matching device-type per platform, with id "dt-{platform}".
func DeviceTypes() (result []model.DeviceType) {
	platforms := append([]model.Platform{model.ControllerPlatform, model.ServicesPlatform}, model.Platforms...)
	for _, platform := range platforms {
		result = append(result, model.DeviceType{
			Id:   "dt-" + string(platform),
			Name: string(platform),
			Attributes: []models.Attribute{
				{Key: devicerepo.AttributeUsedForIhc, Value: "true"},
				{Key: devicerepo.AttributeIhcPlatform, Value: string(platform)},
			},
		})
	}
	return result
}
