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
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/configuration"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/devicerepo/fallback"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/log"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"github.com/SENERGY-Platform/models/go/models"
	"github.com/go-logr/logr"
	"slices"
	"strings"
	"sync"
	"time"
)

type DeviceRepo struct {
	config                    configuration.Config
	auth                      Auth
	fallback                  fallback.Fallback
	logger                    logr.Logger
	deviceTypes               []model.DeviceType
	minCacheDuration          time.Duration
	maxCacheDuration          time.Duration
	lastDtRefresh             time.Time
	lastDtRefreshUsedFallback bool
	dtMux                     sync.Mutex
	createMux                 sync.Mutex
	createdDt                 map[model.Platform]models.DeviceType
}

type Auth interface {
	EnsureAccess(config configuration.Config) (token string, err error)
}

func New(config configuration.Config, auth Auth) (*DeviceRepo, error) {
	f, err := fallback.NewFallback(config.FallbackFile)
	if err != nil {
		return nil, err
	}
	return NewWithDependencies(config, auth, f)
}

func NewWithDependencies(config configuration.Config, auth Auth, f fallback.Fallback) (*DeviceRepo, error) {
	minCacheDuration, err := time.ParseDuration(config.MinCacheDuration)
	if err != nil {
		return nil, err
	}
	maxCacheDuration, err := time.ParseDuration(config.MaxCacheDuration)
	if err != nil {
		return nil, err
	}
	return &DeviceRepo{
		auth:             auth,
		config:           config,
		fallback:         f,
		logger:           log.Logger.WithName("devicerepo"),
		minCacheDuration: minCacheDuration,
		maxCacheDuration: maxCacheDuration,
		createdDt:        map[model.Platform]models.DeviceType{},
	}, nil
}

func (this *DeviceRepo) getToken() (string, error) {
	return this.auth.EnsureAccess(this.config)
}

// FindDeviceTypeId returns the id of the device-type used for hub devices of the given platform.
// If no device-type is known and CreateMissingDeviceTypesWithProtocol is configured, a new one is created.
func (this *DeviceRepo) FindDeviceTypeId(platform model.Platform) (dtId string, usedFallback bool, err error) {
	deviceTypes, err := this.ListIhcDeviceTypes()
	if err != nil {
		return "", this.getLastDtRefreshUsedFallback(), err
	}
	deviceType, ok := getMatchingDeviceType(deviceTypes, platform)
	if !ok && time.Since(this.getLastDtRefresh()) > this.minCacheDuration {
		err = this.refreshDeviceTypeList()
		if err != nil {
			return "", this.getLastDtRefreshUsedFallback(), err
		}
		deviceTypes, err = this.ListIhcDeviceTypes()
		if err != nil {
			return "", this.getLastDtRefreshUsedFallback(), err
		}
		deviceType, ok = getMatchingDeviceType(deviceTypes, platform)
	}
	if !ok && this.config.CreateMissingDeviceTypesWithProtocol != "" && !this.getLastDtRefreshUsedFallback() {
		created, err := this.createDeviceType(platform)
		if err != nil {
			return "", false, err
		}
		return created.Id, false, nil
	}
	if !ok {
		return "", this.getLastDtRefreshUsedFallback(), fmt.Errorf("%w: platform=%v", model.NoMatchingDeviceTypeFound, platform)
	}
	return deviceType.Id, this.getLastDtRefreshUsedFallback(), nil
}

const AttributeIhcPlatform = "senergy/ihc-platform"

func getMatchingDeviceType(devicetypes []model.DeviceType, platform model.Platform) (model.DeviceType, bool) {
	for _, dt := range devicetypes {
		attrMap := map[string][]string{}
		for _, attr := range dt.Attributes {
			attrMap[attr.Key] = append(attrMap[attr.Key], strings.ToLower(strings.TrimSpace(attr.Value)))
		}
		if _, usedForIhc := attrMap[AttributeUsedForIhc]; !usedForIhc {
			continue
		}
		if platforms, platformIsSet := attrMap[AttributeIhcPlatform]; platformIsSet && slices.Contains(platforms, strings.ToLower(string(platform))) {
			return dt, true
		}
	}
	return model.DeviceType{}, false
}
