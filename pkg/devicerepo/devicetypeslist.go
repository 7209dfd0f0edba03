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
	"errors"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"time"
)

const AttributeUsedForIhc = "senergy/ihc-dc"
const DtFallbackKey = "device-types"

func (this *DeviceRepo) ListIhcDeviceTypes() (list []model.DeviceType, err error) {
	age := time.Since(this.getLastDtRefresh())
	if (this.getLastDtRefreshUsedFallback() && age > this.minCacheDuration) || age > this.maxCacheDuration {
		err = this.refreshDeviceTypeList()
		if err != nil {
			return nil, err
		}
	}
	return this.getDeviceTypeList(), nil
}

func (this *DeviceRepo) refreshDeviceTypeList() error {
	result, err := this.getDeviceTypeListFromPermissionSearch()
	this.dtMux.Lock()
	defer this.dtMux.Unlock()
	if err == nil {
		this.deviceTypes = result
		this.lastDtRefresh = time.Now()
		this.lastDtRefreshUsedFallback = false
		err = this.fallback.Set(DtFallbackKey, this.deviceTypes)
		if err != nil {
			this.logger.Error(err, "unable to store device-types in fallback file")
		}
		return nil
	}
	this.logger.Info("WARNING: use fallback file to load device type list", "reason", err.Error())
	result, fallbackErr := this.getDeviceTypeListFromFallback()
	if fallbackErr != nil {
		return errors.Join(err, fallbackErr)
	}
	this.deviceTypes = result
	this.lastDtRefresh = time.Now()
	this.lastDtRefreshUsedFallback = true
	return nil
}

func (this *DeviceRepo) getDeviceTypeListFromPermissionSearch() (result []model.DeviceType, err error) {
	token, err := this.getToken()
	if err != nil {
		return result, err
	}
	err, _ = PermissionSearch(token, this.config.PermissionsSearchUrl, QueryMessage{
		Resource: "device-types",
		Find: &QueryFind{
			QueryListCommons: QueryListCommons{
				Limit:  9999,
				Offset: 0,
				Rights: "r",
				SortBy: "name",
			},
			Filter: &Selection{
				Condition: &ConditionConfig{
					Feature:   "features.attributes.key",
					Operation: QueryEqualOperation,
					Value:     AttributeUsedForIhc,
				},
			},
		},
	}, &result)
	if err != nil {
		return result, err
	}
	return result, nil
}

func (this *DeviceRepo) getDeviceTypeListFromFallback() (result []model.DeviceType, err error) {
	err = this.fallback.Get(DtFallbackKey, &result)
	if err != nil {
		this.logger.Error(err, "unable to load device-types from fallback")
		return result, err
	}
	return result, nil
}

func (this *DeviceRepo) getDeviceTypeList() []model.DeviceType {
	this.dtMux.Lock()
	defer this.dtMux.Unlock()
	return this.deviceTypes
}

func (this *DeviceRepo) getLastDtRefresh() time.Time {
	this.dtMux.Lock()
	defer this.dtMux.Unlock()
	return this.lastDtRefresh
}

func (this *DeviceRepo) getLastDtRefreshUsedFallback() bool {
	this.dtMux.Lock()
	defer this.dtMux.Unlock()
	return this.lastDtRefreshUsedFallback
}
