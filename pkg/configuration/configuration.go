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

package configuration

import (
	"encoding/json"
	"errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"path/filepath"
)

type Config struct {
	ConnectorId    string `json:"connector_id"`
	DeviceIdPrefix string `json:"device_id_prefix"`
	Debug          bool   `json:"debug"`
	LogFile        string `json:"log_file"`

	// location of ihc_auto_setup.yaml and ihc_manual_setup.yaml
	ConfigDir string `json:"config_dir"`

	// controller factory used for entries without own backend
	Backend     string             `json:"backend"`
	Controllers []ControllerConfig `json:"controllers"`

	MgwMqttBroker   string `json:"mgw_mqtt_broker"`
	MgwMqttUser     string `json:"mgw_mqtt_user"`
	MgwMqttPw       string `json:"mgw_mqtt_pw"`
	MgwMqttClientId string `json:"mgw_mqtt_client_id"`

	// address of an in-process mqtt broker, empty to disable
	EmbeddedBroker string `json:"embedded_broker"`

	AuthEndpoint     string `json:"auth_endpoint"`
	AuthClientId     string `json:"auth_client_id"`
	AuthClientSecret string `json:"auth_client_secret"`
	AuthUserName     string `json:"auth_user_name"`
	AuthPassword     string `json:"auth_password"`

	PermissionsSearchUrl string `json:"permissions_search_url"`
	DeviceManagerUrl     string `json:"device_manager_url"`
	FallbackFile         string `json:"fallback_file"`
	MinCacheDuration     string `json:"min_cache_duration"`
	MaxCacheDuration     string `json:"max_cache_duration"`

	CreateMissingDeviceTypesWithProtocol        string `json:"create_missing_device_types_with_protocol"`
	CreateMissingDeviceTypesWithProtocolSegment string `json:"create_missing_device_types_with_protocol_segment"`
}

// ControllerConfig is one config entry, the connection to a single ihc controller.
type ControllerConfig struct {
	Url       string `json:"url"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	AutoSetup bool   `json:"auto_setup"`
	Info      bool   `json:"info"`
	Backend   string `json:"backend"`
}

// Load reads the json config file at location.
// Every top level field may be overwritten by an environment variable named like its json key in upper case
// (mgw_mqtt_broker -> MGW_MQTT_BROKER).
func Load(location string) (config Config, err error) {
	v := viper.New()
	err = setDefaults(v)
	if err != nil {
		return config, err
	}
	v.SetConfigFile(location)
	v.SetConfigType("json")
	err = v.ReadInConfig()
	if err != nil {
		return config, err
	}
	v.AutomaticEnv()
	err = v.Unmarshal(&config, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "json"
	})
	if err != nil {
		return config, err
	}
	if config.ConfigDir == "" {
		config.ConfigDir = filepath.Dir(location)
	}
	return config, config.Validate()
}

func (this Config) Validate() error {
	if this.ConnectorId == "" {
		return errors.New("missing connector_id")
	}
	if this.MgwMqttBroker == "" {
		return errors.New("missing mgw_mqtt_broker")
	}
	return nil
}

var defaults = Config{
	ConnectorId:      "mgw-ihc-dc",
	DeviceIdPrefix:   "ihc:",
	Backend:          "simulator",
	MgwMqttClientId:  "mgw-ihc-dc",
	FallbackFile:     "devicerepo_fallback.json",
	MinCacheDuration: "1m",
	MaxCacheDuration: "1h",
}

// registers every key, so that env variables are honored even if the key is missing in the config file
func setDefaults(v *viper.Viper) error {
	temp, err := json.Marshal(defaults)
	if err != nil {
		return err
	}
	values := map[string]interface{}{}
	err = json.Unmarshal(temp, &values)
	if err != nil {
		return err
	}
	for key, value := range values {
		v.SetDefault(key, value)
	}
	return nil
}
