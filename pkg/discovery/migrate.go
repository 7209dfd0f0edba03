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

package discovery

import (
	"errors"
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/log"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
)

// SerialLookup connects to a controller and returns its serial number.
type SerialLookup func(url string, username string, password string) (string, error)

// Migrate copies the device lists of a legacy configuration (a yaml file with an "ihc" section containing
// one or more controller configs) into ManualSetupFile in dir. Controllers are identified by their serial number.
// Nothing is written if ManualSetupFile already exists or the legacy configuration contains no devices.
func Migrate(legacyFile string, dir string, lookup SerialLookup) (written bool, err error) {
	logger := log.Logger.WithName("migrate")
	target := filepath.Join(dir, ManualSetupFile)
	if _, err := os.Stat(target); err == nil {
		logger.Info("WARNING: manual setup file already exists, migration skipped", "file", target)
		return false, nil
	}
	content, err := os.ReadFile(legacyFile)
	if err != nil {
		return false, err
	}
	root, err := parseDocument(content)
	if err != nil {
		return false, err
	}
	pairs, err := mappingPairs(root)
	if err != nil {
		return false, err
	}
	var section *yaml.Node
	for _, pair := range pairs {
		if pair.key == "ihc" {
			section = pair.value
		}
	}
	if section == nil {
		return false, errors.New("legacy configuration has no ihc section")
	}

	controllers := &yaml.Node{Kind: yaml.SequenceNode}
	hasManualConfig := false
	for i, controllerConf := range ensureList(section) {
		connection := struct {
			Url      string `yaml:"url"`
			Username string `yaml:"username"`
			Password string `yaml:"password"`
		}{}
		err = controllerConf.Decode(&connection)
		if err != nil {
			return false, fmt.Errorf("ihc[%v]: %w", i, err)
		}
		if connection.Url == "" {
			return false, fmt.Errorf("ihc[%v]: missing url", i)
		}
		serial, err := lookup(connection.Url, connection.Username, connection.Password)
		if err != nil {
			return false, fmt.Errorf("ihc[%v]: unable to get controller serial: %w", i, err)
		}
		logger.V(1).Info("migrate controller", "url", connection.Url, "serial", serial)

		controller := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{scalar("controller"), scalar(serial)}}
		confPairs, err := mappingPairs(controllerConf)
		if err != nil {
			return false, fmt.Errorf("ihc[%v]: %w", i, err)
		}
		for _, platform := range model.Platforms {
			for _, pair := range confPairs {
				if pair.key != string(platform) {
					continue
				}
				devices := ensureList(pair.value)
				if len(devices) == 0 {
					continue
				}
				hasManualConfig = true
				controller.Content = append(controller.Content, scalar(pair.key), &yaml.Node{Kind: yaml.SequenceNode, Content: devices})
			}
		}
		controllers.Content = append(controllers.Content, controller)
	}
	if !hasManualConfig {
		logger.V(1).Info("no manual configuration in legacy ihc configuration")
		return false, nil
	}

	file, err := os.Create(target)
	if err != nil {
		return false, err
	}
	defer file.Close()
	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	err = encoder.Encode(&yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{scalar("ihc"), controllers}})
	if err != nil {
		return false, err
	}
	err = encoder.Close()
	if err != nil {
		return false, err
	}
	logger.Info("WARNING: legacy ihc configuration has been copied, the ihc section of the legacy file may be removed", "file", target)
	return true, nil
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
