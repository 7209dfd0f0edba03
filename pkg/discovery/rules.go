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
	_ "embed"
	"errors"
	"fmt"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"os"
	"path/filepath"
	"slices"
)

const AutoSetupFile = "ihc_auto_setup.yaml"
const DefaultUnit = "°C"

//go:embed ihc_auto_setup.yaml
var defaultRules []byte

// Rule selects products by XPath (relative to a project group) and resource nodes by Node (relative to the product).
type Rule struct {
	XPath         string `yaml:"xpath"`
	Node          string `yaml:"node"`
	ProductConfig `yaml:",inline"`
}

type Rules map[model.Platform][]Rule

var ruleKeys = map[model.Platform][]string{
	model.BinarySensor: {"xpath", "node", "inverting", "type"},
	model.Light:        {"xpath", "node", "dimmable"},
	model.Sensor:       {"xpath", "node", "unit_of_measurement"},
	model.Switch:       {"xpath", "node"},
	model.Button:       {"xpath", "node"},
}

// LoadRules reads AutoSetupFile from dir; the embedded default rules are used if the file does not exist.
func LoadRules(dir string) (Rules, error) {
	content, err := os.ReadFile(filepath.Join(dir, AutoSetupFile))
	if errors.Is(err, os.ErrNotExist) {
		content = defaultRules
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return ParseRules(content)
}

func DefaultRules() (Rules, error) {
	return ParseRules(defaultRules)
}

func ParseRules(content []byte) (Rules, error) {
	root, err := parseDocument(content)
	if err != nil {
		return nil, fmt.Errorf("invalid ihc auto setup data: %w", err)
	}
	pairs, err := mappingPairs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid ihc auto setup data: %w", err)
	}
	result := Rules{}
	for _, pair := range pairs {
		platform := model.Platform(pair.key)
		allowed, ok := ruleKeys[platform]
		if !ok {
			return nil, fmt.Errorf("invalid ihc auto setup data: unknown platform %v", pair.key)
		}
		for i, item := range ensureList(pair.value) {
			rule := Rule{}
			keys, err := decodeStrict(item, &rule, allowed)
			if err != nil {
				return nil, fmt.Errorf("invalid ihc auto setup data: %v[%v]: %w", platform, i, err)
			}
			if rule.XPath == "" || rule.Node == "" {
				return nil, fmt.Errorf("invalid ihc auto setup data: %v[%v]: xpath and node are required", platform, i)
			}
			if platform == model.Sensor && !slices.Contains(keys, "unit_of_measurement") {
				rule.Unit = DefaultUnit
			}
			result[platform] = append(result[platform], rule)
		}
	}
	return result, nil
}
