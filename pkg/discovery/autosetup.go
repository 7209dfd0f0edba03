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
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"github.com/antchfx/xmlquery"
	"strconv"
	"strings"
)

var ErrInvalidProject = errors.New("invalid ihc project")

// AutoSetup maps the resources of a controller project to devices.
// Any malformed input aborts the whole auto setup.
func AutoSetup(project string, rules Rules, controllerId string) (Mapping, error) {
	if project == "" {
		return nil, fmt.Errorf("%w: empty ihc project", model.ErrNotFound)
	}
	doc, err := xmlquery.Parse(strings.NewReader(project))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}
	groups, err := xmlquery.QueryAll(doc, "//group")
	if err != nil {
		return nil, err
	}
	result := Mapping{}
	for _, platform := range model.Platforms {
		devices, err := GetDiscoveryInfo(rules[platform], groups, controllerId)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", platform, err)
		}
		if len(devices) > 0 {
			result[platform] = devices
		}
	}
	return result, nil
}

// GetDiscoveryInfo applies the rules of one platform to the project groups.
// Names are "{group}_{resource id}"; later matches overwrite earlier ones.
func GetDiscoveryInfo(rules []Rule, groups []*xmlquery.Node, controllerId string) (map[string]Device, error) {
	result := map[string]Device{}
	for _, group := range groups {
		groupName, ok := attr(group, "name")
		if !ok {
			return nil, fmt.Errorf("%w: group without name", ErrInvalidProject)
		}
		for _, rule := range rules {
			products, err := xmlquery.QueryAll(group, rule.XPath)
			if err != nil {
				return nil, fmt.Errorf("invalid xpath %q: %w", rule.XPath, err)
			}
			for _, product := range products {
				productId, err := parseIdAttr(product)
				if err != nil {
					return nil, err
				}
				nodes, err := xmlquery.QueryAll(product, rule.Node)
				if err != nil {
					return nil, fmt.Errorf("invalid node %q: %w", rule.Node, err)
				}
				for _, node := range nodes {
					if setting, _ := attr(node, "setting"); setting == "yes" {
						continue
					}
					resourceId, err := parseIdAttr(node)
					if err != nil {
						return nil, err
					}
					productIdentifier, _ := attr(product, "product_identifier")
					name, _ := attr(product, "name")
					note, _ := attr(product, "note")
					position, _ := attr(product, "position")
					result[fmt.Sprintf("%v_%v", groupName, resourceId)] = Device{
						ResourceId:   resourceId,
						ControllerId: controllerId,
						Product: Product{
							Id:       productId,
							Name:     name,
							Note:     note,
							Position: position,
							Model:    strings.TrimPrefix(productIdentifier, "_"),
							Group:    groupName,
						},
						Config: rule.ProductConfig,
					}
				}
			}
		}
	}
	return result, nil
}

func attr(node *xmlquery.Node, name string) (string, bool) {
	for _, a := range node.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func parseIdAttr(node *xmlquery.Node) (int, error) {
	value, ok := attr(node, "id")
	if !ok {
		return 0, fmt.Errorf("%w: <%v> without id", ErrInvalidProject, node.Data)
	}
	return ParseResourceId(value)
}

// ParseResourceId parses ids like "_0x3a4f_": underscores are trimmed on both ends,
// the base is taken from the prefix (0x, 0o, 0b, decimal otherwise).
func ParseResourceId(value string) (int, error) {
	trimmed := strings.Trim(value, "_")
	if len(trimmed) > 1 && trimmed[0] == '0' && trimmed[1] >= '0' && trimmed[1] <= '9' {
		// a leading zero without base prefix is ambiguous, only zeros are accepted
		if strings.Trim(trimmed, "0") != "" {
			return 0, fmt.Errorf("invalid ihc resource id %q", value)
		}
		return 0, nil
	}
	result, err := strconv.ParseInt(trimmed, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ihc resource id %q: %w", value, err)
	}
	return int(result), nil
}
