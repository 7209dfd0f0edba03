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
	"fmt"
	"gopkg.in/yaml.v3"
	"slices"
	"strings"
)

type keyValue struct {
	key   string
	value *yaml.Node
}

// parseDocument returns the root mapping of content; nil for empty documents.
func parseDocument(content []byte) (*yaml.Node, error) {
	doc := yaml.Node{}
	err := yaml.Unmarshal(content, &doc)
	if err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 || isNull(doc.Content[0]) {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %v: expected mapping", root.Line)
	}
	return root, nil
}

func isNull(node *yaml.Node) bool {
	return node == nil || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}

func mappingPairs(node *yaml.Node) (result []keyValue, err error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %v: expected mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i = i + 2 {
		result = append(result, keyValue{key: node.Content[i].Value, value: node.Content[i+1]})
	}
	return result, nil
}

// ensureList accepts a single element in place of a list
func ensureList(node *yaml.Node) []*yaml.Node {
	if isNull(node) {
		return nil
	}
	if node.Kind == yaml.SequenceNode {
		return node.Content
	}
	return []*yaml.Node{node}
}

// decodeStrict rejects keys outside of allowed before decoding node into out.
func decodeStrict(node *yaml.Node, out interface{}, allowed []string) (keys []string, err error) {
	pairs, err := mappingPairs(node)
	if err != nil {
		return nil, err
	}
	for _, pair := range pairs {
		if !slices.Contains(allowed, pair.key) {
			return nil, fmt.Errorf("line %v: extra key %v not allowed (allowed: %v)", node.Line, pair.key, strings.Join(allowed, ", "))
		}
		keys = append(keys, pair.key)
	}
	return keys, node.Decode(out)
}
