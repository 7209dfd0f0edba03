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

package fallback

import (
	"encoding/json"
	"errors"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/model"
	"os"
	"path/filepath"
	"sync"
)

// Fallback is a json file backed key value store.
// It keeps the last successful answers of remote services for offline starts.
type Fallback struct {
	file string
	mux  *sync.Mutex
}

func NewFallback(file string) (result Fallback, err error) {
	result = Fallback{file: file, mux: &sync.Mutex{}}
	if file == "" {
		return result, errors.New("missing fallback file location")
	}
	dir := filepath.Dir(file)
	err = os.MkdirAll(dir, 0755)
	return result, err
}

// Get decodes the value stored under key into result.
func (this Fallback) Get(key string, result interface{}) error {
	this.mux.Lock()
	defer this.mux.Unlock()
	values, err := this.load()
	if err != nil {
		return err
	}
	value, ok := values[key]
	if !ok {
		return model.ErrNotFound
	}
	return json.Unmarshal(value, result)
}

func (this Fallback) Set(key string, value interface{}) error {
	this.mux.Lock()
	defer this.mux.Unlock()
	values, err := this.load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if values == nil {
		values = map[string]json.RawMessage{}
	}
	temp, err := json.Marshal(value)
	if err != nil {
		return err
	}
	values[key] = temp
	content, err := json.MarshalIndent(values, "", "    ")
	if err != nil {
		return err
	}
	tmpFile := this.file + ".tmp"
	err = os.WriteFile(tmpFile, content, 0644)
	if err != nil {
		return err
	}
	return os.Rename(tmpFile, this.file)
}

func (this Fallback) load() (values map[string]json.RawMessage, err error) {
	content, err := os.ReadFile(this.file)
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(content, &values)
	return values, err
}
