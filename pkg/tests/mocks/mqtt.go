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

package mocks

import (
	"context"
	"encoding/json"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/log"
	paho "github.com/eclipse/paho.mqtt.golang"
	"sync"
	"time"
)

// MqttWatcher records every message published on the broker.
type MqttWatcher struct {
	client   paho.Client
	mux      sync.Mutex
	messages map[string][]string
}

func NewMqttWatcher(ctx context.Context, wg *sync.WaitGroup, broker string) (*MqttWatcher, error) {
	logger := log.Logger.WithName("test-watcher")
	watcher := &MqttWatcher{messages: map[string][]string{}}
	options := paho.NewClientOptions().
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetClientID("test-watcher").
		AddBroker(broker).
		SetWriteTimeout(10 * time.Second).
		SetOrderMatters(false).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Error(err, "connection to test watcher broker lost")
		})
	watcher.client = paho.NewClient(options)
	if token := watcher.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	token := watcher.client.Subscribe("#", 2, func(_ paho.Client, message paho.Message) {
		watcher.mux.Lock()
		defer watcher.mux.Unlock()
		watcher.messages[message.Topic()] = append(watcher.messages[message.Topic()], string(message.Payload()))
	})
	if token.Wait() && token.Error() != nil {
		watcher.client.Disconnect(0)
		return nil, token.Error()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		watcher.client.Disconnect(200)
	}()
	return watcher, nil
}

// Messages returns a deep copy of all received messages by topic.
func (this *MqttWatcher) Messages() (result map[string][]string) {
	this.mux.Lock()
	defer this.mux.Unlock()
	temp, _ := json.Marshal(this.messages)
	json.Unmarshal(temp, &result)
	return result
}

func (this *MqttWatcher) Topic(topic string) []string {
	this.mux.Lock()
	defer this.mux.Unlock()
	return append([]string{}, this.messages[topic]...)
}

func (this *MqttWatcher) Reset() {
	this.mux.Lock()
	defer this.mux.Unlock()
	this.messages = map[string][]string{}
}

func (this *MqttWatcher) Publish(topic string, payload string) error {
	token := this.client.Publish(topic, 2, false, payload)
	token.Wait()
	return token.Error()
}
