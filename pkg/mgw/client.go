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

package mgw

import (
	"context"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/configuration"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/log"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"sync"
	"time"
)

type Client struct {
	mqtt              paho.Client
	debug             bool
	connectorId       string
	refreshNotifier   func()
	logger            logr.Logger
	subscriptionsMux  sync.Mutex
	subscriptions     map[string]paho.MessageHandler
	deviceCommandsMux sync.Mutex
	deviceCommands    map[string]DeviceCommandHandler
}

type DeviceCommandHandler func(deviceId string, serviceId string, command Command)

func New(ctx context.Context, wg *sync.WaitGroup, config configuration.Config, refreshNotifier func()) (*Client, error) {
	client := &Client{
		debug:           config.Debug,
		connectorId:     config.ConnectorId,
		refreshNotifier: refreshNotifier,
		logger:          log.Logger.WithName("mgw"),
		subscriptions:   map[string]paho.MessageHandler{},
		deviceCommands:  map[string]DeviceCommandHandler{},
	}
	client.logger.Info("start mgw client", "broker", config.MgwMqttBroker)

	clientId := config.MgwMqttClientId
	if clientId == "" {
		clientId = config.ConnectorId
	}
	// a fixed client id would break parallel instances on the same broker
	clientId = clientId + "_" + uuid.NewString()

	options := paho.NewClientOptions().
		SetPassword(config.MgwMqttPw).
		SetUsername(config.MgwMqttUser).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetClientID(clientId).
		AddBroker(config.MgwMqttBroker).
		SetWriteTimeout(10*time.Second).
		SetOrderMatters(false).
		SetWill(client.lastWillTopic(), "offline", 2, false).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			client.logger.Error(err, "connection to mgw broker lost")
		}).
		SetOnConnectHandler(func(_ paho.Client) {
			client.logger.Info("connected to mgw broker")
			client.loadOldSubscriptions()
			go client.refreshNotifier()
		})

	client.mqtt = paho.NewClient(options)
	if token := client.mqtt.Connect(); token.Wait() && token.Error() != nil {
		client.logger.Error(token.Error(), "unable to connect to mgw broker")
		return client, token.Error()
	}

	err := client.initSubscriptions()
	if err != nil {
		return client, err
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		client.mqtt.Disconnect(200)
	}()

	return client, nil
}

func (this *Client) initSubscriptions() error {
	return this.subscribe(RefreshTopic, func(_ paho.Client, _ paho.Message) {
		this.logger.V(1).Info("received device-manager refresh")
		this.refreshNotifier()
	})
}

func (this *Client) subscribe(topic string, handler paho.MessageHandler) error {
	token := this.mqtt.Subscribe(topic, 2, handler)
	if token.Wait() && token.Error() != nil {
		this.logger.Error(token.Error(), "unable to subscribe", "topic", topic)
		return token.Error()
	}
	this.subscriptionsMux.Lock()
	defer this.subscriptionsMux.Unlock()
	this.subscriptions[topic] = handler
	return nil
}

func (this *Client) unsubscribe(topic string) error {
	this.subscriptionsMux.Lock()
	delete(this.subscriptions, topic)
	this.subscriptionsMux.Unlock()
	token := this.mqtt.Unsubscribe(topic)
	if token.Wait() && token.Error() != nil {
		this.logger.Error(token.Error(), "unable to unsubscribe", "topic", topic)
		return token.Error()
	}
	return nil
}

// clean sessions lose their subscriptions on reconnect
func (this *Client) loadOldSubscriptions() {
	this.subscriptionsMux.Lock()
	subscriptions := map[string]paho.MessageHandler{}
	for topic, handler := range this.subscriptions {
		subscriptions[topic] = handler
	}
	this.subscriptionsMux.Unlock()
	for topic, handler := range subscriptions {
		this.logger.V(1).Info("resubscribe", "topic", topic)
		token := this.mqtt.Subscribe(topic, 2, handler)
		if token.Wait() && token.Error() != nil {
			this.logger.Error(token.Error(), "unable to resubscribe", "topic", topic)
		}
	}
}

func (this *Client) publish(topic string, payload []byte) error {
	if !this.mqtt.IsConnected() {
		this.logger.Info("WARNING: mqtt client not connected, message dropped", "topic", topic)
		return ErrNotConnected
	}
	if this.debug {
		this.logger.V(1).Info("publish", "topic", topic, "payload", string(payload))
	}
	token := this.mqtt.Publish(topic, 2, false, payload)
	if token.Wait() && token.Error() != nil {
		this.logger.Error(token.Error(), "unable to publish", "topic", topic)
		return token.Error()
	}
	return nil
}
