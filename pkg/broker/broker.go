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

package broker

import (
	"context"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/log"
	"github.com/go-logr/logr"
	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"log/slog"
	"net"
	"strconv"
	"sync"
)

// Start runs an in-process mqtt broker on address (host:port) until ctx is done.
func Start(ctx context.Context, wg *sync.WaitGroup, address string) error {
	logger := log.Logger.WithName("broker")
	server := mochi.New(&mochi.Options{
		InlineClient: true,
		Logger:       slog.New(logr.ToSlogHandler(logger.V(1))),
	})
	err := server.AddHook(new(auth.AllowHook), nil)
	if err != nil {
		return err
	}
	err = server.AddListener(listeners.NewTCP(listeners.Config{
		ID:      "tcp",
		Address: address,
	}))
	if err != nil {
		return err
	}
	err = server.Serve()
	if err != nil {
		return err
	}
	logger.Info("embedded mqtt broker started", "address", address)
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		err := server.Close()
		if err != nil {
			logger.Error(err, "unable to close embedded broker")
		}
	}()
	return nil
}

// FreePort returns an unused local tcp port.
func FreePort() (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer listener.Close()
	return strconv.Itoa(listener.Addr().(*net.TCPAddr).Port), nil
}
