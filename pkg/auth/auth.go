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

package auth

import (
	"context"
	"errors"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/configuration"
	"github.com/SENERGY-Platform/mgw-ihc-dc/pkg/log"
	"golang.org/x/oauth2"
	"sync"
	"time"
)

var ErrMissingEndpoint = errors.New("missing auth_endpoint")

// Auth fetches and caches an openid token with the password grant.
type Auth struct {
	mux   sync.Mutex
	token *oauth2.Token
	// tokens are renewed this long before they expire
	expirationBuffer time.Duration
}

func New() *Auth {
	return &Auth{expirationBuffer: 10 * time.Second}
}

// EnsureAccess returns a valid token in the form "Bearer {access_token}".
func (this *Auth) EnsureAccess(config configuration.Config) (token string, err error) {
	this.mux.Lock()
	defer this.mux.Unlock()
	if this.token != nil && this.token.AccessToken != "" && (this.token.Expiry.IsZero() || time.Until(this.token.Expiry) > this.expirationBuffer) {
		return this.bearer(), nil
	}
	if config.AuthEndpoint == "" {
		return "", ErrMissingEndpoint
	}
	log.Logger.WithName("auth").V(1).Info("request new token", "endpoint", config.AuthEndpoint)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	oauthConfig := &oauth2.Config{
		ClientID:     config.AuthClientId,
		ClientSecret: config.AuthClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  config.AuthEndpoint + "/auth/realms/master/protocol/openid-connect/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	this.token, err = oauthConfig.PasswordCredentialsToken(ctx, config.AuthUserName, config.AuthPassword)
	if err != nil {
		this.token = nil
		return "", err
	}
	return this.bearer(), nil
}

func (this *Auth) bearer() string {
	return "Bearer " + this.token.AccessToken
}

// Token is a fixed token, useful for tests and setups without openid.
type Token string

func (this Token) EnsureAccess(_ configuration.Config) (string, error) {
	return string(this), nil
}
