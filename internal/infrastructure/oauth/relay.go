package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	appconnector "github.com/madhugraj/transact-ai-nexus-sub002/internal/application/connector"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/connector"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/config"
	"golang.org/x/oauth2"
)

const defaultExchangeTimeout = 15 * time.Second

// Relay exchanges authorization codes at the provider token endpoint on
// behalf of the frontend, keeping client secrets server side
type Relay struct {
	configs    map[connector.Provider]*oauth2.Config
	httpClient *http.Client
}

var _ appconnector.OAuthRelay = (*Relay)(nil)

// NewRelay builds one OAuth client per configured provider. Providers without
// a client id are left out and report PROVIDER_NOT_CONFIGURED.
func NewRelay(cfg config.ConnectorsConfig) *Relay {
	r := &Relay{
		configs:    make(map[connector.Provider]*oauth2.Config),
		httpClient: &http.Client{Timeout: defaultExchangeTimeout},
	}
	r.add(connector.ProviderGoogleDrive, cfg.GoogleDrive, cfg.RedirectURL)
	r.add(connector.ProviderGmail, cfg.Gmail, cfg.RedirectURL)
	return r
}

// WithHTTPClient overrides the client used for token requests
func (r *Relay) WithHTTPClient(client *http.Client) *Relay {
	r.httpClient = client
	return r
}

func (r *Relay) add(provider connector.Provider, p config.OAuthProviderConfig, redirectURL string) {
	if strings.TrimSpace(p.ClientID) == "" {
		return
	}
	r.configs[provider] = &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       p.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   p.AuthURL,
			TokenURL:  p.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Configured reports whether the provider has client credentials
func (r *Relay) Configured(provider connector.Provider) bool {
	_, ok := r.configs[provider]
	return ok
}

// AuthCodeURL returns the consent URL asking for offline access, so the
// provider issues a refresh token
func (r *Relay) AuthCodeURL(provider connector.Provider, state string) (string, error) {
	cfg, ok := r.configs[provider]
	if !ok {
		return "", appconnector.ErrProviderNotConfigured
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Exchange redeems an authorization code
func (r *Relay) Exchange(ctx context.Context, provider connector.Provider, code string) (*appconnector.OAuthToken, error) {
	cfg, ok := r.configs[provider]
	if !ok {
		return nil, appconnector.ErrProviderNotConfigured
	}
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("authorization code is empty")
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code with %s: %w", provider, err)
	}

	scopes := cfg.Scopes
	if granted, ok := tok.Extra("scope").(string); ok && granted != "" {
		scopes = strings.Fields(granted)
	}
	return &appconnector.OAuthToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
		Scopes:       scopes,
	}, nil
}
