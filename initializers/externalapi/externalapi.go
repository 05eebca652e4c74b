// Package externalapi provides the external API client subsystem
// initializer: it probes an HTTP health endpoint of a third-party service
// with an injectable http.Client.
package externalapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/GoCodeAlone/bootstrap"
)

// External API errors
var (
	ErrUnhealthyResponse = errors.New("health endpoint returned error status")
)

// Driver implements bootstrap.Driver for an external HTTP API.
//
// Configuration keys: base_url (required, absolute http/https URL),
// health_path (default "/health"), api_key (optional, sent as a bearer
// token), plus the shared timeout/retry envelope.
type Driver struct {
	client *http.Client

	healthURL string
	apiKey    string
}

// Option configures a Driver.
type Option func(*Driver)

// WithHTTPClient replaces the default http.DefaultClient.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Driver) { d.client = client }
}

// New creates an external API driver.
func New(opts ...Option) *Driver {
	d := &Driver{client: http.DefaultClient}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name implements bootstrap.Driver.
func (d *Driver) Name() string { return "externalapi" }

// ValidateConfig checks the endpoint fields and retains the resolved
// health URL.
func (d *Driver) ValidateConfig(cfg bootstrap.Config) error {
	base, err := cfg.RequireString("base_url", "Base URL")
	if err != nil {
		return err
	}
	parsed, err := url.Parse(base)
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return errors.New("Invalid base_url value")
	}

	healthPath := cfg.String("health_path")
	if healthPath == "" {
		healthPath = "/health"
	}
	d.healthURL = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(healthPath, "/")
	d.apiKey = cfg.String("api_key")
	return nil
}

// Probe issues a GET against the health endpoint and treats any status
// below 400 as healthy.
func (d *Driver) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.healthURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: %s", ErrUnhealthyResponse, resp.Status)
	}
	return nil
}

// Setup records the probed endpoint on the status.
func (d *Driver) Setup(_ context.Context, status *bootstrap.Status) error {
	status.AddData("health_url", d.healthURL)
	status.AddData("authenticated", d.apiKey != "")
	return nil
}

// HealthURL returns the resolved health endpoint.
func (d *Driver) HealthURL() string { return d.healthURL }
