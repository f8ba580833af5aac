/*
Copyright (c) 2024 Fsas Technologies Inc., or its subsidiaries. All Rights Reserved.

Licensed under the Mozilla Public License Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://mozilla.org/MPL/2.0/


Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package redfish implements a session-stateful, vendor-abstracting
// client for BMC Redfish services. One Client instance owns at most one
// live session and a per-system cache of System/Manager/Chassis
// documents; it is intended to live for a single provisioning session.
package redfish

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"golang.org/x/sync/singleflight"

	"bmc-redfish-client/internal/models"
	"bmc-redfish-client/internal/transport"
)

const serviceRootPath = "/redfish/v1"

// Client talks to one BMC. Not safe for sharing across BMCs; safe for
// concurrent use by goroutines of one caller.
type Client struct {
	endpoint string
	username string
	password string

	log       logr.Logger
	transport transport.Doer
	driver    Driver

	mu      sync.Mutex
	session sessionState
	root    *serviceRoot

	loginGroup singleflight.Group
	cache      *resourceCache
}

// Option configures a Client.
type Option func(*Client)

// WithLogger installs the logger the client and its driver log through.
func WithLogger(log logr.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTransport replaces the HTTP transport, used by tests and by
// callers owning their own TLS policy.
func WithTransport(t transport.Doer) Option {
	return func(c *Client) { c.transport = t }
}

// Connect builds a client for the BMC at address, probes its service
// root and selects the vendor driver from the OEM marker. No session is
// established yet; the first authenticated call does that.
func Connect(ctx context.Context, address, username, password string, opts ...Option) (*Client, error) {
	c := &Client{
		endpoint: normalizeEndpoint(address),
		username: username,
		password: password,
		log:      logr.Discard(),
		cache:    newResourceCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = transport.New(transport.WithLogger(c.log))
	}
	c.log = c.log.WithValues("host", address)

	root, err := c.serviceRoot(ctx)
	if err != nil {
		return nil, fmt.Errorf("probing service root of %s: %w", c.endpoint, err)
	}

	driver, err := dispatch(c, root)
	if err != nil {
		return nil, err
	}
	c.driver = driver
	c.log.V(1).Info("vendor driver selected", "driver", driver.Name())

	return c, nil
}

// Driver exposes the active vendor driver.
func (c *Client) Driver() Driver { return c.driver }

// KVMConsole returns remote-console coordinates where the active vendor
// driver supports them.
func (c *Client) KVMConsole(ctx context.Context, systemID string) (*models.KVMConsole, error) {
	return c.driver.kvmConsole(ctx, systemID)
}

// Endpoint returns the normalized base URL of the BMC.
func (c *Client) Endpoint() string { return c.endpoint }

func normalizeEndpoint(address string) string {
	if strings.Contains(address, "://") {
		return strings.TrimSuffix(address, "/")
	}
	return "https://" + strings.TrimSuffix(address, "/")
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.endpoint + path
}

// serviceRoot fetches /redfish/v1 without authentication, once.
func (c *Client) serviceRoot(ctx context.Context) (*serviceRoot, error) {
	c.mu.Lock()
	root := c.root
	c.mu.Unlock()
	if root != nil {
		return root, nil
	}

	res, err := c.transport.Do(ctx, http.MethodGet, c.url(serviceRootPath), nil, nil)
	if err != nil {
		return nil, err
	}

	root = &serviceRoot{}
	if err := res.Decode(root); err != nil {
		return nil, fmt.Errorf("service root of %s: %w", c.endpoint, err)
	}

	c.mu.Lock()
	c.root = root
	c.mu.Unlock()
	return root, nil
}

// authenticated request helpers. Every call acquires (or reuses) the
// session token first.

func (c *Client) do(ctx context.Context, method, path string, body any, extra map[string]string) (*transport.Response, error) {
	token, err := c.AcquireToken(ctx)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{transport.HeaderAuthToken: token}
	for key, value := range extra {
		headers[key] = value
	}
	return c.transport.Do(ctx, method, c.url(path), body, headers)
}

func (c *Client) get(ctx context.Context, path string) (*transport.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, nil)
}

func (c *Client) getInto(ctx context.Context, path string, out any) (*transport.Response, error) {
	res, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := res.Decode(out); err != nil {
		return nil, fmt.Errorf("resource %s: %w", path, err)
	}
	return res, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*transport.Response, error) {
	return c.do(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) patch(ctx context.Context, path string, body any, etag string) (*transport.Response, error) {
	var headers map[string]string
	if etag != "" {
		headers = map[string]string{transport.HeaderIfMatch: etag}
	}
	return c.do(ctx, http.MethodPatch, path, body, headers)
}

func (c *Client) delete(ctx context.Context, path string) (*transport.Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Systems enumerates the ids of all manageable systems.
func (c *Client) Systems(ctx context.Context) ([]string, error) {
	root, err := c.serviceRoot(ctx)
	if err != nil {
		return nil, err
	}
	if root.Systems.ODataID == "" {
		return nil, &ConfigurationError{Resource: serviceRootPath, Missing: "Systems"}
	}

	var collection collectionDoc
	if _, err := c.getInto(ctx, root.Systems.ODataID, &collection); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(collection.Members))
	for _, member := range collection.Members {
		ids = append(ids, lastPathSegment(member.ODataID))
	}
	return ids, nil
}

func lastPathSegment(ref string) string {
	ref = strings.TrimSuffix(ref, "/")
	if idx := strings.LastIndex(ref, "/"); idx >= 0 {
		return ref[idx+1:]
	}
	return ref
}

// System returns the system record for id, from cache unless refresh is
// requested. The response etag is captured for conditional writes.
func (c *Client) System(ctx context.Context, id string, refresh bool) (*SystemRecord, error) {
	return c.cache.system(id, refresh, func() (*SystemRecord, error) {
		root, err := c.serviceRoot(ctx)
		if err != nil {
			return nil, err
		}

		path := root.Systems.ODataID
		if path == "" {
			return nil, &ConfigurationError{Resource: serviceRootPath, Missing: "Systems"}
		}
		path = strings.TrimSuffix(path, "/") + "/" + id

		system := &SystemRecord{}
		res, err := c.getInto(ctx, path, system)
		if err != nil {
			return nil, err
		}
		if system.ODataID == "" {
			system.ODataID = path
		}
		system.etag = res.ETag()
		return system, nil
	})
}

// Manager returns the BMC manager record linked from system id. One
// manager per system is assumed.
func (c *Client) Manager(ctx context.Context, systemID string, refresh bool) (*ManagerRecord, error) {
	return c.cache.manager(systemID, refresh, func() (*ManagerRecord, error) {
		system, err := c.System(ctx, systemID, refresh)
		if err != nil {
			return nil, err
		}
		if len(system.Links.ManagedBy) == 0 {
			return nil, &ConfigurationError{Resource: system.ODataID, Missing: "Links.ManagedBy"}
		}

		manager := &ManagerRecord{}
		if _, err := c.getInto(ctx, system.Links.ManagedBy[0].ODataID, manager); err != nil {
			return nil, err
		}
		if manager.ODataID == "" {
			manager.ODataID = system.Links.ManagedBy[0].ODataID
		}
		return manager, nil
	})
}

// Chassis returns the enclosure record linked from system id.
func (c *Client) Chassis(ctx context.Context, systemID string, refresh bool) (*ChassisRecord, error) {
	return c.cache.chassisRecord(systemID, refresh, func() (*ChassisRecord, error) {
		system, err := c.System(ctx, systemID, refresh)
		if err != nil {
			return nil, err
		}
		if len(system.Links.Chassis) == 0 {
			return nil, &ConfigurationError{Resource: system.ODataID, Missing: "Links.Chassis"}
		}

		chassis := &ChassisRecord{}
		if _, err := c.getInto(ctx, system.Links.Chassis[0].ODataID, chassis); err != nil {
			return nil, err
		}
		if chassis.ODataID == "" {
			chassis.ODataID = system.Links.Chassis[0].ODataID
		}
		return chassis, nil
	})
}
