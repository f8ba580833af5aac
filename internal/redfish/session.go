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

package redfish

import (
	"context"
	"net/http"
	"strings"

	"bmc-redfish-client/internal/transport"
)

// sessionState is the at-most-one live session of a client instance.
type sessionState struct {
	uri   string
	token string
	id    string
}

func (s sessionState) active() bool { return s.token != "" }

// resolveSessionEndpoint extracts the session-collection reference from
// the unauthenticated service root.
func (c *Client) resolveSessionEndpoint(ctx context.Context) (string, error) {
	c.mu.Lock()
	uri := c.session.uri
	c.mu.Unlock()
	if uri != "" {
		return uri, nil
	}

	root, err := c.serviceRoot(ctx)
	if err != nil {
		return "", err
	}

	switch {
	case root.Links.Sessions.ODataID != "":
		uri = root.Links.Sessions.ODataID
	case root.SessionService.ODataID != "":
		uri = strings.TrimSuffix(root.SessionService.ODataID, "/") + "/Sessions"
	default:
		return "", &ConfigurationError{Resource: serviceRootPath, Missing: "session collection reference"}
	}

	c.mu.Lock()
	c.session.uri = uri
	c.mu.Unlock()
	return uri, nil
}

// AcquireToken returns the session token, logging in on first use.
// Concurrent first calls coalesce onto a single in-flight login so the
// BMC sees exactly one session per client instance.
func (c *Client) AcquireToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.session.token
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}

	result, err, _ := c.loginGroup.Do("login", func() (any, error) {
		// Re-check under the group: a waiter may arrive after the
		// winning call already stored the session.
		c.mu.Lock()
		token := c.session.token
		c.mu.Unlock()
		if token != "" {
			return token, nil
		}
		return c.login(ctx)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) login(ctx context.Context) (string, error) {
	if c.username == "" || c.password == "" {
		return "", &AuthError{Endpoint: c.endpoint, Reason: "username or password not set"}
	}

	uri, err := c.resolveSessionEndpoint(ctx)
	if err != nil {
		return "", err
	}

	body := map[string]string{"UserName": c.username, "Password": c.password}
	res, err := c.transport.Do(ctx, http.MethodPost, c.url(uri), body, nil)
	if err != nil {
		return "", err
	}

	token := res.Header.Get(transport.HeaderAuthToken)
	if token == "" {
		return "", &AuthError{Endpoint: c.endpoint, Reason: "login response carries no " + transport.HeaderAuthToken + " header"}
	}

	var session struct {
		ID string `json:"Id"`
	}
	if err := res.Decode(&session); err != nil {
		return "", err
	}
	if session.ID == "" {
		return "", &AuthError{Endpoint: c.endpoint, Reason: "login response carries no session id"}
	}

	c.mu.Lock()
	c.session.token = token
	c.session.id = session.ID
	c.mu.Unlock()

	c.log.V(1).Info("session established", "session", session.ID)
	return token, nil
}

// Release deletes the remote session and clears the local token and id,
// regardless of the remote outcome.
func (c *Client) Release(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if !session.active() {
		return &StateError{Operation: "release session", Reason: "no active session"}
	}

	path := strings.TrimSuffix(session.uri, "/") + "/" + session.id
	_, err := c.transport.Do(ctx, http.MethodDelete, c.url(path), nil,
		map[string]string{transport.HeaderAuthToken: session.token})

	c.mu.Lock()
	c.session.token = ""
	c.session.id = ""
	c.mu.Unlock()

	if err != nil {
		return err
	}
	c.log.V(1).Info("session released", "session", session.id)
	return nil
}

// IsReachable reports whether a session can be established. Any failure
// maps to false.
func (c *Client) IsReachable(ctx context.Context) bool {
	_, err := c.AcquireToken(ctx)
	return err == nil
}
