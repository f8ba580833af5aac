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

// Package transport implements the raw HTTP primitive every Redfish call
// goes through. BMC controllers ship self-signed certificates, so the
// default client skips certificate verification.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

const (
	HeaderAuthToken   = "X-Auth-Token"
	HeaderContentType = "Content-Type"
	HeaderIfMatch     = "If-Match"
	HeaderETag        = "Etag"

	contentTypeJSON = "application/json"
)

// Response carries the status, headers and raw body of one BMC response.
// A 204 or zero-length body is represented as an empty Body.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the response body into out. An empty body leaves out
// untouched, which callers treat as missing data rather than an error.
func (r *Response) Decode(out any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// ETag returns the concurrency token delivered with the response, if any.
func (r *Response) ETag() string {
	return r.Header.Get(HeaderETag)
}

// Doer performs a single HTTP exchange against a BMC.
type Doer interface {
	Do(ctx context.Context, method, url string, body any, headers map[string]string) (*Response, error)
}

// redfishError mirrors the extended-info error object some BMCs return
// with a 200 status.
type redfishError struct {
	Error *struct {
		Code         string `json:"code"`
		Message      string `json:"message"`
		ExtendedInfo []struct {
			MessageID string `json:"MessageId"`
			Message   string `json:"Message"`
		} `json:"@Message.ExtendedInfo"`
	} `json:"error"`
}

// HTTPTransport is the production Doer. It owns the TLS-insecure client
// and normalizes Redfish-level error payloads.
type HTTPTransport struct {
	client *http.Client
	log    logr.Logger

	// Message id suffixes that mark a vendor "error" payload as a benign
	// success response (e.g. iDRAC reporting no pending configuration).
	benignMessageIDs []string
}

// Option configures an HTTPTransport.
type Option func(*HTTPTransport)

// WithLogger installs the logger used for request tracing.
func WithLogger(log logr.Logger) Option {
	return func(t *HTTPTransport) { t.log = log }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTPTransport) { t.client = c }
}

// WithBenignMessageIDs replaces the default benign success marker list.
func WithBenignMessageIDs(ids []string) Option {
	return func(t *HTTPTransport) { t.benignMessageIDs = ids }
}

// New returns an HTTPTransport with certificate verification disabled.
func New(opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		client: &http.Client{
			Timeout: 90 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		log:              logr.Discard(),
		benignMessageIDs: []string{"Success", "SYS413"},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Do performs one request. The body, when non-nil, is marshalled as JSON.
// Transport failures and HTTP statuses >= 400 are returned as *Error;
// a 200 carrying a Redfish error object is returned as *ProtocolError
// unless its sole message id is a benign success marker.
func (t *HTTPTransport) Do(ctx context.Context, method, url string, body any, headers map[string]string) (*Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshalling %s %s request body: %w", method, url, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("building %s %s request: %w", method, url, err)
	}

	req.Header.Set(HeaderContentType, contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	res, err := t.client.Do(req)
	if err != nil {
		return nil, &Error{Method: method, URL: url, Cause: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &Error{Method: method, URL: url, Status: res.StatusCode, Cause: err}
	}

	t.log.V(1).Info("redfish request", "method", method, "url", url, "status", res.StatusCode)

	if res.StatusCode >= http.StatusBadRequest {
		return nil, &Error{Method: method, URL: url, Status: res.StatusCode, Body: string(raw)}
	}

	response := &Response{Status: res.StatusCode, Header: res.Header}
	if res.StatusCode == http.StatusNoContent || len(raw) == 0 {
		return response, nil
	}

	if perr := t.checkRedfishError(method, url, raw); perr != nil {
		return nil, perr
	}
	if isBenignBody(raw, t.benignMessageIDs) {
		// Vendor success marker wrapped in an error object, treat as an
		// empty success body.
		return response, nil
	}

	response.Body = raw
	return response, nil
}

func (t *HTTPTransport) checkRedfishError(method, url string, raw []byte) error {
	var payload redfishError
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Error == nil {
		return nil
	}
	if len(payload.Error.ExtendedInfo) == 0 {
		return nil
	}
	if isBenignBody(raw, t.benignMessageIDs) {
		return nil
	}

	first := payload.Error.ExtendedInfo[0]
	return &ProtocolError{
		Method:    method,
		URL:       url,
		MessageID: first.MessageID,
		Message:   first.Message,
	}
}

func isBenignBody(raw []byte, benign []string) bool {
	var payload redfishError
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Error == nil {
		return false
	}
	if len(payload.Error.ExtendedInfo) != 1 {
		return false
	}
	id := payload.Error.ExtendedInfo[0].MessageID
	for _, marker := range benign {
		if strings.HasSuffix(id, marker) {
			return true
		}
	}
	return false
}
