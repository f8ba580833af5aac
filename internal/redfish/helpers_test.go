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
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bmc-redfish-client/internal/transport"
)

const (
	testToken     = "token-abc123"
	testSessionID = "17"

	pathRoot     = "/redfish/v1"
	pathSessions = "/redfish/v1/SessionService/Sessions"
	pathSystems  = "/redfish/v1/Systems"
	pathSystem   = "/redfish/v1/Systems/1"
	pathManager  = "/redfish/v1/Managers/1"
	pathChassis  = "/redfish/v1/Chassis/1"
)

// mockBMC is an httptest-backed BMC. GET requests are answered from the
// document map; POST/PATCH/DELETE are recorded and answered 204 unless
// a handler overrides the path.
type mockBMC struct {
	t      *testing.T
	server *httptest.Server

	mu        sync.Mutex
	documents map[string]any
	etags     map[string]string
	handlers  map[string]http.HandlerFunc
	delays    map[string]time.Duration
	requests  []recordedRequest

	loginCount atomic.Int32
	loginDelay time.Duration
}

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Header http.Header
}

func newMockBMC(t *testing.T) *mockBMC {
	t.Helper()
	bmc := &mockBMC{
		t:         t,
		documents: map[string]any{},
		etags:     map[string]string{},
		handlers:  map[string]http.HandlerFunc{},
		delays:    map[string]time.Duration{},
	}
	bmc.server = httptest.NewServer(http.HandlerFunc(bmc.handle))
	t.Cleanup(bmc.server.Close)
	return bmc
}

func (m *mockBMC) endpoint() string { return m.server.URL }

func (m *mockBMC) setDoc(path string, doc any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[path] = doc
}

func (m *mockBMC) setETag(path, etag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.etags[path] = etag
}

func (m *mockBMC) setHandler(path string, h http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = h
}

func (m *mockBMC) setDelay(path string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[path] = d
}

func (m *mockBMC) recorded(method string) []recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []recordedRequest
	for _, r := range m.requests {
		if method == "" || r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

func (m *mockBMC) handle(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)

	m.mu.Lock()
	m.requests = append(m.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(raw), Header: r.Header.Clone()})
	handler := m.handlers[r.URL.Path]
	delay := m.delays[r.URL.Path]
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if handler != nil {
		handler(w, r)
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == pathSessions:
		if m.loginDelay > 0 {
			time.Sleep(m.loginDelay)
		}
		m.loginCount.Add(1)
		w.Header().Set(transport.HeaderAuthToken, testToken)
		w.Header().Set(transport.HeaderContentType, "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"Id": testSessionID})
		return

	case r.Method == http.MethodGet:
		// Everything past the root requires the session token.
		if r.URL.Path != pathRoot && r.Header.Get(transport.HeaderAuthToken) != testToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		m.mu.Lock()
		doc, ok := m.documents[r.URL.Path]
		etag := m.etags[r.URL.Path]
		m.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if etag != "" {
			w.Header().Set("Etag", etag)
		}
		w.Header().Set(transport.HeaderContentType, "application/json")
		_ = json.NewEncoder(w).Encode(doc)
		return

	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// populateStandard loads a single-system BMC with the given OEM marker.
// An empty key omits the Oem object entirely.
func (m *mockBMC) populateStandard(oemKey string) {
	root := map[string]any{
		"RedfishVersion": "1.6.0",
		"Systems":        ref(pathSystems),
		"SessionService": ref("/redfish/v1/SessionService"),
		"Links":          map[string]any{"Sessions": ref(pathSessions)},
	}
	if oemKey != "" {
		root["Oem"] = map[string]any{oemKey: map[string]any{}}
	}
	m.setDoc(pathRoot, root)
	m.setDoc(pathSystems, members(pathSystem))
	m.setDoc(pathSystem, map[string]any{
		"@odata.id":  pathSystem,
		"Id":         "1",
		"PowerState": "On",
		"Boot": map[string]any{
			"BootSourceOverrideEnabled": "Disabled",
			"BootSourceOverrideTarget":  "None",
			"BootSourceOverrideMode":    "UEFI",
			"BootSourceOverrideTarget@Redfish.AllowableValues": []string{"None", "Pxe", "Cd", "Hdd", "Usb"},
		},
		"Processors":   ref(pathSystem + "/Processors"),
		"Memory":       ref(pathSystem + "/Memory"),
		"VirtualMedia": map[string]any{},
		"Links": map[string]any{
			"ManagedBy": []any{ref(pathManager)},
			"Chassis":   []any{ref(pathChassis)},
		},
		"Actions": map[string]any{
			"#ComputerSystem.Reset": map[string]any{
				"target": pathSystem + "/Actions/ComputerSystem.Reset",
				"ResetType@Redfish.AllowableValues": []string{"On", "ForceOff", "ForceRestart", "GracefulShutdown"},
			},
		},
	})
	m.setETag(pathSystem, `"etag-1"`)

	m.setDoc(pathManager, map[string]any{
		"@odata.id":    pathManager,
		"Id":           "1",
		"VirtualMedia": ref(pathManager + "/VirtualMedia"),
	})
	m.setDoc(pathChassis, map[string]any{
		"@odata.id":       pathChassis,
		"Id":              "1",
		"PCIeDevices":     ref(pathChassis + "/PCIeDevices"),
		"NetworkAdapters": ref(pathChassis + "/NetworkAdapters"),
	})
}

func ref(path string) map[string]any {
	return map[string]any{"@odata.id": path}
}

func members(paths ...string) map[string]any {
	refs := make([]any, 0, len(paths))
	for _, p := range paths {
		refs = append(refs, ref(p))
	}
	return map[string]any{"Members": refs}
}

func testClient(t *testing.T, bmc *mockBMC) *Client {
	t.Helper()
	client, err := Connect(context.Background(), bmc.endpoint(), "admin", "secret")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return client
}
