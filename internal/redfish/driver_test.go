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
	"errors"
	"testing"
)

func TestDispatchVendorMatrix(t *testing.T) {
	cases := []struct {
		name       string
		oemKey     string
		wantDriver string
	}{
		{name: "dell marker", oemKey: "Dell", wantDriver: "dell"},
		{name: "huawei marker", oemKey: "Huawei", wantDriver: "huawei"},
		{name: "unknown marker falls back", oemKey: "Supermicro", wantDriver: "generic"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bmc := newMockBMC(t)
			bmc.populateStandard(tc.oemKey)

			client := testClient(t, bmc)
			if got := client.driver.Name(); got != tc.wantDriver {
				t.Fatalf("OEM key %q dispatched to %q, want %q", tc.oemKey, got, tc.wantDriver)
			}
		})
	}
}

func TestDispatchMissingOEM(t *testing.T) {
	bmc := newMockBMC(t)
	bmc.populateStandard("")

	_, err := Connect(context.Background(), bmc.endpoint(), "admin", "secret")
	var vendorErr *UnsupportedVendorError
	if !errors.As(err, &vendorErr) {
		t.Fatalf("expected *UnsupportedVendorError, got %v", err)
	}
}

func TestDispatchEmptyOEMObjectFallsBack(t *testing.T) {
	bmc := newMockBMC(t)
	bmc.populateStandard("")
	doc := bmc.documents[pathRoot].(map[string]any)
	doc["Oem"] = map[string]any{}
	bmc.setDoc(pathRoot, doc)

	client := testClient(t, bmc)
	if got := client.driver.Name(); got != "generic" {
		t.Fatalf("an empty Oem object must select the default driver, got %q", got)
	}
}

func TestDispatchPrefersDellOverHuawei(t *testing.T) {
	bmc := newMockBMC(t)
	bmc.populateStandard("Huawei")
	doc := bmc.documents[pathRoot].(map[string]any)
	doc["Oem"] = map[string]any{"Huawei": map[string]any{}, "Dell": map[string]any{}}
	bmc.setDoc(pathRoot, doc)

	client := testClient(t, bmc)
	if got := client.driver.Name(); got != "dell" {
		t.Fatalf("expected priority dispatch to dell, got %q", got)
	}
}

func TestDefaultDriverKVMConsoleNotImplemented(t *testing.T) {
	bmc := newMockBMC(t)
	bmc.populateStandard("Supermicro")

	client := testClient(t, bmc)

	_, err := client.KVMConsole(context.Background(), "1")
	var notImpl *NotImplementedError
	if !errors.As(err, &notImpl) {
		t.Fatalf("expected *NotImplementedError, got %v", err)
	}
}
