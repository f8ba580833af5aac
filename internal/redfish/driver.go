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

	"github.com/stmcginnis/gofish/redfish"

	"bmc-redfish-client/internal/models"
)

// Driver covers the steps that genuinely diverge between BMC vendors:
// media mount/unmount payloads, boot-target configuration and remote
// console access. Everything else is handled by the base orchestration.
type Driver interface {
	Name() string

	mountImage(ctx context.Context, media *vmediaDoc, image string) error
	unmountImage(ctx context.Context, media *vmediaDoc) error
	configureBootTarget(ctx context.Context, system *SystemRecord, target redfish.BootSourceOverrideTarget) error
	kvmConsole(ctx context.Context, systemID string) (*models.KVMConsole, error)
}

// Vendor OEM marker keys, checked in this order. The first match wins.
var vendorPriority = []string{oemKeyDell, oemKeyHuawei}

const (
	oemKeyDell   = "Dell"
	oemKeyHuawei = "Huawei"
)

// dispatch picks the driver for the OEM marker found in the service
// root. A service root without any OEM object cannot be classified. An
// OEM object that is present but carries no known key (or no key at
// all) falls back to the default driver: untested vendors mostly speak
// standard Redfish, so degraded operation beats a hard failure.
func dispatch(c *Client, root *serviceRoot) (Driver, error) {
	if root.Oem == nil {
		return nil, &UnsupportedVendorError{Endpoint: c.endpoint}
	}

	for _, key := range vendorPriority {
		if _, ok := root.Oem[key]; !ok {
			continue
		}
		switch key {
		case oemKeyDell:
			return &dellDriver{defaultDriver{c: c}}, nil
		case oemKeyHuawei:
			return &huaweiDriver{defaultDriver{c: c}}, nil
		}
	}

	known := make([]string, 0, len(root.Oem))
	for key := range root.Oem {
		known = append(known, key)
	}
	c.log.Info("unrecognized OEM marker, falling back to default driver", "oem_keys", known)
	return &defaultDriver{c: c}, nil
}
