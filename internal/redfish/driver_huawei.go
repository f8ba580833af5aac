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
)

// huaweiDriver handles iBMC-style BMCs. Virtual media is driven through
// the OEM VmmControl action, and boot-override writes are rejected
// without a fresh If-Match token.
type huaweiDriver struct {
	defaultDriver
}

func (d *huaweiDriver) Name() string { return "huawei" }

const huaweiActionVmmControl = "VmmControl"

func (d *huaweiDriver) mountImage(ctx context.Context, media *vmediaDoc, image string) error {
	target := findOemAction(media.Actions.Oem, huaweiActionVmmControl)
	if target == "" {
		return d.defaultDriver.mountImage(ctx, media, image)
	}

	body := map[string]any{
		"VmmControlType": "Connect",
		"Image":          image,
	}
	_, err := d.c.post(ctx, target, body)
	return err
}

func (d *huaweiDriver) unmountImage(ctx context.Context, media *vmediaDoc) error {
	target := findOemAction(media.Actions.Oem, huaweiActionVmmControl)
	if target == "" {
		return d.defaultDriver.unmountImage(ctx, media)
	}

	_, err := d.c.post(ctx, target, map[string]any{"VmmControlType": "Disconnect"})
	return err
}

func (d *huaweiDriver) configureBootTarget(ctx context.Context, system *SystemRecord, target redfish.BootSourceOverrideTarget) error {
	// iBMC enforces conditional writes on Boot. Refetch when the cached
	// record was captured without a token.
	if system.etag == "" {
		fresh, err := d.c.System(ctx, system.ID, true)
		if err != nil {
			return err
		}
		system = fresh
	}
	return d.c.writeBootOverride(ctx, system, target, redfish.OnceBootSourceOverrideEnabled)
}
