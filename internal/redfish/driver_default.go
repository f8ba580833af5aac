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

// defaultDriver speaks plain DMTF Redfish with no OEM extensions. It is
// also the embedded base of the vendor drivers.
type defaultDriver struct {
	c *Client
}

func (d *defaultDriver) Name() string { return "generic" }

func (d *defaultDriver) mountImage(ctx context.Context, media *vmediaDoc, image string) error {
	target := media.Actions.InsertMedia.Target
	if target == "" {
		return &CapabilityError{Resource: media.ODataID, Action: "#VirtualMedia.InsertMedia"}
	}

	body := map[string]any{
		"Image":          image,
		"Inserted":       true,
		"WriteProtected": true,
	}
	_, err := d.c.post(ctx, target, body)
	return err
}

func (d *defaultDriver) unmountImage(ctx context.Context, media *vmediaDoc) error {
	target := media.Actions.EjectMedia.Target
	if target == "" {
		return &CapabilityError{Resource: media.ODataID, Action: "#VirtualMedia.EjectMedia"}
	}

	_, err := d.c.post(ctx, target, map[string]any{})
	return err
}

func (d *defaultDriver) configureBootTarget(ctx context.Context, system *SystemRecord, target redfish.BootSourceOverrideTarget) error {
	return d.c.writeBootOverride(ctx, system, target, redfish.OnceBootSourceOverrideEnabled)
}

func (d *defaultDriver) kvmConsole(ctx context.Context, systemID string) (*models.KVMConsole, error) {
	return nil, &NotImplementedError{Driver: d.Name(), Capability: "kvm console"}
}
