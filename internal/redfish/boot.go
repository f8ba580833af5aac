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

// SetNextBootDevice points the next boot of system id at target. The
// target is checked against the advertised allow-list before any write;
// a rejected target issues no request. The write carries the system's
// last-observed etag as If-Match when one was captured.
func (c *Client) SetNextBootDevice(ctx context.Context, systemID string, target redfish.BootSourceOverrideTarget, once bool) error {
	system, err := c.System(ctx, systemID, false)
	if err != nil {
		return err
	}

	enabled := redfish.ContinuousBootSourceOverrideEnabled
	if once {
		enabled = redfish.OnceBootSourceOverrideEnabled
	}
	return c.writeBootOverride(ctx, system, target, enabled)
}

func (c *Client) writeBootOverride(ctx context.Context, system *SystemRecord, target redfish.BootSourceOverrideTarget, enabled redfish.BootSourceOverrideEnabled) error {
	if err := checkBootTargetAllowed(system, target); err != nil {
		return err
	}

	boot := map[string]any{
		"BootSourceOverrideEnabled": enabled,
		"BootSourceOverrideTarget":  target,
	}
	// A BMC not reporting a boot mode does not accept one back either.
	if system.Boot.BootSourceOverrideMode != "" {
		boot["BootSourceOverrideMode"] = system.Boot.BootSourceOverrideMode
	}

	if _, err := c.patch(ctx, system.ODataID, map[string]any{"Boot": boot}, system.etag); err != nil {
		return err
	}

	// The cached record now disagrees with the BMC on Boot and etag.
	c.cache.invalidateSystem(system.ID)
	c.log.V(1).Info("boot override written", "system", system.ID, "target", target, "enabled", enabled)
	return nil
}

// checkBootTargetAllowed validates target against the system's
// advertised allowable values. An absent allow-list is missing data and
// accepts anything.
func checkBootTargetAllowed(system *SystemRecord, target redfish.BootSourceOverrideTarget) error {
	allowed := system.Boot.AllowableValues
	if len(allowed) == 0 {
		return nil
	}
	for _, value := range allowed {
		if value == target {
			return nil
		}
	}
	return &ValidationError{
		Field:  "boot target",
		Value:  string(target),
		Reason: "not among the boot targets advertised by system " + system.ID,
	}
}
