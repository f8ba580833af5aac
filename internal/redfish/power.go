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
	"time"

	"github.com/stmcginnis/gofish/redfish"
)

const powerPollInterval = 2 * time.Second

// Reset issues a power-state transition through the system's reset
// action. Success means the BMC accepted the action, not that the host
// reached the state; callers needing confirmation use WaitPowerState.
func (c *Client) Reset(ctx context.Context, systemID string, resetType redfish.ResetType) error {
	system, err := c.System(ctx, systemID, false)
	if err != nil {
		return err
	}

	target := system.Actions.Reset.Target
	if target == "" {
		return &CapabilityError{Resource: system.ODataID, Action: "#ComputerSystem.Reset"}
	}

	if _, err := c.post(ctx, target, map[string]any{"ResetType": resetType}); err != nil {
		return err
	}

	c.cache.invalidateSystem(systemID)
	c.log.V(1).Info("reset accepted", "system", systemID, "reset_type", resetType)
	return nil
}

// PowerOn powers the host on.
func (c *Client) PowerOn(ctx context.Context, systemID string) error {
	return c.Reset(ctx, systemID, redfish.OnResetType)
}

// GracefulShutdown asks the OS to shut down cleanly.
func (c *Client) GracefulShutdown(ctx context.Context, systemID string) error {
	return c.Reset(ctx, systemID, redfish.GracefulShutdownResetType)
}

// ForceOff cuts power without waiting for the OS.
func (c *Client) ForceOff(ctx context.Context, systemID string) error {
	return c.Reset(ctx, systemID, redfish.ForceOffResetType)
}

// ForceRestart power-cycles the host immediately.
func (c *Client) ForceRestart(ctx context.Context, systemID string) error {
	return c.Reset(ctx, systemID, redfish.ForceRestartResetType)
}

// PowerState reads the current power state, bypassing the cache when
// refresh is set.
func (c *Client) PowerState(ctx context.Context, systemID string, refresh bool) (redfish.PowerState, error) {
	system, err := c.System(ctx, systemID, refresh)
	if err != nil {
		return "", err
	}
	return system.PowerState, nil
}

// WaitPowerState polls until the host reports the wanted state or the
// timeout elapses.
func (c *Client) WaitPowerState(ctx context.Context, systemID string, want redfish.PowerState, timeout time.Duration) error {
	start := time.Now()
	for {
		state, err := c.PowerState(ctx, systemID, true)
		if err != nil {
			return err
		}
		if state == want {
			return nil
		}

		if time.Since(start) >= timeout {
			return &TimeoutError{Operation: "waiting for power state " + string(want) + " of system " + systemID, Limit: timeout}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(powerPollInterval):
		}
	}
}
