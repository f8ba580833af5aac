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
	"fmt"
	"strings"

	"github.com/stmcginnis/gofish/redfish"

	"bmc-redfish-client/internal/models"
)

// dellDriver handles iDRAC-style BMCs. Boot-target configuration goes
// through the OEM configuration-import task instead of a plain Boot
// PATCH, and a stale pending-job queue must be cleared first or the
// import is rejected.
type dellDriver struct {
	defaultDriver
}

func (d *dellDriver) Name() string { return "dell" }

const (
	dellActionDeleteJobQueue = "DeleteJobQueue"
	dellActionImportConfig   = "ImportSystemConfiguration"

	// iDRAC names for one-shot boot devices in an imported
	// configuration.
	dellBootDeviceCD  = "VCD-DVD"
	dellBootDeviceFDD = "VFDD"
)

func (d *dellDriver) configureBootTarget(ctx context.Context, system *SystemRecord, target redfish.BootSourceOverrideTarget) error {
	manager, err := d.c.Manager(ctx, system.ID, false)
	if err != nil {
		return err
	}

	if err := d.clearJobQueue(ctx, manager); err != nil {
		return err
	}

	importTarget := findOemAction(manager.Actions.Oem, dellActionImportConfig)
	if importTarget == "" {
		// Older iDRAC firmware without the import action still accepts
		// the standard boot override write.
		return d.defaultDriver.configureBootTarget(ctx, system, target)
	}

	body := map[string]any{
		"ShareParameters": map[string]any{"Target": "ALL"},
		"ImportBuffer": fmt.Sprintf(
			`<SystemConfiguration><Component FQDD="iDRAC.Embedded.1">`+
				`<Attribute Name="ServerBoot.1#BootOnce">Enabled</Attribute>`+
				`<Attribute Name="ServerBoot.1#FirstBootDevice">%s</Attribute>`+
				`</Component></SystemConfiguration>`,
			dellBootDevice(target)),
	}

	res, err := d.c.post(ctx, importTarget, body)
	if err != nil {
		return err
	}

	taskURI := res.Header.Get("Location")
	if taskURI == "" {
		return &ConfigurationError{Resource: importTarget, Missing: "task location of configuration import"}
	}

	ok, err := d.c.AwaitTask(ctx, taskURI)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("configuration import task %s finished unsuccessfully", taskURI)
	}

	d.c.cache.invalidateSystem(system.ID)
	return nil
}

// clearJobQueue removes pending iDRAC jobs. A BMC not advertising the
// action has nothing to clear.
func (d *dellDriver) clearJobQueue(ctx context.Context, manager *ManagerRecord) error {
	target := findOemAction(manager.Actions.Oem, dellActionDeleteJobQueue)
	if target == "" {
		d.c.log.V(1).Info("no job queue cleanup action advertised", "manager", manager.ID)
		return nil
	}

	_, err := d.c.post(ctx, target, map[string]any{"JobID": "JID_CLEARALL"})
	if err != nil {
		return fmt.Errorf("clearing pending job queue: %w", err)
	}
	return nil
}

func dellBootDevice(target redfish.BootSourceOverrideTarget) string {
	switch target {
	case redfish.CdBootSourceOverrideTarget:
		return dellBootDeviceCD
	case redfish.FloppyBootSourceOverrideTarget, redfish.UsbBootSourceOverrideTarget:
		return dellBootDeviceFDD
	default:
		return string(target)
	}
}

func (d *dellDriver) kvmConsole(ctx context.Context, systemID string) (*models.KVMConsole, error) {
	manager, err := d.c.Manager(ctx, systemID, false)
	if err != nil {
		return nil, err
	}
	if !manager.GraphicalConsole.ServiceEnabled || len(manager.GraphicalConsole.ConnectTypesSupported) == 0 {
		return nil, &CapabilityError{Resource: manager.ODataID, Action: "GraphicalConsole"}
	}
	return &models.KVMConsole{
		URI:      d.c.Endpoint(),
		Protocol: manager.GraphicalConsole.ConnectTypesSupported[0],
	}, nil
}

// findOemAction locates a vendor action by name suffix, since the map
// keys carry versioned prefixes like "#OemManager.v1_0_0.".
func findOemAction(actions map[string]actionTarget, suffix string) string {
	for key, action := range actions {
		if strings.HasSuffix(key, suffix) && action.Target != "" {
			return action.Target
		}
	}
	return ""
}
