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

	"github.com/stmcginnis/gofish/common"
	"golang.org/x/sync/errgroup"

	"bmc-redfish-client/internal/models"
)

// Inventory collection fans out one request per collection member with
// no concurrency cap; callers with rate-sensitive BMCs shard the member
// list themselves. Output order always matches member order. A member
// failing its required-field check is dropped silently; a member fetch
// failing at the transport or parse level aborts the whole kind.

// fanOut fetches every ref concurrently and keeps results position
// stable. project returns keep=false to drop a member from the output.
func fanOut[T any](ctx context.Context, refs []odataRef, project func(ctx context.Context, ref string) (T, bool, error)) ([]T, error) {
	results := make([]T, len(refs))
	keep := make([]bool, len(refs))

	group, ctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		i, ref := i, ref
		group.Go(func() error {
			item, ok, err := project(ctx, ref.ODataID)
			if err != nil {
				return err
			}
			results[i] = item
			keep[i] = ok
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(refs))
	for i := range results {
		if keep[i] {
			out = append(out, results[i])
		}
	}
	return out, nil
}

// members resolves a collection document into its member refs.
func (c *Client) members(ctx context.Context, collectionRef string) ([]odataRef, error) {
	var collection collectionDoc
	if _, err := c.getInto(ctx, collectionRef, &collection); err != nil {
		return nil, err
	}
	return collection.Members, nil
}

type processorDoc struct {
	ID            string        `json:"Id"`
	Socket        string        `json:"Socket"`
	Manufacturer  string        `json:"Manufacturer"`
	Model         string        `json:"Model"`
	ProcessorType string        `json:"ProcessorType"`
	TotalCores    int           `json:"TotalCores"`
	TotalThreads  int           `json:"TotalThreads"`
	MaxSpeedMHz   int           `json:"MaxSpeedMHz"`
	Status        common.Status `json:"Status"`
}

// CPUs returns the system's CPU-type processors. GPUs, FPGAs and other
// accelerators published in the same collection are dropped.
func (c *Client) CPUs(ctx context.Context, systemID string) ([]models.CPU, error) {
	system, err := c.System(ctx, systemID, false)
	if err != nil {
		return nil, err
	}
	if system.Processors.ODataID == "" {
		return nil, &ConfigurationError{Resource: system.ODataID, Missing: "Processors"}
	}

	refs, err := c.members(ctx, system.Processors.ODataID)
	if err != nil {
		return nil, err
	}

	return fanOut(ctx, refs, func(ctx context.Context, ref string) (models.CPU, bool, error) {
		var doc processorDoc
		if _, err := c.getInto(ctx, ref, &doc); err != nil {
			return models.CPU{}, false, err
		}
		if doc.ProcessorType != "CPU" {
			return models.CPU{}, false, nil
		}
		return models.CPU{
			ID:           doc.ID,
			Socket:       doc.Socket,
			Manufacturer: doc.Manufacturer,
			Model:        doc.Model,
			Cores:        doc.TotalCores,
			Threads:      doc.TotalThreads,
			MaxSpeedMHz:  doc.MaxSpeedMHz,
			Health:       doc.Status.Health,
			State:        doc.Status.State,
		}, true, nil
	})
}

type memoryDoc struct {
	ID                string        `json:"Id"`
	DeviceLocator     string        `json:"DeviceLocator"`
	Manufacturer      string        `json:"Manufacturer"`
	PartNumber        string        `json:"PartNumber"`
	SerialNumber      string        `json:"SerialNumber"`
	CapacityMiB       int64         `json:"CapacityMiB"`
	OperatingSpeedMhz int           `json:"OperatingSpeedMhz"`
	MemoryDeviceType  string        `json:"MemoryDeviceType"`
	Status            common.Status `json:"Status"`
}

// MemoryModules returns the populated DIMM slots. Vendors publish empty
// slots as absent members; those are dropped.
func (c *Client) MemoryModules(ctx context.Context, systemID string) ([]models.MemoryModule, error) {
	system, err := c.System(ctx, systemID, false)
	if err != nil {
		return nil, err
	}
	if system.Memory.ODataID == "" {
		return nil, &ConfigurationError{Resource: system.ODataID, Missing: "Memory"}
	}

	refs, err := c.members(ctx, system.Memory.ODataID)
	if err != nil {
		return nil, err
	}

	return fanOut(ctx, refs, func(ctx context.Context, ref string) (models.MemoryModule, bool, error) {
		var doc memoryDoc
		if _, err := c.getInto(ctx, ref, &doc); err != nil {
			return models.MemoryModule{}, false, err
		}
		if doc.Status.State == common.AbsentState || doc.CapacityMiB == 0 {
			return models.MemoryModule{}, false, nil
		}
		return models.MemoryModule{
			ID:            doc.ID,
			DeviceLocator: doc.DeviceLocator,
			Manufacturer:  doc.Manufacturer,
			PartNumber:    doc.PartNumber,
			SerialNumber:  doc.SerialNumber,
			CapacityMiB:   doc.CapacityMiB,
			SpeedMHz:      doc.OperatingSpeedMhz,
			DeviceType:    doc.MemoryDeviceType,
			Health:        doc.Status.Health,
			State:         doc.Status.State,
		}, true, nil
	})
}

type pcieDoc struct {
	ID              string        `json:"Id"`
	Manufacturer    string        `json:"Manufacturer"`
	Model           string        `json:"Model"`
	DeviceType      string        `json:"DeviceType"`
	FirmwareVersion string        `json:"FirmwareVersion"`
	Status          common.Status `json:"Status"`
}

// PCIeDevices returns the PCIe devices of the system. The System's own
// device list is preferred; when it is empty the Chassis collection is
// used instead. Vendors disagree on where these links live, nothing
// deeper than that.
func (c *Client) PCIeDevices(ctx context.Context, systemID string) ([]models.PCIeDevice, error) {
	system, err := c.System(ctx, systemID, false)
	if err != nil {
		return nil, err
	}

	refs := system.PCIeDevices
	if len(refs) == 0 {
		chassis, err := c.Chassis(ctx, systemID, false)
		if err != nil {
			return nil, err
		}
		if chassis.PCIeDevices.ODataID == "" {
			return nil, &ConfigurationError{Resource: chassis.ODataID, Missing: "PCIeDevices"}
		}
		refs, err = c.members(ctx, chassis.PCIeDevices.ODataID)
		if err != nil {
			return nil, err
		}
	}

	return fanOut(ctx, refs, func(ctx context.Context, ref string) (models.PCIeDevice, bool, error) {
		var doc pcieDoc
		if _, err := c.getInto(ctx, ref, &doc); err != nil {
			return models.PCIeDevice{}, false, err
		}
		if doc.Status.State == common.AbsentState {
			return models.PCIeDevice{}, false, nil
		}
		return models.PCIeDevice{
			ID:              doc.ID,
			Manufacturer:    doc.Manufacturer,
			Model:           doc.Model,
			DeviceType:      doc.DeviceType,
			FirmwareVersion: doc.FirmwareVersion,
			Health:          doc.Status.Health,
			State:           doc.Status.State,
		}, true, nil
	})
}

type adapterDoc struct {
	ID           string        `json:"Id"`
	Manufacturer string        `json:"Manufacturer"`
	Model        string        `json:"Model"`
	PartNumber   string        `json:"PartNumber"`
	NetworkPorts odataRef      `json:"NetworkPorts"`
	Status       common.Status `json:"Status"`

	Controllers []struct {
		Links struct {
			NetworkPorts []odataRef `json:"NetworkPorts"`
		} `json:"Links"`
	} `json:"Controllers"`
}

type portDoc struct {
	ID                         string   `json:"Id"`
	PhysicalPortNumber         string   `json:"PhysicalPortNumber"`
	LinkStatus                 string   `json:"LinkStatus"`
	CurrentLinkSpeedMbps       int      `json:"CurrentLinkSpeedMbps"`
	AssociatedNetworkAddresses []string `json:"AssociatedNetworkAddresses"`
}

// NetworkCards returns the chassis network adapters with their ports.
// Adapters are always resolved through the Chassis.
func (c *Client) NetworkCards(ctx context.Context, systemID string) ([]models.NetworkCard, error) {
	chassis, err := c.Chassis(ctx, systemID, false)
	if err != nil {
		return nil, err
	}
	if chassis.NetworkAdapters.ODataID == "" {
		return nil, &ConfigurationError{Resource: chassis.ODataID, Missing: "NetworkAdapters"}
	}

	refs, err := c.members(ctx, chassis.NetworkAdapters.ODataID)
	if err != nil {
		return nil, err
	}

	return fanOut(ctx, refs, func(ctx context.Context, ref string) (models.NetworkCard, bool, error) {
		var doc adapterDoc
		if _, err := c.getInto(ctx, ref, &doc); err != nil {
			return models.NetworkCard{}, false, err
		}

		ports, err := c.networkPorts(ctx, &doc)
		if err != nil {
			return models.NetworkCard{}, false, err
		}

		return models.NetworkCard{
			ID:           doc.ID,
			Manufacturer: doc.Manufacturer,
			Model:        doc.Model,
			PartNumber:   doc.PartNumber,
			Ports:        ports,
			Health:       doc.Status.Health,
			State:        doc.Status.State,
		}, true, nil
	})
}

func (c *Client) networkPorts(ctx context.Context, adapter *adapterDoc) ([]models.NetworkPort, error) {
	var refs []odataRef
	switch {
	case adapter.NetworkPorts.ODataID != "":
		var err error
		refs, err = c.members(ctx, adapter.NetworkPorts.ODataID)
		if err != nil {
			return nil, err
		}
	case len(adapter.Controllers) > 0:
		refs = adapter.Controllers[0].Links.NetworkPorts
	}

	return fanOut(ctx, refs, func(ctx context.Context, ref string) (models.NetworkPort, bool, error) {
		var doc portDoc
		if _, err := c.getInto(ctx, ref, &doc); err != nil {
			return models.NetworkPort{}, false, err
		}
		return models.NetworkPort{
			ID:           doc.ID,
			MACAddresses: doc.AssociatedNetworkAddresses,
			LinkStatus:   doc.LinkStatus,
			SpeedMbps:    doc.CurrentLinkSpeedMbps,
			PhysicalPort: doc.PhysicalPortNumber,
		}, true, nil
	})
}

// Inventory collects every kind for one system. Kinds whose owning
// collection the vendor does not publish are skipped, any other failure
// aborts.
func (c *Client) Inventory(ctx context.Context, systemID string) (*models.Inventory, error) {
	inventory := &models.Inventory{SystemID: systemID}

	var confErr *ConfigurationError

	cpus, err := c.CPUs(ctx, systemID)
	if err != nil && !asConfigurationError(err, &confErr) {
		return nil, err
	}
	inventory.CPUs = cpus

	memory, err := c.MemoryModules(ctx, systemID)
	if err != nil && !asConfigurationError(err, &confErr) {
		return nil, err
	}
	inventory.Memory = memory

	pcie, err := c.PCIeDevices(ctx, systemID)
	if err != nil && !asConfigurationError(err, &confErr) {
		return nil, err
	}
	inventory.PCIeDevices = pcie

	cards, err := c.NetworkCards(ctx, systemID)
	if err != nil && !asConfigurationError(err, &confErr) {
		return nil, err
	}
	inventory.NetworkCards = cards

	return inventory, nil
}
