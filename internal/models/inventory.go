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

// Package models holds the vendor-neutral projections the client returns
// to callers. These are recomputed per call, never cached.
package models

import (
	"github.com/stmcginnis/gofish/common"
	"github.com/stmcginnis/gofish/redfish"
)

// CPU is the normalized view of one processor resource.
type CPU struct {
	ID           string        `json:"id"`
	Socket       string        `json:"socket"`
	Manufacturer string        `json:"manufacturer"`
	Model        string        `json:"model"`
	Cores        int           `json:"cores"`
	Threads      int           `json:"threads"`
	MaxSpeedMHz  int           `json:"max_speed_mhz"`
	Health       common.Health `json:"health"`
	State        common.State  `json:"state"`
}

// MemoryModule is the normalized view of one DIMM resource.
type MemoryModule struct {
	ID            string        `json:"id"`
	DeviceLocator string        `json:"device_locator"`
	Manufacturer  string        `json:"manufacturer"`
	PartNumber    string        `json:"part_number"`
	SerialNumber  string        `json:"serial_number"`
	CapacityMiB   int64         `json:"capacity_mib"`
	SpeedMHz      int           `json:"speed_mhz"`
	DeviceType    string        `json:"device_type"`
	Health        common.Health `json:"health"`
	State         common.State  `json:"state"`
}

// PCIeDevice is the normalized view of one PCIe device resource.
type PCIeDevice struct {
	ID              string        `json:"id"`
	Manufacturer    string        `json:"manufacturer"`
	Model           string        `json:"model"`
	DeviceType      string        `json:"device_type"`
	FirmwareVersion string        `json:"firmware_version"`
	Health          common.Health `json:"health"`
	State           common.State  `json:"state"`
}

// NetworkPort is one physical port of a network adapter.
type NetworkPort struct {
	ID           string   `json:"id"`
	MACAddresses []string `json:"mac_addresses"`
	LinkStatus   string   `json:"link_status"`
	SpeedMbps    int      `json:"speed_mbps"`
	PhysicalPort string   `json:"physical_port"`
}

// NetworkCard is the normalized view of one network adapter resource
// together with its ports.
type NetworkCard struct {
	ID           string        `json:"id"`
	Manufacturer string        `json:"manufacturer"`
	Model        string        `json:"model"`
	PartNumber   string        `json:"part_number"`
	Ports        []NetworkPort `json:"ports"`
	Health       common.Health `json:"health"`
	State        common.State  `json:"state"`
}

// Inventory bundles all collected kinds for one system.
type Inventory struct {
	SystemID     string         `json:"system_id"`
	CPUs         []CPU          `json:"cpus,omitempty"`
	Memory       []MemoryModule `json:"memory,omitempty"`
	PCIeDevices  []PCIeDevice   `json:"pcie_devices,omitempty"`
	NetworkCards []NetworkCard  `json:"network_cards,omitempty"`
}

// VirtualMediaDevice describes one remote media slot.
type VirtualMediaDevice struct {
	ID         string                     `json:"id"`
	ODataID    string                     `json:"odata_id"`
	Name       string                     `json:"name"`
	MediaTypes []redfish.VirtualMediaType `json:"media_types"`
	Inserted   bool                       `json:"inserted"`
	Image      string                     `json:"image"`
}

// KVMConsole carries vendor remote-console coordinates.
type KVMConsole struct {
	URI      string `json:"uri"`
	Protocol string `json:"protocol"`
}
