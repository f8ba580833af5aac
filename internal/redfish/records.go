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
	"encoding/json"

	"github.com/stmcginnis/gofish/common"
	"github.com/stmcginnis/gofish/redfish"
)

// Resource documents are read as raw JSON projections. Only the fields
// the orchestration needs are declared; everything else stays opaque.
// A field absent in a vendor's payload decodes to its zero value and is
// treated as missing data, not a protocol violation.

type odataRef struct {
	ODataID string `json:"@odata.id"`
}

type collectionDoc struct {
	Members []odataRef `json:"Members"`
}

type actionTarget struct {
	Target string `json:"target"`
}

type serviceRoot struct {
	ODataID        string   `json:"@odata.id"`
	RedfishVersion string   `json:"RedfishVersion"`
	Systems        odataRef `json:"Systems"`
	Managers       odataRef `json:"Managers"`
	Chassis        odataRef `json:"Chassis"`
	SessionService odataRef `json:"SessionService"`
	Links          struct {
		Sessions odataRef `json:"Sessions"`
	} `json:"Links"`
	Oem map[string]json.RawMessage `json:"Oem"`
}

// BootSettings is the boot override block of a computer system.
type BootSettings struct {
	BootSourceOverrideEnabled redfish.BootSourceOverrideEnabled  `json:"BootSourceOverrideEnabled,omitempty"`
	BootSourceOverrideTarget  redfish.BootSourceOverrideTarget   `json:"BootSourceOverrideTarget,omitempty"`
	BootSourceOverrideMode    redfish.BootSourceOverrideMode     `json:"BootSourceOverrideMode,omitempty"`
	AllowableValues           []redfish.BootSourceOverrideTarget `json:"BootSourceOverrideTarget@Redfish.AllowableValues,omitempty"`
}

// SystemRecord is one manageable compute system. The etag captured on
// fetch guards later conditional writes of the boot configuration.
type SystemRecord struct {
	ODataID      string             `json:"@odata.id"`
	ID           string             `json:"Id"`
	Name         string             `json:"Name"`
	Manufacturer string             `json:"Manufacturer"`
	Model        string             `json:"Model"`
	SerialNumber string             `json:"SerialNumber"`
	PowerState   redfish.PowerState `json:"PowerState"`
	Boot         BootSettings       `json:"Boot"`
	Status       common.Status      `json:"Status"`

	Processors   odataRef   `json:"Processors"`
	Memory       odataRef   `json:"Memory"`
	PCIeDevices  []odataRef `json:"PCIeDevices"`
	VirtualMedia odataRef   `json:"VirtualMedia"`

	Links struct {
		Chassis   []odataRef `json:"Chassis"`
		ManagedBy []odataRef `json:"ManagedBy"`
	} `json:"Links"`

	Actions struct {
		Reset struct {
			actionTarget
			AllowableValues []redfish.ResetType `json:"ResetType@Redfish.AllowableValues"`
		} `json:"#ComputerSystem.Reset"`
	} `json:"Actions"`

	Oem map[string]json.RawMessage `json:"Oem"`

	etag string
}

// ETag returns the concurrency token captured when the record was
// fetched, empty when the BMC did not deliver one.
func (s *SystemRecord) ETag() string { return s.etag }

// ManagerRecord is the BMC's own management endpoint.
type ManagerRecord struct {
	ODataID         string   `json:"@odata.id"`
	ID              string   `json:"Id"`
	FirmwareVersion string   `json:"FirmwareVersion"`
	VirtualMedia    odataRef `json:"VirtualMedia"`

	GraphicalConsole struct {
		ServiceEnabled        bool     `json:"ServiceEnabled"`
		ConnectTypesSupported []string `json:"ConnectTypesSupported"`
	} `json:"GraphicalConsole"`

	Actions struct {
		Reset actionTarget `json:"#Manager.Reset"`
		// Vendor actions (job queue cleanup, configuration import)
		// keyed by their full action name.
		Oem map[string]actionTarget `json:"Oem"`
	} `json:"Actions"`

	Oem map[string]json.RawMessage `json:"Oem"`
}

// ChassisRecord is the physical enclosure.
type ChassisRecord struct {
	ODataID         string   `json:"@odata.id"`
	ID              string   `json:"Id"`
	ChassisType     string   `json:"ChassisType"`
	PCIeDevices     odataRef `json:"PCIeDevices"`
	NetworkAdapters odataRef `json:"NetworkAdapters"`
	Sensors         odataRef `json:"Sensors"`

	Oem map[string]json.RawMessage `json:"Oem"`
}

// taskDoc is the ephemeral long-running-operation handle.
type taskDoc struct {
	ID         string            `json:"Id"`
	TaskState  redfish.TaskState `json:"TaskState"`
	TaskStatus common.Health     `json:"TaskStatus"`
	Messages   []struct {
		Message string `json:"Message"`
	} `json:"Messages"`
}

// vmediaDoc is one virtual media slot as published by the BMC.
type vmediaDoc struct {
	ODataID        string                     `json:"@odata.id"`
	ID             string                     `json:"Id"`
	Name           string                     `json:"Name"`
	MediaTypes     []redfish.VirtualMediaType `json:"MediaTypes"`
	Inserted       bool                       `json:"Inserted"`
	Image          string                     `json:"Image"`
	WriteProtected bool                       `json:"WriteProtected"`

	Actions struct {
		InsertMedia actionTarget            `json:"#VirtualMedia.InsertMedia"`
		EjectMedia  actionTarget            `json:"#VirtualMedia.EjectMedia"`
		Oem         map[string]actionTarget `json:"Oem"`
	} `json:"Actions"`

	Oem map[string]json.RawMessage `json:"Oem"`
}
