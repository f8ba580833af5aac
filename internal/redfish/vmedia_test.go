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
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stmcginnis/gofish/redfish"
)

const pathMediaCollection = pathManager + "/VirtualMedia"

func mediaDevice(id string, mediaTypes []string, inserted bool, image string) map[string]any {
	path := pathMediaCollection + "/" + id
	return map[string]any{
		"@odata.id":  path,
		"Id":         id,
		"Name":       "Virtual " + id,
		"MediaTypes": mediaTypes,
		"Inserted":   inserted,
		"Image":      image,
		"Actions": map[string]any{
			"#VirtualMedia.InsertMedia": map[string]any{"target": path + "/Actions/VirtualMedia.InsertMedia"},
			"#VirtualMedia.EjectMedia":  map[string]any{"target": path + "/Actions/VirtualMedia.EjectMedia"},
		},
	}
}

func installMedia(bmc *mockBMC, devices ...map[string]any) {
	paths := make([]string, 0, len(devices))
	for _, device := range devices {
		path := device["@odata.id"].(string)
		paths = append(paths, path)
		bmc.setDoc(path, device)
	}
	bmc.setDoc(pathMediaCollection, members(paths...))
}

func TestClassifyImage(t *testing.T) {
	cases := []struct {
		image string
		want  redfish.VirtualMediaType
	}{
		{image: "http://images.local/ubuntu-24.04.iso", want: redfish.CDMediaType},
		{image: "nfs://images.local/esxi.ISO", want: redfish.CDMediaType},
		{image: "http://images.local/firmware.img", want: redfish.USBStickMediaType},
		{image: "http://images.local/dos-boot.ima", want: redfish.USBStickMediaType},
	}
	for _, tc := range cases {
		got, err := classifyImage(tc.image)
		if err != nil {
			t.Fatalf("classifyImage(%q): %v", tc.image, err)
		}
		if got != tc.want {
			t.Fatalf("classifyImage(%q) = %s, want %s", tc.image, got, tc.want)
		}
	}

	_, err := classifyImage("http://images.local/vmlinuz.bin")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected *ValidationError for unknown extension, got %v", err)
	}
}

func TestAcceptsMediaType(t *testing.T) {
	open := &vmediaDoc{}
	if !acceptsMediaType(open, redfish.CDMediaType) {
		t.Fatal("an empty supported-types list accepts anything")
	}

	dvdOnly := &vmediaDoc{MediaTypes: []redfish.VirtualMediaType{redfish.DVDMediaType}}
	if !acceptsMediaType(dvdOnly, redfish.CDMediaType) {
		t.Fatal("a DVD slot hosts CD media")
	}

	usbOnly := &vmediaDoc{MediaTypes: []redfish.VirtualMediaType{redfish.USBStickMediaType}}
	if acceptsMediaType(usbOnly, redfish.CDMediaType) {
		t.Fatal("a USB slot does not host CD media")
	}
}

func TestVirtualMediaDevices(t *testing.T) {
	bmc := newMockBMC(t)
	bmc.populateStandard("Supermicro")
	installMedia(bmc,
		mediaDevice("CD1", []string{"CD", "DVD"}, false, ""),
		mediaDevice("USB1", []string{"USBStick"}, true, "http://images.local/tools.img"),
	)

	client := testClient(t, bmc)

	devices, err := client.VirtualMediaDevices(context.Background(), "1")
	if err != nil {
		t.Fatalf("VirtualMediaDevices: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("expected two devices, got %d", len(devices))
	}
	if devices[0].ID != "CD1" || devices[1].ID != "USB1" {
		t.Fatalf("device order mismatch: %+v", devices)
	}
	if !devices[1].Inserted || devices[1].Image != "http://images.local/tools.img" {
		t.Fatalf("occupied slot not reported: %+v", devices[1])
	}
}

func TestBootFromImageEjectsOccupiedDeviceFirst(t *testing.T) {
	bmc := newMockBMC(t)
	bmc.populateStandard("Supermicro")
	installMedia(bmc, mediaDevice("CD1", []string{"CD", "DVD"}, true, "http://images.local/old.iso"))

	client := testClient(t, bmc)

	info, err := client.BootFromImage(context.Background(), "1", "http://images.local/new.iso")
	if err != nil {
		t.Fatalf("BootFromImage: %v", err)
	}
	if !info.Inserted || info.Image != "http://images.local/new.iso" {
		t.Fatalf("returned device info mismatch: %+v", info)
	}

	var actions []string
	for _, r := range bmc.recorded(http.MethodPost) {
		if r.Path == pathSessions {
			continue
		}
		actions = append(actions, r.Path)
	}

	devicePath := pathMediaCollection + "/CD1"
	want := []string{
		devicePath + "/Actions/VirtualMedia.EjectMedia",
		devicePath + "/Actions/VirtualMedia.InsertMedia",
		pathSystem + "/Actions/ComputerSystem.Reset",
	}
	if len(actions) != len(want) {
		t.Fatalf("action sequence mismatch: got %v want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Fatalf("action %d: got %s want %s", i, actions[i], want[i])
		}
	}

	// The mount carried the image reference.
	for _, r := range bmc.recorded(http.MethodPost) {
		if r.Path != devicePath+"/Actions/VirtualMedia.InsertMedia" {
			continue
		}
		var body map[string]any
		if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
			t.Fatalf("decoding insert body: %v", err)
		}
		if body["Image"] != "http://images.local/new.iso" {
			t.Fatalf("insert body mismatch: %+v", body)
		}
	}
}

func TestBootFromImageSkipsEjectWhenEmpty(t *testing.T) {
	bmc := newMockBMC(t)
	bmc.populateStandard("Supermicro")
	installMedia(bmc, mediaDevice("CD1", []string{"CD"}, false, ""))

	client := testClient(t, bmc)

	if _, err := client.BootFromImage(context.Background(), "1", "http://images.local/new.iso"); err != nil {
		t.Fatalf("BootFromImage: %v", err)
	}
	for _, r := range bmc.recorded(http.MethodPost) {
		if strings.HasSuffix(r.Path, "VirtualMedia.EjectMedia") {
			t.Fatal("empty device must not be ejected")
		}
	}
}

func TestBootFromImageUnknownExtension(t *testing.T) {
	bmc := newMockBMC(t)
	bmc.populateStandard("Supermicro")
	installMedia(bmc, mediaDevice("CD1", []string{"CD"}, false, ""))

	client := testClient(t, bmc)

	_, err := client.BootFromImage(context.Background(), "1", "http://images.local/rootfs.tar.gz")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}

func TestBootFromImageNoCompatibleDevice(t *testing.T) {
	bmc := newMockBMC(t)
	bmc.populateStandard("Supermicro")
	installMedia(bmc, mediaDevice("USB1", []string{"USBStick"}, false, ""))

	client := testClient(t, bmc)

	_, err := client.BootFromImage(context.Background(), "1", "http://images.local/install.iso")
	var noDevErr *NoCompatibleDeviceError
	if !errors.As(err, &noDevErr) {
		t.Fatalf("expected *NoCompatibleDeviceError, got %v", err)
	}
	if noDevErr.Checked != 1 {
		t.Fatalf("expected one checked device, got %d", noDevErr.Checked)
	}
}

func TestBootFromImagePowersOnWhenOff(t *testing.T) {
	bmc := newMockBMC(t)
	bmc.populateStandard("Supermicro")
	installMedia(bmc, mediaDevice("CD1", []string{"CD"}, false, ""))
	doc := bmc.documents[pathSystem].(map[string]any)
	doc["PowerState"] = "Off"
	bmc.setDoc(pathSystem, doc)

	client := testClient(t, bmc)

	if _, err := client.BootFromImage(context.Background(), "1", "http://images.local/new.iso"); err != nil {
		t.Fatalf("BootFromImage: %v", err)
	}
	if got := lastResetType(t, bmc); got != "On" {
		t.Fatalf("expected power-on reset, got %q", got)
	}
}

func TestBootFromImageForceRestartsWhenOn(t *testing.T) {
	bmc := newMockBMC(t)
	bmc.populateStandard("Supermicro")
	installMedia(bmc, mediaDevice("CD1", []string{"CD"}, false, ""))

	client := testClient(t, bmc)

	if _, err := client.BootFromImage(context.Background(), "1", "http://images.local/new.iso"); err != nil {
		t.Fatalf("BootFromImage: %v", err)
	}
	if got := lastResetType(t, bmc); got != "ForceRestart" {
		t.Fatalf("expected force restart, got %q", got)
	}
}

func lastResetType(t *testing.T, bmc *mockBMC) string {
	t.Helper()
	var resetType string
	for _, r := range bmc.recorded(http.MethodPost) {
		if r.Path != pathSystem+"/Actions/ComputerSystem.Reset" {
			continue
		}
		var body map[string]string
		if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
			t.Fatalf("decoding reset body: %v", err)
		}
		resetType = body["ResetType"]
	}
	return resetType
}

func TestBootFromImageBootConfigFailureLeavesMount(t *testing.T) {
	bmc := newMockBMC(t)
	bmc.populateStandard("Supermicro")
	installMedia(bmc, mediaDevice("CD1", []string{"CD"}, false, ""))

	// The system refuses Cd as an override target.
	doc := bmc.documents[pathSystem].(map[string]any)
	doc["Boot"] = map[string]any{
		"BootSourceOverrideMode": "UEFI",
		"BootSourceOverrideTarget@Redfish.AllowableValues": []string{"None", "Pxe", "Hdd"},
	}
	bmc.setDoc(pathSystem, doc)

	client := testClient(t, bmc)

	_, err := client.BootFromImage(context.Background(), "1", "http://images.local/new.iso")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}

	var mounted, ejectedAfter bool
	for _, r := range bmc.recorded(http.MethodPost) {
		switch {
		case strings.HasSuffix(r.Path, "VirtualMedia.InsertMedia"):
			mounted = true
		case strings.HasSuffix(r.Path, "VirtualMedia.EjectMedia") && mounted:
			ejectedAfter = true
		}
	}
	if !mounted {
		t.Fatal("mount must happen before the boot-target step")
	}
	if ejectedAfter {
		t.Fatal("a failed boot-target step must not roll the mount back")
	}
	if resets := resetPosts(bmc); len(resets) != 0 {
		t.Fatalf("no restart after a failed boot-target step, saw %d", len(resets))
	}
}

func TestBootFromImageTransitionalPowerState(t *testing.T) {
	restore := powerRecheckInterval
	powerRecheckInterval = time.Millisecond
	defer func() { powerRecheckInterval = restore }()

	bmc := newMockBMC(t)
	bmc.populateStandard("Supermicro")
	installMedia(bmc, mediaDevice("CD1", []string{"CD"}, false, ""))
	doc := bmc.documents[pathSystem].(map[string]any)
	doc["PowerState"] = "PoweringOn"
	bmc.setDoc(pathSystem, doc)

	client := testClient(t, bmc)

	_, err := client.BootFromImage(context.Background(), "1", "http://images.local/new.iso")
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected *StateError for stuck transitional state, got %v", err)
	}

	// One fetch before the workflow plus exactly the bounded re-reads.
	if got := countSystemGets(bmc); got != powerRecheckAttempts+1 {
		t.Fatalf("expected %d power-state reads, got %d", powerRecheckAttempts+1, got)
	}
}
