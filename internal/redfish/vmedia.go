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
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/stmcginnis/gofish/redfish"

	"bmc-redfish-client/internal/models"
)

// Bound on re-reads of a transitional power state at the end of the
// boot workflow.
const powerRecheckAttempts = 10

var powerRecheckInterval = 3 * time.Second

// classifyImage maps the image reference extension to a media type.
func classifyImage(image string) (redfish.VirtualMediaType, error) {
	lower := strings.ToLower(image)
	switch {
	case strings.HasSuffix(lower, ".iso"):
		return redfish.CDMediaType, nil
	case strings.HasSuffix(lower, ".img"), strings.HasSuffix(lower, ".ima"):
		return redfish.USBStickMediaType, nil
	default:
		return "", &ValidationError{
			Field:  "image",
			Value:  image,
			Reason: "only .iso, .img and .ima image references are supported",
		}
	}
}

// acceptsMediaType reports whether the device can host media of the
// wanted type. An empty supported-types list accepts anything.
func acceptsMediaType(device *vmediaDoc, want redfish.VirtualMediaType) bool {
	if len(device.MediaTypes) == 0 {
		return true
	}
	for _, mt := range device.MediaTypes {
		if mt == want {
			return true
		}
		// Optical slots advertise CD and DVD interchangeably.
		if want == redfish.CDMediaType && mt == redfish.DVDMediaType {
			return true
		}
	}
	return false
}

func bootTargetForMedia(mediaType redfish.VirtualMediaType) redfish.BootSourceOverrideTarget {
	if mediaType == redfish.USBStickMediaType {
		return redfish.UsbBootSourceOverrideTarget
	}
	return redfish.CdBootSourceOverrideTarget
}

// mediaCollectionRef locates the virtual media collection: the System
// link is preferred, the Manager link is the fallback.
func (c *Client) mediaCollectionRef(ctx context.Context, systemID string) (string, error) {
	system, err := c.System(ctx, systemID, false)
	if err != nil {
		return "", err
	}
	if system.VirtualMedia.ODataID != "" {
		return system.VirtualMedia.ODataID, nil
	}

	manager, err := c.Manager(ctx, systemID, false)
	if err != nil {
		return "", err
	}
	if manager.VirtualMedia.ODataID != "" {
		return manager.VirtualMedia.ODataID, nil
	}

	return "", &ConfigurationError{Resource: system.ODataID, Missing: "virtual media collection (System and Manager)"}
}

// mediaDevices fetches all member documents of the media collection
// concurrently, position stable.
func (c *Client) mediaDevices(ctx context.Context, collectionRef string) ([]*vmediaDoc, error) {
	refs, err := c.members(ctx, collectionRef)
	if err != nil {
		return nil, err
	}

	return fanOut(ctx, refs, func(ctx context.Context, ref string) (*vmediaDoc, bool, error) {
		doc := &vmediaDoc{}
		if _, err := c.getInto(ctx, ref, doc); err != nil {
			return nil, false, err
		}
		if doc.ODataID == "" {
			doc.ODataID = ref
		}
		return doc, true, nil
	})
}

func deviceInfo(doc *vmediaDoc) *models.VirtualMediaDevice {
	return &models.VirtualMediaDevice{
		ID:         doc.ID,
		ODataID:    doc.ODataID,
		Name:       doc.Name,
		MediaTypes: doc.MediaTypes,
		Inserted:   doc.Inserted,
		Image:      doc.Image,
	}
}

// VirtualMediaDevices lists the media slots reachable from system id.
func (c *Client) VirtualMediaDevices(ctx context.Context, systemID string) ([]models.VirtualMediaDevice, error) {
	collectionRef, err := c.mediaCollectionRef(ctx, systemID)
	if err != nil {
		return nil, err
	}

	docs, err := c.mediaDevices(ctx, collectionRef)
	if err != nil {
		return nil, err
	}

	devices := make([]models.VirtualMediaDevice, 0, len(docs))
	for _, doc := range docs {
		devices = append(devices, *deviceInfo(doc))
	}
	return devices, nil
}

// BootFromImage mounts the image on a compatible media slot, points the
// next boot at it and restarts or powers on the host. The steps run
// strictly in order; each step's failure propagates as its own typed
// error and completed steps are not rolled back. In particular a
// boot-configuration failure leaves the image mounted; retrying the
// whole workflow is the remediation.
func (c *Client) BootFromImage(ctx context.Context, systemID, image string) (*models.VirtualMediaDevice, error) {
	log := c.log.WithValues("system", systemID, "image", image, "workflow", uuid.NewString())

	// Step 1: locate the media collection.
	collectionRef, err := c.mediaCollectionRef(ctx, systemID)
	if err != nil {
		return nil, err
	}

	// Step 2: classify the image.
	mediaType, err := classifyImage(image)
	if err != nil {
		return nil, err
	}
	log.V(1).Info("image classified", "media_type", mediaType)

	// Step 3: select the first compatible device.
	devices, err := c.mediaDevices(ctx, collectionRef)
	if err != nil {
		return nil, err
	}

	var selected *vmediaDoc
	for _, device := range devices {
		if acceptsMediaType(device, mediaType) {
			selected = device
			break
		}
	}
	if selected == nil {
		return nil, &NoCompatibleDeviceError{MediaType: string(mediaType), Checked: len(devices)}
	}
	log.V(1).Info("media device selected", "device", selected.ODataID)

	// Step 4: unmount whatever is currently inserted.
	if selected.Inserted {
		log.Info("device occupied, unmounting", "device", selected.ODataID, "current_image", selected.Image)
		if err := c.driver.unmountImage(ctx, selected); err != nil {
			return nil, err
		}
	}

	// Step 5: mount.
	if err := c.driver.mountImage(ctx, selected, image); err != nil {
		return nil, err
	}
	log.Info("image mounted", "device", selected.ODataID)

	// Step 6: vendor boot-target configuration. No rollback of the
	// mount on failure.
	system, err := c.System(ctx, systemID, false)
	if err != nil {
		return nil, err
	}
	if err := c.driver.configureBootTarget(ctx, system, bootTargetForMedia(mediaType)); err != nil {
		return nil, err
	}
	log.Info("boot target configured", "target", bootTargetForMedia(mediaType))

	// Step 7: restart or power on, depending on the current state read
	// past the cache.
	if err := c.restartOrPowerOn(ctx, systemID, log); err != nil {
		return nil, err
	}

	info := deviceInfo(selected)
	info.Inserted = true
	info.Image = image
	return info, nil
}

func (c *Client) restartOrPowerOn(ctx context.Context, systemID string, log logr.Logger) error {
	var state redfish.PowerState
	for attempt := 0; attempt < powerRecheckAttempts; attempt++ {
		// Transitional state observed last round: wait before re-reading.
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(powerRecheckInterval):
			}
		}

		var err error
		state, err = c.PowerState(ctx, systemID, true)
		if err != nil {
			return err
		}

		switch state {
		case redfish.OnPowerState:
			log.Info("host powered on, forcing restart")
			return c.ForceRestart(ctx, systemID)
		case redfish.OffPowerState:
			log.Info("host powered off, powering on")
			return c.PowerOn(ctx, systemID)
		}
	}

	return &StateError{
		Operation: "boot from image",
		Reason:    "system " + systemID + " stuck in transitional power state " + string(state),
	}
}
