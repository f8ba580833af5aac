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
	"errors"
	"fmt"
	"time"
)

// The client surfaces every failure as one of the typed errors below so
// callers can branch with errors.As instead of string matching. Network
// and HTTP-status failures come through as *transport.Error, Redfish
// error payloads as *transport.ProtocolError.

// AuthError reports missing credentials or a login response without a
// token or session id.
type AuthError struct {
	Endpoint string
	Reason   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication against %s failed: %s", e.Endpoint, e.Reason)
}

// StateError reports an operation performed in a client state that does
// not allow it, e.g. releasing a session that was never established.
type StateError struct {
	Operation string
	Reason    string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, e.Reason)
}

// ConfigurationError reports a resource document missing an expected
// link or reference.
type ConfigurationError struct {
	Resource string
	Missing  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("resource %s does not expose %s", e.Resource, e.Missing)
}

// CapabilityError reports a vendor not exposing a required action.
type CapabilityError struct {
	Resource string
	Action   string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("resource %s does not advertise action %s", e.Resource, e.Action)
}

// ValidationError reports caller input failing an allow-list or format
// check before any write is issued.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// NoCompatibleDeviceError reports that no virtual media slot accepts the
// requested media type.
type NoCompatibleDeviceError struct {
	MediaType string
	Checked   int
}

func (e *NoCompatibleDeviceError) Error() string {
	return fmt.Sprintf("none of %d virtual media devices accepts media type %s", e.Checked, e.MediaType)
}

// TimeoutError reports a bounded wait exceeding its limit.
type TimeoutError struct {
	Operation string
	Limit     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s has not finished within %s", e.Operation, e.Limit)
}

// UnsupportedVendorError reports a service root without any OEM marker,
// leaving no way to pick a driver.
type UnsupportedVendorError struct {
	Endpoint string
}

func (e *UnsupportedVendorError) Error() string {
	return fmt.Sprintf("service root of %s carries no OEM marker", e.Endpoint)
}

// NotImplementedError reports a capability the active vendor driver
// intentionally does not implement.
type NotImplementedError struct {
	Driver     string
	Capability string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("driver %s does not implement %s", e.Driver, e.Capability)
}

func asConfigurationError(err error, target **ConfigurationError) bool {
	return errors.As(err, target)
}
