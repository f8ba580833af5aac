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

package transport

import "fmt"

// Error reports a network failure or an HTTP status >= 400.
type Error struct {
	Method string
	URL    string
	Status int
	Body   string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s failed: %v", e.Method, e.URL, e.Cause)
	}
	return fmt.Sprintf("%s %s returned status %d", e.Method, e.URL, e.Status)
}

func (e *Error) Unwrap() error { return e.Cause }

// ProtocolError reports a successful HTTP exchange whose body carries a
// Redfish-level error object.
type ProtocolError struct {
	Method    string
	URL       string
	MessageID string
	Message   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s %s reported redfish error %s: %s", e.Method, e.URL, e.MessageID, e.Message)
}
