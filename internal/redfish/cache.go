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

import "sync"

// resourceCache memoizes System, Manager and Chassis documents per
// system id. Entries live for the lifetime of the client instance; a
// populated entry is never refreshed behind the caller's back, only an
// explicit refresh repopulates it. Clients are short-lived (one
// provisioning session), so there is no TTL or eviction.
type resourceCache struct {
	mu       sync.Mutex
	systems  map[string]*SystemRecord
	managers map[string]*ManagerRecord
	chassis  map[string]*ChassisRecord
}

func newResourceCache() *resourceCache {
	return &resourceCache{
		systems:  make(map[string]*SystemRecord),
		managers: make(map[string]*ManagerRecord),
		chassis:  make(map[string]*ChassisRecord),
	}
}

func (rc *resourceCache) system(id string, refresh bool, fetch func() (*SystemRecord, error)) (*SystemRecord, error) {
	if !refresh {
		rc.mu.Lock()
		cached, ok := rc.systems[id]
		rc.mu.Unlock()
		if ok {
			return cached, nil
		}
	}

	record, err := fetch()
	if err != nil {
		return nil, err
	}

	rc.mu.Lock()
	rc.systems[id] = record
	rc.mu.Unlock()
	return record, nil
}

func (rc *resourceCache) manager(id string, refresh bool, fetch func() (*ManagerRecord, error)) (*ManagerRecord, error) {
	if !refresh {
		rc.mu.Lock()
		cached, ok := rc.managers[id]
		rc.mu.Unlock()
		if ok {
			return cached, nil
		}
	}

	record, err := fetch()
	if err != nil {
		return nil, err
	}

	rc.mu.Lock()
	rc.managers[id] = record
	rc.mu.Unlock()
	return record, nil
}

func (rc *resourceCache) chassisRecord(id string, refresh bool, fetch func() (*ChassisRecord, error)) (*ChassisRecord, error) {
	if !refresh {
		rc.mu.Lock()
		cached, ok := rc.chassis[id]
		rc.mu.Unlock()
		if ok {
			return cached, nil
		}
	}

	record, err := fetch()
	if err != nil {
		return nil, err
	}

	rc.mu.Lock()
	rc.chassis[id] = record
	rc.mu.Unlock()
	return record, nil
}

// invalidateSystem drops the cached system entry so the next read
// refetches it.
func (rc *resourceCache) invalidateSystem(id string) {
	rc.mu.Lock()
	delete(rc.systems, id)
	rc.mu.Unlock()
}
