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

package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Host is one BMC target. Per-host credentials override the globals.
type Host struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type hostsFile struct {
	Hosts []Host `yaml:"hosts"`
}

// resolveHosts turns flags, environment and the optional hosts file
// into the list of BMCs to operate on.
func resolveHosts() ([]Host, error) {
	if rootOpts.hostsFile != "" {
		raw, err := os.ReadFile(rootOpts.hostsFile)
		if err != nil {
			return nil, fmt.Errorf("reading hosts file: %w", err)
		}

		var file hostsFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("parsing hosts file %s: %w", rootOpts.hostsFile, err)
		}
		if len(file.Hosts) == 0 {
			return nil, fmt.Errorf("hosts file %s lists no hosts", rootOpts.hostsFile)
		}

		for i := range file.Hosts {
			if file.Hosts[i].Username == "" {
				file.Hosts[i].Username = rootOpts.username
			}
			if file.Hosts[i].Password == "" {
				file.Hosts[i].Password = rootOpts.password
			}
			if file.Hosts[i].Endpoint == "" {
				return nil, fmt.Errorf("hosts file %s: entry %d has no endpoint", rootOpts.hostsFile, i)
			}
		}
		return file.Hosts, nil
	}

	if rootOpts.endpoint == "" {
		return nil, fmt.Errorf("no BMC endpoint given; use --endpoint, BMC_ENDPOINT or --hosts")
	}
	return []Host{{
		Endpoint: rootOpts.endpoint,
		Username: rootOpts.username,
		Password: rootOpts.password,
	}}, nil
}
