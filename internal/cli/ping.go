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
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"bmc-redfish-client/internal/redfish"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that each BMC accepts the configured credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachHost(cmd.Context(), func(ctx context.Context, host Host, client *redfish.Client) error {
			if client.IsReachable(ctx) {
				fmt.Printf("%s: ok (driver %s)\n", host.Endpoint, client.Driver().Name())
			} else {
				fmt.Printf("%s: unreachable\n", host.Endpoint)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
