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

var powerCmd = &cobra.Command{
	Use:       "power {on|off|graceful|restart|status}",
	Short:     "Control or query host power state",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off", "graceful", "restart", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		action := args[0]
		return forEachHost(cmd.Context(), func(ctx context.Context, host Host, client *redfish.Client) error {
			systemID, err := firstSystemID(ctx, client)
			if err != nil {
				return err
			}

			switch action {
			case "on":
				return client.PowerOn(ctx, systemID)
			case "off":
				return client.ForceOff(ctx, systemID)
			case "graceful":
				return client.GracefulShutdown(ctx, systemID)
			case "restart":
				return client.ForceRestart(ctx, systemID)
			case "status":
				state, err := client.PowerState(ctx, systemID, true)
				if err != nil {
					return err
				}
				fmt.Printf("%s: %s\n", host.Endpoint, state)
				return nil
			default:
				return fmt.Errorf("unknown power action %q", action)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(powerCmd)
}
