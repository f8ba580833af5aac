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

var bootImageCmd = &cobra.Command{
	Use:   "boot-image <image-uri>",
	Short: "Mount a remote image and boot the host from it",
	Long: "Mounts the image on a compatible virtual media slot, points the next " +
		"boot at it and restarts (or powers on) the host. A failure after the " +
		"mount leaves the image mounted; rerun the command to retry.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image := args[0]
		return forEachHost(cmd.Context(), func(ctx context.Context, host Host, client *redfish.Client) error {
			systemID, err := firstSystemID(ctx, client)
			if err != nil {
				return err
			}

			device, err := client.BootFromImage(ctx, systemID, image)
			if err != nil {
				return err
			}

			fmt.Printf("%s: booting from %s (device %s, driver %s)\n",
				host.Endpoint, image, device.ID, client.Driver().Name())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(bootImageCmd)
}
