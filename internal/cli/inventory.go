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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bmc-redfish-client/internal/models"
	"bmc-redfish-client/internal/redfish"
)

var inventoryKind string

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Collect normalized hardware inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachHost(cmd.Context(), collectInventory)
	},
}

func init() {
	inventoryCmd.Flags().StringVar(&inventoryKind, "kind", "all",
		"Inventory kind: cpu, memory, pcie, network or all")
	rootCmd.AddCommand(inventoryCmd)
}

func collectInventory(ctx context.Context, host Host, client *redfish.Client) error {
	systemID, err := firstSystemID(ctx, client)
	if err != nil {
		return err
	}

	var out any
	switch inventoryKind {
	case "cpu":
		out, err = client.CPUs(ctx, systemID)
	case "memory":
		out, err = client.MemoryModules(ctx, systemID)
	case "pcie":
		out, err = client.PCIeDevices(ctx, systemID)
	case "network":
		out, err = client.NetworkCards(ctx, systemID)
	case "all":
		var inventory *models.Inventory
		inventory, err = client.Inventory(ctx, systemID)
		out = inventory
	default:
		return fmt.Errorf("unknown inventory kind %q", inventoryKind)
	}
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
