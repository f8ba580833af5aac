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

// Package cli implements the bmcctl command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bmc-redfish-client/internal/redfish"
)

var rootOpts struct {
	endpoint  string
	username  string
	password  string
	hostsFile string
	verbosity int
}

var rootCmd = &cobra.Command{
	Use:           "bmcctl",
	Short:         "Manage servers through their BMC Redfish API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootOpts.endpoint, "endpoint", os.Getenv("BMC_ENDPOINT"), "BMC IP address or hostname")
	flags.StringVar(&rootOpts.username, "username", os.Getenv("BMC_USERNAME"), "Redfish user name")
	flags.StringVar(&rootOpts.password, "password", os.Getenv("BMC_PASSWORD"), "Redfish user password")
	flags.StringVar(&rootOpts.hostsFile, "hosts", "", "YAML file listing multiple BMCs to operate on")
	flags.IntVarP(&rootOpts.verbosity, "verbosity", "v", 0, "Log verbosity (0..2)")
}

// Execute runs the command tree.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// newLogger builds the zerolog-backed logr logger used by all commands.
func newLogger() logr.Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if rootOpts.verbosity > 0 {
		zl = zl.Level(zerolog.TraceLevel)
	} else {
		zl = zl.Level(zerolog.InfoLevel)
	}
	zerologr.SetMaxV(rootOpts.verbosity)
	return zerologr.New(&zl)
}

// forEachHost runs fn against every configured BMC, connecting and
// releasing the session around the call.
func forEachHost(ctx context.Context, fn func(ctx context.Context, host Host, client *redfish.Client) error) error {
	hosts, err := resolveHosts()
	if err != nil {
		return err
	}
	log := newLogger()

	for _, host := range hosts {
		client, err := redfish.Connect(ctx, host.Endpoint, host.Username, host.Password,
			redfish.WithLogger(log))
		if err != nil {
			return fmt.Errorf("connecting to %s: %w", host.Endpoint, err)
		}

		runErr := fn(ctx, host, client)

		if relErr := client.Release(ctx); relErr != nil {
			// A client that never authenticated has no session to drop.
			log.V(1).Info("session release skipped", "host", host.Endpoint, "reason", relErr.Error())
		}
		if runErr != nil {
			return fmt.Errorf("host %s: %w", host.Endpoint, runErr)
		}
	}
	return nil
}

// firstSystemID picks the system to operate on. Single-system BMCs are
// the common case; multi-system ones take the first member.
func firstSystemID(ctx context.Context, client *redfish.Client) (string, error) {
	ids, err := client.Systems(ctx)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("BMC reports no systems")
	}
	return ids[0], nil
}
