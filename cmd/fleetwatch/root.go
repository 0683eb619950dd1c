/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mfreeman451/fleetwatch/pkg/config"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{configPath: os.Getenv("FLEETWATCH_CONFIG")}

	cmd := &cobra.Command{
		Use:   "fleetwatch",
		Short: "Fleet health monitor for Balena devices",
		Long: `fleetwatch polls the Balena cloud for device connectivity, keeps a
rate-limited log of status snapshots, and alerts Slack about devices that
keep dropping offline.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath,
		"Path to a JSON or YAML config file (environment variables override it)")

	cmd.AddCommand(
		newServeCmd(opts),
		newCheckCmd(opts),
		newPruneCmd(opts),
	)

	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	return config.Load(o.configPath)
}
