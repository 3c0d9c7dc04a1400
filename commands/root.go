// Copyright 2025 OpenPubkey
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/fatih/color"
	"github.com/openpubkey/aclaudit/commands/config"
	"github.com/spf13/cobra"
	"github.com/thediveo/enumflag/v2"
)

// rootOptions is the state shared by every subcommand once the persistent
// pre-run has loaded the config.
type rootOptions struct {
	configPath string
	output     OutputFormat
	verbosity  int
	noColor    bool

	cfg    *config.Config
	logger log.Interface
}

// NewRootCmd returns the aclaudit command tree.
func NewRootCmd(version string) *cobra.Command {
	ro := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          "aclaudit",
		Short:        "Audit folder permissions, owners and sizes",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ro.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ro.configPath, "config", "c", config.DefaultPath(), "Path to the aclaudit config file")
	rootCmd.PersistentFlags().VarP(
		enumflag.New(&ro.output, "format", outputFormatIds, enumflag.EnumCaseInsensitive),
		"output", "o", "Output format: text, json or yaml")
	rootCmd.PersistentFlags().CountVarP(&ro.verbosity, "verbose", "v", "Verbose logging (repeat for more)")
	rootCmd.PersistentFlags().BoolVar(&ro.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newScanCmd(ro))
	rootCmd.AddCommand(newSizeCmd(ro))
	rootCmd.AddCommand(newOwnerCmd(ro))
	rootCmd.AddCommand(newAclCmd(ro))
	rootCmd.AddCommand(newReportCmd(ro))
	return rootCmd
}

func (ro *rootOptions) setup(cmd *cobra.Command) error {
	if ro.noColor {
		color.NoColor = true
	}

	level := log.InfoLevel
	if ro.verbosity > 0 {
		level = log.DebugLevel
	}
	ro.logger = &log.Logger{Handler: cli.New(cmd.ErrOrStderr()), Level: level}

	explicit := cmd.Flags().Changed("config")
	cfg, err := config.Load(configFs(), ro.configPath, explicit)
	if err != nil {
		return err
	}
	ro.cfg = cfg

	if !cmd.Flags().Changed("output") {
		format, err := parseOutputFormat(cfg.Output)
		if err != nil {
			return err
		}
		ro.output = format
	}
	ro.logger.WithField("config", ro.configPath).Debug("configuration loaded")
	return nil
}
