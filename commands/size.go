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
	"fmt"

	"github.com/openpubkey/aclaudit/walker"
	"github.com/spf13/cobra"
)

type sizeView struct {
	Path string `json:"path" yaml:"path"`

	walker.FolderSizeInfo `yaml:",inline"`
}

func newSizeCmd(ro *rootOptions) *cobra.Command {
	var subtree, hidden bool
	cmd := &cobra.Command{
		Use:   "size PATH",
		Short: "Count the files under a folder and total their size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("subtree") {
				subtree = ro.cfg.Scan.IncludeSubtree
			}
			if !cmd.Flags().Changed("hidden") {
				hidden = ro.cfg.Scan.IncludeHidden
			}

			deps := NewDeps()
			info, err := walker.NewAggregator(deps.Enum).Aggregate(cmd.Context(), args[0], subtree, hidden)
			if err != nil {
				return fmt.Errorf("failed to size %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if ro.output == OutputText {
				fmt.Fprintf(out, "%s: %s\n", args[0], formatSize(&info))
				return nil
			}
			return writeStructured(out, ro.output, sizeView{Path: args[0], FolderSizeInfo: info})
		},
	}
	cmd.Flags().BoolVar(&subtree, "subtree", true, "Include files in every subfolder")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "Include hidden folders")
	return cmd
}
