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

// scanFlags mirror walker.TraversalOptions. Only flags given on the command
// line override the configured values.
type scanFlags struct {
	subtree     bool
	hidden      bool
	current     bool
	size        bool
	subtreeSize bool
	owner       bool
	ownerFilter string
	depth       int
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.subtree, "subtree", true, "Descend below the immediate children")
	cmd.Flags().BoolVar(&f.hidden, "hidden", false, "Include hidden folders")
	cmd.Flags().BoolVar(&f.current, "current", false, "Report the starting folder itself")
	cmd.Flags().BoolVar(&f.size, "size", false, "Compute the size of each folder's direct files")
	cmd.Flags().BoolVar(&f.subtreeSize, "subtree-size", false, "Compute the size of each folder's whole subtree")
	cmd.Flags().BoolVar(&f.owner, "owner", false, "Resolve the owner of each folder")
	cmd.Flags().StringVar(&f.ownerFilter, "owner-filter", "", "Only report folders owned by this account (domain\\name)")
	cmd.Flags().IntVar(&f.depth, "depth", 0, "Maximum report depth below the starting folder (0 = unlimited)")
}

func (f *scanFlags) apply(cmd *cobra.Command, opts walker.TraversalOptions) (walker.TraversalOptions, error) {
	changed := cmd.Flags().Changed
	if changed("subtree") {
		opts.IncludeSubtree = f.subtree
	}
	if changed("hidden") {
		opts.IncludeHidden = f.hidden
	}
	if changed("current") {
		opts.IncludeCurrentFolder = f.current
	}
	if changed("size") {
		opts.ComputeSize = f.size
	}
	if changed("subtree-size") {
		opts.ComputeSizeForSubtree = f.subtreeSize
	}
	if changed("owner") {
		opts.IncludeOwner = f.owner
	}
	if changed("owner-filter") {
		opts.OwnerFilter = f.ownerFilter
	}
	if changed("depth") {
		opts.ScanDepth = f.depth
	}
	if opts.ScanDepth < 0 {
		return opts, fmt.Errorf("--depth must not be negative, got %d", opts.ScanDepth)
	}
	return opts, nil
}

func newScanCmd(ro *rootOptions) *cobra.Command {
	var flags scanFlags
	cmd := &cobra.Command{
		Use:   "scan PATH",
		Short: "Walk a folder tree and report each folder",
		Long: `Walk a folder tree and report every folder found below PATH.

Folders that refuse access are reported as denied and not descended into.
Sizes and owners are only computed when asked for.`,
		Example: `  aclaudit scan C:\Shares --depth 2 --owner
  aclaudit scan /srv/data --subtree-size -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.apply(cmd, ro.cfg.Scan.TraversalOptions())
			if err != nil {
				return err
			}
			return runScan(cmd, ro, NewDeps(), args[0], opts)
		},
	}
	flags.register(cmd)
	return cmd
}

func runScan(cmd *cobra.Command, ro *rootOptions, deps Deps, root string, opts walker.TraversalOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	w := deps.walker(ro.logger)
	progress := newProgressLine(cmd.ErrOrStderr())
	w.Progress = progress.update

	views := []*folderView{}
	for r, err := range w.Walk(ctx, root, opts) {
		if err != nil {
			progress.done()
			return err
		}
		v := newFolderView(r)
		if ro.output == OutputText {
			writeFolderText(out, v)
			continue
		}
		views = append(views, v)
	}
	progress.done()
	if err := ctx.Err(); err != nil {
		return err
	}
	if ro.output == OutputText {
		return nil
	}
	return writeStructured(out, ro.output, views)
}
