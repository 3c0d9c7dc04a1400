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

	"github.com/spf13/cobra"
)

type ownerView struct {
	Path  string `json:"path" yaml:"path"`
	Owner string `json:"owner" yaml:"owner"`
}

func newOwnerCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "owner PATH",
		Short: "Print the owning account of a file or folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := NewDeps().owners().ResolveOwner(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ro.output == OutputText {
				fmt.Fprintln(out, owner)
				return nil
			}
			return writeStructured(out, ro.output, ownerView{Path: args[0], Owner: owner})
		},
	}
}
