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
	"github.com/openpubkey/aclaudit/security"
	"github.com/spf13/cobra"
)

type aclView struct {
	Path string         `json:"path" yaml:"path"`
	Acls []security.Acl `json:"acls" yaml:"acls"`
}

func newAclCmd(ro *rootOptions) *cobra.Command {
	var includeUnresolved bool
	cmd := &cobra.Command{
		Use:   "acl PATH",
		Short: "List the access rules on a file or folder",
		Long: `List the access rules of PATH in the order they are evaluated.

Rules granted to accounts that no longer resolve are hidden unless
--include-unresolved is given, in which case they are listed by SID.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("include-unresolved") {
				includeUnresolved = ro.cfg.Acl.IncludeUnresolved
			}
			acls, err := NewDeps().extractor(nil, includeUnresolved, ro.logger).GetAclView(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ro.output == OutputText {
				writeAclsText(out, acls, "")
				return nil
			}
			return writeStructured(out, ro.output, aclView{Path: args[0], Acls: acls})
		},
	}
	cmd.Flags().BoolVar(&includeUnresolved, "include-unresolved", false, "List rules for unresolvable SIDs")
	return cmd
}
