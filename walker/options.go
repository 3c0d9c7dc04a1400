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

package walker

// TraversalOptions controls a walk. It is passed by value; every pushed frame
// carries its own copy.
type TraversalOptions struct {
	// IncludeSubtree descends into child directories.
	IncludeSubtree bool `yaml:"include_subtree" json:"includeSubtree"`
	// IncludeHidden reports and descends into hidden directories.
	IncludeHidden bool `yaml:"include_hidden" json:"includeHidden"`
	// IncludeCurrentFolder reports the root itself. It never applies below
	// the root.
	IncludeCurrentFolder bool `yaml:"include_current_folder" json:"includeCurrentFolder"`
	// ComputeSize totals the files directly inside each reported folder.
	ComputeSize bool `yaml:"compute_size" json:"computeSize"`
	// ComputeSizeForSubtree totals every file below each reported folder.
	ComputeSizeForSubtree bool `yaml:"compute_size_for_subtree" json:"computeSizeForSubtree"`
	// IncludeOwner resolves the owner of each reported folder.
	IncludeOwner bool `yaml:"include_owner" json:"includeOwner"`
	// OwnerFilter, when set, limits emitted folders to those owned by this
	// account (case-insensitive). Failed folders are emitted regardless.
	OwnerFilter string `yaml:"owner_filter" json:"ownerFilter"`
	// ScanDepth bounds the traversal depth below the root; 0 is unbounded.
	ScanDepth int `yaml:"scan_depth" json:"scanDepth"`
}

// DefaultOptions walks the whole tree and reports only paths.
func DefaultOptions() TraversalOptions {
	return TraversalOptions{IncludeSubtree: true}
}

// ImmediateChildren lists only the direct children of the root.
func (o TraversalOptions) ImmediateChildren() TraversalOptions {
	o.IncludeSubtree = false
	o.IncludeCurrentFolder = false
	o.ScanDepth = 0
	return o
}

func (o TraversalOptions) forChild() TraversalOptions {
	o.IncludeCurrentFolder = false
	return o
}

func (o TraversalOptions) wantsOwner() bool {
	return o.IncludeOwner || o.OwnerFilter != ""
}
