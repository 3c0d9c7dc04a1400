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

import (
	"context"
	"errors"
)

// SizeAggregator totals the files under a directory.
type SizeAggregator interface {
	Aggregate(ctx context.Context, path string, includeSubtree, includeHidden bool) (FolderSizeInfo, error)
}

// Aggregator computes FolderSizeInfo with an explicit stack of directories.
type Aggregator struct {
	Enum Enumerator
}

func NewAggregator(enum Enumerator) *Aggregator {
	return &Aggregator{Enum: enum}
}

var errStopped = errors.New("walk stopped")

// Aggregate counts the files directly inside path, and with includeSubtree
// those of every non-excluded descendant directory. A directory whose listing
// hits an invalid or denied entry contributes only the entries seen before
// it. Aggregate returns no partial result: it fails when a directory cannot
// be opened or ctx is cancelled.
func (a *Aggregator) Aggregate(ctx context.Context, path string, includeSubtree, includeHidden bool) (FolderSizeInfo, error) {
	var info FolderSizeInfo
	stack := []string{path}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return FolderSizeInfo{}, err
		}
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		err := withStream(a.Enum, dir, func(s EntryStream) error {
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				e, ok := s.Next()
				if !ok {
					return nil
				}
				if e.Invalid() || e.AccessDenied() {
					return nil
				}
				if e.IsDir() {
					if excludedDir(e, includeHidden) || e.IsCurrentDir() || e.IsParentDir() {
						continue
					}
					if includeSubtree {
						stack = append(stack, childPath(dir, e.Name))
					}
					continue
				}
				info.addFile(e.Size())
			}
		})
		if err != nil {
			return FolderSizeInfo{}, err
		}
	}
	return info, nil
}

// excludedDir applies the attribute rules shared by the walker and the
// aggregator.
func excludedDir(e Entry, includeHidden bool) bool {
	if e.IsSystem() || e.IsTemporary() {
		return true
	}
	return e.IsHidden() && !includeHidden
}
