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
	"fmt"
	"iter"
	"path/filepath"
	"strings"

	"github.com/apex/log"
)

// OwnerLookup resolves the owning account of a path.
type OwnerLookup interface {
	ResolveOwner(path string) (string, error)
}

// Walker produces folder reports for a directory tree.
type Walker struct {
	Enum   Enumerator
	Sizer  SizeAggregator
	Owners OwnerLookup
	// Progress, when set, is called once for every emitted report before it
	// is handed to the consumer.
	Progress func(FolderReport)
	Logger   log.Interface
}

// NewWalker returns a Walker that sizes folders with an Aggregator over the
// same enumerator.
func NewWalker(enum Enumerator, owners OwnerLookup) *Walker {
	return &Walker{
		Enum:   enum,
		Sizer:  NewAggregator(enum),
		Owners: owners,
		Logger: log.Log,
	}
}

type frame struct {
	depth int
	path  string
	opts  TraversalOptions
}

// Walk lazily reports the folders under root. Fatal errors, such as root not
// existing, are yielded once with a nil report and end the sequence. When ctx
// is cancelled the sequence ends without another enumeration step; callers
// that need to tell cancellation from exhaustion check ctx.Err().
//
// A directory listing stops at its first invalid or denied entry, which is
// reported as Inaccessible.
func (w *Walker) Walk(ctx context.Context, root string, opts TraversalOptions) iter.Seq2[FolderReport, error] {
	return func(yield func(FolderReport, error) bool) {
		stack := []frame{{depth: 0, path: root, opts: opts}}
		for len(stack) > 0 {
			if ctx.Err() != nil {
				return
			}
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			err := withStream(w.Enum, f.path, func(s EntryStream) error {
				return w.enumerate(ctx, f, s, &stack, yield)
			})
			if errors.Is(err, errStopped) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

func (w *Walker) enumerate(ctx context.Context, f frame, s EntryStream, stack *[]frame, yield func(FolderReport, error) bool) error {
	for {
		if ctx.Err() != nil {
			return errStopped
		}
		e, ok := s.Next()
		if !ok {
			return nil
		}

		if e.Invalid() || e.AccessDenied() {
			r := &Inaccessible{Path: childPath(f.path, e.Name), Message: e.message(), Depth: f.depth}
			if !w.emit(r, yield) {
				return errStopped
			}
			return nil
		}

		if e.IsParentDir() || excludedDir(e, f.opts.IncludeHidden) {
			continue
		}
		current := e.IsCurrentDir()
		if current && !f.opts.IncludeCurrentFolder {
			continue
		}
		if !e.IsDir() {
			continue
		}

		path := childPath(f.path, e.Name)
		name := e.Name
		if current {
			name = filepath.Base(f.path)
		}

		report := w.buildReport(ctx, f, path, name)
		if ctx.Err() != nil {
			return errStopped
		}
		if matchesOwnerFilter(report, f.opts.OwnerFilter) {
			if !w.emit(report, yield) {
				return errStopped
			}
		}

		_, completed := report.(*Completed)
		if f.opts.IncludeSubtree && !current && completed &&
			(f.opts.ScanDepth == 0 || f.depth < f.opts.ScanDepth) {
			*stack = append(*stack, frame{depth: f.depth + 1, path: path, opts: f.opts.forChild()})
		}
	}
}

func (w *Walker) buildReport(ctx context.Context, f frame, path, name string) FolderReport {
	if w.Enum.IsAccessDenied(path) {
		return &Inaccessible{Path: path, Message: fmt.Sprintf("access denied: %s", path), Depth: f.depth}
	}
	r := &Completed{Path: path, Name: name, Depth: f.depth}
	logger := w.logger().WithField("path", path)

	if f.opts.ComputeSize {
		info, err := w.sizer().Aggregate(ctx, path, false, f.opts.IncludeHidden)
		if err != nil {
			logger.WithError(err).Debug("size aggregation failed")
			r.Problems = append(r.Problems, fmt.Errorf("size: %w", err))
		} else {
			r.Size = &info
		}
	}
	if f.opts.ComputeSizeForSubtree {
		info, err := w.sizer().Aggregate(ctx, path, true, f.opts.IncludeHidden)
		if err != nil {
			logger.WithError(err).Debug("subtree size aggregation failed")
			r.Problems = append(r.Problems, fmt.Errorf("subtree size: %w", err))
		} else {
			r.SubtreeSize = &info
		}
	}
	if f.opts.wantsOwner() && ctx.Err() == nil {
		if w.Owners == nil {
			r.Problems = append(r.Problems, errors.New("owner: no owner lookup configured"))
		} else if owner, err := w.Owners.ResolveOwner(path); err != nil {
			logger.WithError(err).Debug("owner lookup failed")
			r.Problems = append(r.Problems, fmt.Errorf("owner: %w", err))
		} else {
			r.Owner = owner
		}
	}
	return r
}

// matchesOwnerFilter keeps reports owned by filter plus every report that
// carries a failure.
func matchesOwnerFilter(r FolderReport, filter string) bool {
	if filter == "" {
		return true
	}
	if len(r.Diagnostics()) > 0 {
		return true
	}
	c, ok := r.(*Completed)
	if !ok {
		return true
	}
	return strings.EqualFold(c.Owner, filter)
}

func (w *Walker) emit(r FolderReport, yield func(FolderReport, error) bool) bool {
	if w.Progress != nil {
		w.Progress(r)
	}
	return yield(r, nil)
}

func (w *Walker) sizer() SizeAggregator {
	if w.Sizer == nil {
		w.Sizer = NewAggregator(w.Enum)
	}
	return w.Sizer
}

func (w *Walker) logger() log.Interface {
	if w.Logger == nil {
		return log.Log
	}
	return w.Logger
}

// Collect drains Walk. It returns the reports gathered so far together with
// the first fatal error, or ctx.Err() when the walk was cancelled.
func (w *Walker) Collect(ctx context.Context, root string, opts TraversalOptions) ([]FolderReport, error) {
	var reports []FolderReport
	for r, err := range w.Walk(ctx, root, opts) {
		if err != nil {
			return reports, err
		}
		reports = append(reports, r)
	}
	return reports, ctx.Err()
}
