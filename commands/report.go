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
	"io"
	"time"

	"github.com/openpubkey/aclaudit/security"
	"github.com/openpubkey/aclaudit/walker"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// reportSummary counts what a report run found.
type reportSummary struct {
	Folders   int `json:"folders" yaml:"folders"`
	Denied    int `json:"denied" yaml:"denied"`
	Problems  int `json:"problems" yaml:"problems"`
	AclErrors int `json:"aclErrors" yaml:"aclErrors"`
	Rules     int `json:"rules" yaml:"rules"`
}

func (s reportSummary) exitCode() int {
	if s.Denied > 0 || s.Problems > 0 || s.AclErrors > 0 {
		return 1
	}
	return 0
}

type reportView struct {
	Folders []*folderView `json:"folders" yaml:"folders"`
	Summary reportSummary `json:"summary" yaml:"summary"`
}

type reportOptions struct {
	traversal         walker.TraversalOptions
	workers           int
	cacheTTL          time.Duration
	includeUnresolved bool
	failOnProblems    bool
}

func newReportCmd(ro *rootOptions) *cobra.Command {
	var flags scanFlags
	var workers int
	var includeUnresolved, failOnProblems bool

	cmd := &cobra.Command{
		Use:   "report PATH",
		Short: "Walk a folder tree and list the access rules of every folder",
		Long: `Walk a folder tree like scan and list the access rules of every readable
folder, followed by a summary of denied folders and failures.

Run elevated to see folders that only administrators can read.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traversal, err := flags.apply(cmd, ro.cfg.Scan.TraversalOptions())
			if err != nil {
				return err
			}
			opts := reportOptions{
				traversal:         traversal,
				workers:           ro.cfg.Report.Workers,
				cacheTTL:          ro.cfg.Report.CacheTTL,
				includeUnresolved: ro.cfg.Acl.IncludeUnresolved,
				failOnProblems:    failOnProblems,
			}
			if cmd.Flags().Changed("workers") {
				opts.workers = workers
			}
			if cmd.Flags().Changed("include-unresolved") {
				opts.includeUnresolved = includeUnresolved
			}
			if opts.workers < 1 {
				return fmt.Errorf("--workers must be at least 1, got %d", opts.workers)
			}
			return runReport(cmd, ro, NewDeps(), args[0], opts)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&workers, "workers", 4, "Number of folders whose rules are read concurrently")
	cmd.Flags().BoolVar(&includeUnresolved, "include-unresolved", false, "List rules for unresolvable SIDs")
	cmd.Flags().BoolVar(&failOnProblems, "fail-on-problems", false, "Exit non-zero when any folder was denied or failed")
	return cmd
}

func runReport(cmd *cobra.Command, ro *rootOptions, deps Deps, root string, opts reportOptions) error {
	ctx := cmd.Context()
	logger := ro.logger

	if elevated, err := IsElevatedFunc(); err != nil {
		logger.WithError(err).Debug("failed to check elevation")
	} else if !elevated {
		logger.Warn("not running elevated; folders readable only by administrators will be reported as denied")
	}

	cache := security.NewCachingResolver(security.NewResolver(deps.Lookup), opts.cacheTTL)
	extractor := deps.extractor(cache, opts.includeUnresolved, logger)

	w := deps.walker(logger)
	progress := newProgressLine(cmd.ErrOrStderr())
	w.Progress = progress.update

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)

	views := []*folderView{}
	var walkErr error
	for r, err := range w.Walk(ctx, root, opts.traversal) {
		if err != nil {
			walkErr = err
			break
		}
		v := newFolderView(r)
		views = append(views, v)
		if v.denied() {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			acls, err := extractor.GetAclView(v.Path)
			if err != nil {
				logger.WithField("path", v.Path).WithError(err).Debug("failed to read access rules")
				v.AclError = err.Error()
				return nil
			}
			v.Acls = acls
			return nil
		})
	}
	groupErr := g.Wait()
	progress.done()

	if walkErr != nil {
		return walkErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if groupErr != nil {
		return groupErr
	}
	logger.WithField("accounts", cache.Len()).Debug("account cache")

	view := reportView{Folders: views, Summary: summarize(views)}
	out := cmd.OutOrStdout()
	if ro.output == OutputText {
		writeReportText(out, view)
	} else if err := writeStructured(out, ro.output, view); err != nil {
		return err
	}

	if opts.failOnProblems && view.Summary.exitCode() != 0 {
		return fmt.Errorf("report found %d denied folders and %d folders with failures",
			view.Summary.Denied, view.Summary.Problems+view.Summary.AclErrors)
	}
	return nil
}

func summarize(views []*folderView) reportSummary {
	var s reportSummary
	for _, v := range views {
		s.Folders++
		if v.denied() {
			s.Denied++
		}
		if len(v.Problems) > 0 {
			s.Problems++
		}
		if v.AclError != "" {
			s.AclErrors++
		}
		s.Rules += len(v.Acls)
	}
	return s
}

func writeReportText(w io.Writer, view reportView) {
	for _, v := range view.Folders {
		writeFolderText(w, v)
	}
	s := view.Summary
	fmt.Fprintf(w, "\n=== SUMMARY ===\n")
	fmt.Fprintf(w, "Folders Reported:      %d\n", s.Folders)
	fmt.Fprintf(w, "Denied:                %d\n", s.Denied)
	fmt.Fprintf(w, "With Problems:         %d\n", s.Problems)
	fmt.Fprintf(w, "Rule Read Failures:    %d\n", s.AclErrors)
	fmt.Fprintf(w, "Access Rules:          %d\n", s.Rules)
	if s.exitCode() == 0 {
		fmt.Fprintf(w, "\n(no issues detected)\n")
	} else {
		fmt.Fprintf(w, "\n(issues detected)\n")
	}
}
