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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/openpubkey/aclaudit/security"
	"github.com/openpubkey/aclaudit/walker"
	"github.com/thediveo/enumflag/v2"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// OutputFormat selects how command results are written to stdout.
type OutputFormat enumflag.Flag

const (
	OutputText OutputFormat = iota
	OutputJSON
	OutputYAML
)

var outputFormatIds = map[OutputFormat][]string{
	OutputText: {"text"},
	OutputJSON: {"json"},
	OutputYAML: {"yaml", "yml"},
}

func parseOutputFormat(s string) (OutputFormat, error) {
	for f, names := range outputFormatIds {
		for _, name := range names {
			if strings.EqualFold(name, s) {
				return f, nil
			}
		}
	}
	return OutputText, fmt.Errorf("unknown output format %q", s)
}

const (
	statusOK     = "ok"
	statusDenied = "denied"
)

var (
	okColor     = color.New(color.FgGreen)
	deniedColor = color.New(color.FgRed, color.Bold)
	warnColor   = color.New(color.FgYellow)
)

func badge(c *color.Color, label string) string {
	return c.Sprintf("%-8s", label)
}

// folderView is the rendered form of one folder report.
type folderView struct {
	Path        string                 `json:"path" yaml:"path"`
	Depth       int                    `json:"depth" yaml:"depth"`
	Status      string                 `json:"status" yaml:"status"`
	Message     string                 `json:"message,omitempty" yaml:"message,omitempty"`
	Owner       string                 `json:"owner,omitempty" yaml:"owner,omitempty"`
	Size        *walker.FolderSizeInfo `json:"size,omitempty" yaml:"size,omitempty"`
	SubtreeSize *walker.FolderSizeInfo `json:"subtreeSize,omitempty" yaml:"subtreeSize,omitempty"`
	Problems    []string               `json:"problems,omitempty" yaml:"problems,omitempty"`
	Acls        []security.Acl         `json:"acls,omitempty" yaml:"acls,omitempty"`
	AclError    string                 `json:"aclError,omitempty" yaml:"aclError,omitempty"`
}

func newFolderView(r walker.FolderReport) *folderView {
	v := &folderView{Path: r.ReportPath(), Depth: r.ReportDepth()}
	for _, err := range r.Diagnostics() {
		v.Problems = append(v.Problems, err.Error())
	}
	switch r := r.(type) {
	case *walker.Completed:
		v.Status = statusOK
		v.Owner = r.Owner
		v.Size = r.Size
		v.SubtreeSize = r.SubtreeSize
	case *walker.Inaccessible:
		v.Status = statusDenied
		v.Message = r.Message
	}
	return v
}

func (v *folderView) denied() bool { return v.Status == statusDenied }

func formatSize(s *walker.FolderSizeInfo) string {
	files := "files"
	if s.FileCount == 1 {
		files = "file"
	}
	return fmt.Sprintf("%s %s, %s", humanize.Comma(s.FileCount), files, humanize.Bytes(s.TotalBytes))
}

func writeFolderText(w io.Writer, v *folderView) {
	if v.denied() {
		fmt.Fprintf(w, "%s %s: %s\n", badge(deniedColor, "[DENIED]"), v.Path, v.Message)
		return
	}
	fmt.Fprintf(w, "%s %s", badge(okColor, "[OK]"), v.Path)
	if v.Owner != "" {
		fmt.Fprintf(w, "  owner=%s", v.Owner)
	}
	if v.Size != nil {
		fmt.Fprintf(w, "  size=%s", formatSize(v.Size))
	}
	if v.SubtreeSize != nil {
		fmt.Fprintf(w, "  subtree=%s", formatSize(v.SubtreeSize))
	}
	fmt.Fprintln(w)
	for _, p := range v.Problems {
		fmt.Fprintf(w, "    %s %s\n", badge(warnColor, "[WARN]"), p)
	}
	if v.AclError != "" {
		fmt.Fprintf(w, "    %s %s\n", badge(warnColor, "[WARN]"), v.AclError)
	}
	writeAclsText(w, v.Acls, "    ")
}

func writeAclsText(w io.Writer, acls []security.Acl, indent string) {
	for _, a := range acls {
		origin := "explicit"
		if a.Inherited {
			origin = "inherited"
		}
		fmt.Fprintf(w, "%s%-5s %-40s %-30s %-9s %s, %s\n", indent, a.AccessType, a.AccountName, a.Rights, origin, a.InheritanceFlags, a.PropagationFlags)
	}
}

func writeStructured(w io.Writer, format OutputFormat, v any) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("output format %v is not structured", format)
}

// progressLine keeps a running folder count on a terminal.
type progressLine struct {
	w       io.Writer
	enabled bool
	count   int
}

func newProgressLine(w io.Writer) *progressLine {
	f, ok := w.(*os.File)
	return &progressLine{w: w, enabled: ok && term.IsTerminal(int(f.Fd()))}
}

func (p *progressLine) update(r walker.FolderReport) {
	if !p.enabled {
		return
	}
	p.count++
	path := r.ReportPath()
	if len(path) > 60 {
		path = "..." + path[len(path)-57:]
	}
	fmt.Fprintf(p.w, "\r\033[K%d folders  %s", p.count, path)
}

func (p *progressLine) done() {
	if p.enabled && p.count > 0 {
		fmt.Fprint(p.w, "\r\033[K")
	}
}
