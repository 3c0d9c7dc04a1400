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

// FolderSizeInfo totals the files under a folder.
type FolderSizeInfo struct {
	FileCount  int64  `json:"fileCount" yaml:"fileCount"`
	TotalBytes uint64 `json:"totalBytes" yaml:"totalBytes"`
}

func (s *FolderSizeInfo) addFile(size uint64) {
	s.FileCount++
	if s.TotalBytes+size < s.TotalBytes {
		s.TotalBytes = ^uint64(0)
		return
	}
	s.TotalBytes += size
}

// FolderReport is one result of a walk: either *Completed or *Inaccessible.
type FolderReport interface {
	ReportPath() string
	// ReportDepth is the depth of the traversal frame the report came from.
	ReportDepth() int
	// Diagnostics lists non-fatal failures met while building the report.
	Diagnostics() []error
	folderReport()
}

// Completed is a folder that could be read. Size, SubtreeSize and Owner are
// left unset when not requested or when computing them failed.
type Completed struct {
	Path        string
	Name        string
	Depth       int
	Owner       string
	Size        *FolderSizeInfo
	SubtreeSize *FolderSizeInfo
	Problems    []error
}

// Inaccessible is a folder that refused access.
type Inaccessible struct {
	Path     string
	Message  string
	Depth    int
	Problems []error
}

func (r *Completed) ReportPath() string   { return r.Path }
func (r *Completed) ReportDepth() int     { return r.Depth }
func (r *Completed) Diagnostics() []error { return r.Problems }
func (r *Completed) folderReport()        {}

func (r *Inaccessible) ReportPath() string   { return r.Path }
func (r *Inaccessible) ReportDepth() int     { return r.Depth }
func (r *Inaccessible) Diagnostics() []error { return r.Problems }
func (r *Inaccessible) folderReport()        {}
