//go:build !windows
// +build !windows

package commands

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/openpubkey/aclaudit/walker"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type folderJSON struct {
	Path    string `json:"path"`
	Depth   int    `json:"depth"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Owner   string `json:"owner"`
	Size    *struct {
		FileCount  int64  `json:"fileCount"`
		TotalBytes uint64 `json:"totalBytes"`
	} `json:"size"`
	Problems []string  `json:"problems"`
	Acls     []aclJSON `json:"acls"`
	AclError string    `json:"aclError"`
}

type aclJSON struct {
	Account     string `json:"account"`
	Access      string `json:"access"`
	Rights      string `json:"rights"`
	Inherited   bool   `json:"inherited"`
	AccountType string `json:"accountType"`
}

func paths(folders []folderJSON) []string {
	var out []string
	for _, f := range folders {
		out = append(out, f.Path)
	}
	return out
}

func TestScanText(t *testing.T) {
	f := newFixture(t)
	out, _, err := f.run(t, context.Background(), "scan", "/data")
	require.NoError(t, err)

	require.Contains(t, out, "[DENIED] /data/private: access denied: /data/private\n")
	require.Contains(t, out, "[OK]     /data/projects\n")
	require.Contains(t, out, "[OK]     /data/projects/src\n")
	require.NotContains(t, out, ".cache")
}

func TestScanJSON(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantPaths []string
	}{
		{
			name:      "whole tree",
			args:      nil,
			wantPaths: []string{"/data/private", "/data/projects", "/data/projects/src"},
		},
		{
			name:      "immediate children",
			args:      []string{"--subtree=false"},
			wantPaths: []string{"/data/private", "/data/projects"},
		},
		{
			name:      "hidden and current",
			args:      []string{"--hidden", "--current"},
			wantPaths: []string{"/data", "/data/.cache", "/data/private", "/data/projects", "/data/projects/src"},
		},
		{
			name:      "owner filter keeps denied folders",
			args:      []string{"--owner-filter", `corp\BOB`},
			wantPaths: []string{"/data/private", "/data/projects/src"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			args := append([]string{"scan", "/data", "-o", "json"}, tt.args...)
			out, _, err := f.run(t, context.Background(), args...)
			require.NoError(t, err)

			var folders []folderJSON
			require.NoError(t, json.Unmarshal([]byte(out), &folders))
			require.Equal(t, tt.wantPaths, paths(folders))
		})
	}
}

func TestScanSizesAndOwners(t *testing.T) {
	f := newFixture(t)
	out, _, err := f.run(t, context.Background(), "scan", "/data", "--size", "--owner", "-o", "json")
	require.NoError(t, err)

	var folders []folderJSON
	require.NoError(t, json.Unmarshal([]byte(out), &folders))
	require.Len(t, folders, 3)

	private, projects, src := folders[0], folders[1], folders[2]
	require.Equal(t, "denied", private.Status)
	require.Empty(t, private.Owner)
	require.Nil(t, private.Size)

	require.Equal(t, "ok", projects.Status)
	require.Equal(t, `CORP\alice`, projects.Owner)
	require.NotNil(t, projects.Size)
	require.Equal(t, int64(1), projects.Size.FileCount)
	require.Equal(t, uint64(20), projects.Size.TotalBytes)
	require.Equal(t, 0, projects.Depth)

	require.Equal(t, `CORP\bob`, src.Owner)
	require.Equal(t, uint64(10), src.Size.TotalBytes)
	require.Equal(t, 1, src.Depth)
}

func TestScanOwnerFailureIsAProblem(t *testing.T) {
	f := newFixture(t)
	delete(f.source.descriptors, "/data/projects/src")

	out, _, err := f.run(t, context.Background(), "scan", "/data", "--owner")
	require.NoError(t, err)
	require.Contains(t, out, "[OK]     /data/projects/src\n    [WARN]   owner: query owner /data/projects/src")
}

func TestScanMissingRoot(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.run(t, context.Background(), "scan", "/nope")
	require.ErrorIs(t, err, walker.ErrDirectoryNotFound)
}

func TestScanCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, _, err := f.run(t, ctx, "scan", "/data")
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, out)
}

func TestScanNegativeDepth(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.run(t, context.Background(), "scan", "/data", "--depth=-1")
	require.ErrorContains(t, err, "--depth")
}

func TestScanUsesConfig(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, afero.WriteFile(f.fs, "/etc/aclaudit.yml", []byte(`
output: yaml
scan:
  include_hidden: true
  include_subtree: false
`), 0o644))

	out, _, err := f.run(t, context.Background(), "scan", "/data", "--config", "/etc/aclaudit.yml")
	require.NoError(t, err)

	var folders []folderJSON
	require.NoError(t, yaml.Unmarshal([]byte(out), &folders))
	require.Len(t, folders, 3)
	require.Contains(t, out, "path: /data/.cache")
	require.NotContains(t, out, "/data/projects/src")

	// Flags win over the file.
	out, _, err = f.run(t, context.Background(), "scan", "/data", "--config", "/etc/aclaudit.yml", "--hidden=false", "-o", "text")
	require.NoError(t, err)
	require.NotContains(t, out, ".cache")
	require.Contains(t, out, "[OK]     /data/projects\n")
}

func TestExplicitConfigMustExist(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.run(t, context.Background(), "scan", "/data", "--config", "/missing.yml")
	require.ErrorContains(t, err, "/missing.yml")
}

func TestSize(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "subtree", args: nil, want: "/data: 2 files, 30 B\n"},
		{name: "hidden", args: []string{"--hidden"}, want: "/data: 3 files, 60 B\n"},
		{name: "direct files only", args: []string{"--subtree=false"}, want: "/data: 0 files, 0 B\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			out, _, err := f.run(t, context.Background(), append([]string{"size", "/data"}, tt.args...)...)
			require.NoError(t, err)
			require.Equal(t, tt.want, out)
		})
	}

	f := newFixture(t)
	out, _, err := f.run(t, context.Background(), "size", "/data/projects", "--subtree=false")
	require.NoError(t, err)
	require.Equal(t, "/data/projects: 1 file, 20 B\n", out)
}

func TestSizeJSON(t *testing.T) {
	f := newFixture(t)
	out, _, err := f.run(t, context.Background(), "size", "/data", "--hidden", "-o", "json")
	require.NoError(t, err)
	require.JSONEq(t, `{"path": "/data", "fileCount": 3, "totalBytes": 60}`, out)
}

func TestSizeMissing(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.run(t, context.Background(), "size", "/nope")
	require.ErrorIs(t, err, walker.ErrDirectoryNotFound)
}

func TestOwner(t *testing.T) {
	f := newFixture(t)
	out, _, err := f.run(t, context.Background(), "owner", "/data/projects/src")
	require.NoError(t, err)
	require.Equal(t, "CORP\\bob\n", out)

	out, _, err = f.run(t, context.Background(), "owner", "/data", "-o", "json")
	require.NoError(t, err)
	require.JSONEq(t, `{"path": "/data", "owner": "CORP\\alice"}`, out)

	_, _, err = f.run(t, context.Background(), "owner", "/data/private")
	require.ErrorContains(t, err, "owner lookup failed")
}

func TestAcl(t *testing.T) {
	f := newFixture(t)
	out, _, err := f.run(t, context.Background(), "acl", "/data/projects/src", "-o", "json")
	require.NoError(t, err)

	var view struct {
		Path string    `json:"path"`
		Acls []aclJSON `json:"acls"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Equal(t, []aclJSON{
		{Account: `CORP\bob`, Access: "Deny", Rights: "Write", AccountType: "User"},
	}, view.Acls)

	out, _, err = f.run(t, context.Background(), "acl", "/data/projects/src", "-o", "json", "--include-unresolved")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Acls, 2)
	require.Equal(t, orphanSID.String(), view.Acls[1].Account)
	require.Equal(t, "Modify", view.Acls[1].Rights)
	require.Equal(t, "Unclassified", view.Acls[1].AccountType)
}

func TestAclText(t *testing.T) {
	f := newFixture(t)
	out, _, err := f.run(t, context.Background(), "acl", "/data/projects")
	require.NoError(t, err)
	require.Contains(t, out, `Allow CORP\alice`)
	require.Contains(t, out, "FullControl")
	require.Contains(t, out, `Allow CORP\bob`)
}

func TestAclQueryFailure(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.run(t, context.Background(), "acl", "/data/private")
	require.ErrorContains(t, err, "query DACL /data/private")
}
