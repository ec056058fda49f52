// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLocal_ListExcludesGlobs(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "recipes/foo/foo.bb", "SUMMARY = \"foo\"\n")
	writeTestFile(t, root, "recipes/foo/build.log", "ignored\n")
	writeTestFile(t, root, ".git/HEAD", "ref: refs/heads/main\n")

	stats, err := Local{}.List(context.Background(), root, []string{"**/*.log", ".git/**"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	var sawBB, sawLog, sawGit bool
	for _, s := range stats {
		switch {
		case filepath.Ext(s.Path) == ".bb":
			sawBB = true
		case filepath.Ext(s.Path) == ".log":
			sawLog = true
		}
		if filepath.Base(filepath.Dir(s.Path)) == ".git" {
			sawGit = true
		}
	}
	if !sawBB {
		t.Errorf("expected foo.bb in listing: %+v", stats)
	}
	if sawLog {
		t.Errorf("build.log should have been excluded: %+v", stats)
	}
	if sawGit {
		t.Errorf(".git/HEAD should have been excluded: %+v", stats)
	}
}

func TestLocal_ReadFile(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.h", "#define FOO 1\n")

	got, err := Local{}.ReadFile(context.Background(), filepath.Join(root, "a.h"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got != "#define FOO 1\n" {
		t.Errorf("ReadFile = %q", got)
	}

	_, err = Local{}.ReadFile(context.Background(), filepath.Join(root, "missing.h"))
	if err == nil {
		t.Fatal("ReadFile(missing) expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(err) = false, want true for %v", err)
	}
}

func TestLocal_PathExists(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.h", "x")

	ok, err := Local{}.PathExists(context.Background(), filepath.Join(root, "a.h"))
	if err != nil || !ok {
		t.Fatalf("PathExists(a.h) = %v, %v", ok, err)
	}

	ok, err = Local{}.PathExists(context.Background(), filepath.Join(root, "missing.h"))
	if err != nil || ok {
		t.Fatalf("PathExists(missing.h) = %v, %v", ok, err)
	}
}

func TestLocal_WriteFileCreatesDirs(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "nested", "dir", "out.txt")

	if err := (Local{}).WriteFile(context.Background(), target, []byte("hello")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile after WriteFile: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("content = %q, want hello", got)
	}
}

func TestLocal_ExecCapturesOutputAndExitCode(t *testing.T) {
	res, err := Local{}.Exec(context.Background(), "echo out; echo err 1>&2; exit 3", 5)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if res.Stdout != "out\n" {
		t.Errorf("Stdout = %q", res.Stdout)
	}
	if res.Stderr != "err\n" {
		t.Errorf("Stderr = %q", res.Stderr)
	}
}
