// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package koopa_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/c-x-b/PKUCompiler/internal/koopa"
	"github.com/c-x-b/PKUCompiler/internal/parse"
)

// file looks up a named section of an archive; it fails the test if the
// section is missing.
func file(t *testing.T, a *txtar.Archive, name string) string {
	t.Helper()
	for _, f := range a.Files {
		if f.Name == name {
			return string(f.Data)
		}
	}
	t.Fatalf("archive has no %q section", name)
	return ""
}

func TestGoldenFixtures(t *testing.T) {
	paths, err := filepath.Glob("testdata/*.txtar")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no golden fixtures found")
	}
	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			a, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatal(err)
			}
			src := file(t, a, "in.c")
			want := file(t, a, "want.txt")

			unit := parse.New(path, []byte(src)).ParseCompUnit()
			got := koopa.Render(koopa.Emit(unit))

			for _, line := range strings.Split(strings.TrimSpace(want), "\n") {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if !bytes.Contains([]byte(got), []byte(line)) {
					t.Errorf("expected output to contain %q, got:\n%s", line, got)
				}
			}
		})
	}
}
