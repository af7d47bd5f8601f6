// Copyright 2024 The PKUCompiler Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package buildinfo answers cmd/sysyc's -V flag, following cmd/go's
// "-V=full" convention: print a canonical version string and exit.
package buildinfo

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// version is the embedded release tag. Overridden at link time with
// -ldflags "-X .../buildinfo.version=vX.Y.Z" by a release build; the
// default value below is what a plain `go build` from a checkout gets.
var version = "v0.0.0-dev"

// ToolID is the program name -V prints ahead of the version, matching
// cmd/compile's "compile version ..." / cmd/asm's "asm version ..." form.
const ToolID = "sysyc"

// String returns the line -V prints. An embedded version that doesn't
// parse as valid semver (a bad -ldflags build) still prints, tagged
// "invalid", instead of silently showing garbage as if it were a real
// release — semver.IsValid is the same check cmd/go's module loader runs
// before trusting a version string.
func String() string {
	v := version
	if !semver.IsValid(v) {
		return fmt.Sprintf("%s version %s (invalid semver)", ToolID, v)
	}
	return fmt.Sprintf("%s version %s", ToolID, semver.Canonical(v))
}
