// Copyright 2024-2026 The helios Authors
// This file is part of the helios library.
//
// The helios library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The helios library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the helios library. If not, see <http://www.gnu.org/licenses/>.

package params

import "fmt"

var (
	// Following vars are injected through the build flags
	GitCommit string
	GitBranch string
	GitTag    string
)

const (
	VersionMajor    = 1
	VersionMinor    = 0
	VersionBuild    = 0
	VersionModifier = "alpha"
)

// Version holds the textual version string.
var Version = func() string {
	v := fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionBuild)
	if VersionModifier != "" && VersionModifier != "stable" {
		v += "-" + VersionModifier
	}
	return v
}()

// VersionWithCommit appends the short commit hash when known.
func VersionWithCommit(gitCommit string) string {
	vsn := Version
	if len(gitCommit) >= 8 {
		vsn += "-" + gitCommit[:8]
	}
	return vsn
}
