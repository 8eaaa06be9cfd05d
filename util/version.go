package util

import "fmt"

// Version describes a semantic tool version.
type Version struct {
	Major uint
	Minor uint
	Patch uint
}

// ToolVersion is the version of the ml2hw tool.
var ToolVersion = Version{1, 2, 0}

func (v Version) String() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}
