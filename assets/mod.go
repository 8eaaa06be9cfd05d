package assets

import (
	"embed"
)

//go:embed templates/*
var templatesFS embed.FS

// Read returns the content of an embedded template file, e.g.
// "vivado/firmware/myproject.cpp".
func Read(name string) ([]byte, error) {
	return templatesFS.ReadFile("templates/" + name)
}
