// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build dev

package assets

import (
	"net/http"
)

// Path returns the unhashed URL of name; dev builds serve from disk.
func Path(name string) string {
	return Prefix + name
}

// FileServer returns an http.Handler that serves static files from the filesystem.
func FileServer() http.Handler {
	return http.FileServer(http.Dir("internal/assets/static"))
}
