// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package assets provides the static assets of the application with
// content-hashed filenames.
package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strings"
)

const (
	// Prefix is the URL path static assets are served under.
	Prefix = "/static/"

	cssFile = "css/styles.css"
	jsFile  = "js/app.js"
)

// CSSPath returns the path to the main CSS file.
func CSSPath() string {
	return Path(cssFile)
}

// JSPath returns the path to the application script.
func JSPath() string {
	return Path(jsFile)
}

// hashedName inserts the first 8 hex digits of the SHA-256 of data before
// the extension of name: js/app.js becomes js/app.1a2b3c4d.js.
func hashedName(name string, data []byte) string {
	sum := sha256.Sum256(data)
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "." + hex.EncodeToString(sum[:4]) + ext
}
