// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build !dev

package assets

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
)

//go:embed static
var staticFS embed.FS

type manifest struct {
	hashed  map[string]string // name -> hashed name
	logical map[string]string // hashed name -> name
}

var assets = buildManifest(staticFS)

func buildManifest(fsys fs.FS) *manifest {
	m := &manifest{hashed: make(map[string]string), logical: make(map[string]string)}
	err := fs.WalkDir(fsys, "static", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		name := strings.TrimPrefix(p, "static/")
		h := hashedName(name, data)
		m.hashed[name] = h
		m.logical[h] = name
		return nil
	})
	if err != nil {
		slog.Error("failed to hash static assets", "error", err)
	}
	slog.Debug("loaded asset paths", "assets", m.hashed)
	return m
}

// Path returns the URL of the embedded file name, with its content hash when
// the file is known.
func Path(name string) string {
	if h, ok := assets.hashed[name]; ok {
		return Prefix + h
	}
	return Prefix + name
}

// FileServer returns an http.Handler that serves embedded static files under
// their plain and hashed names. It expects the Prefix to be stripped.
func FileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("failed to create sub filesystem: " + err.Error())
	}
	files := http.FileServerFS(sub)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if name, ok := assets.logical[strings.TrimPrefix(r.URL.Path, "/")]; ok {
			r2 := r.Clone(r.Context())
			r2.URL.Path = "/" + name
			r2.URL.RawPath = ""
			r = r2
		}
		files.ServeHTTP(w, r)
	})
}
