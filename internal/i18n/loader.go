// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package i18n

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

//go:embed translations/*.toml
var translationFS embed.FS

var unmarshalFuncs = map[string]i18n.UnmarshalFunc{
	"toml": toml.Unmarshal,
}

// Loader returns the messages of one locale.
type Loader func(ctx context.Context, code string) ([]*i18n.Message, error)

// FSLoader reads message files from fsys. files maps a locale code to its
// files; a locale without an entry uses translations/active.<code>.toml.
// Missing files are skipped.
func FSLoader(fsys fs.FS, files map[string][]string) Loader {
	return func(ctx context.Context, code string) ([]*i18n.Message, error) {
		paths := files[code]
		if len(paths) == 0 {
			paths = []string{path.Join("translations", "active."+code+".toml")}
		}

		var messages []*i18n.Message
		for _, p := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			buf, err := fs.ReadFile(fsys, p)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", p, err)
			}
			file, err := i18n.ParseMessageFileBytes(buf, p, unmarshalFuncs)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", p, err)
			}
			messages = append(messages, file.Messages...)
		}
		return messages, nil
	}
}

// EmbeddedLoader reads the translations shipped with the binary.
func EmbeddedLoader() Loader {
	return FSLoader(translationFS, nil)
}
