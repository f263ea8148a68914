// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"github.com/BurntSushi/toml"
)

// LocaleFile is the part of the config file that flags cannot express:
//
//	[[i18n.locales]]
//	code = "fr"
//	iso = "fr-FR"
//	domain = "fr.example.com"
//
//	[i18n.fallbacks]
//	default = ["en"]
type LocaleFile struct {
	I18n struct {
		Locales   []locale.Locale     `toml:"locales"`
		Fallbacks map[string][]string `toml:"fallbacks"`
	} `toml:"i18n"`
}

// LoadLocaleFile decodes the locale tables of the TOML file at path. A
// missing file yields nil.
func LoadLocaleFile(path string) (*LocaleFile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var file LocaleFile
	if _, err := toml.Decode(string(data), &file); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &file, nil
}
