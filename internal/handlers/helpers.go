// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"fmt"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/i18n"
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

const headerContentLanguage = "Content-Language"

// render writes component as an HTML response with status. Nothing is
// written when the component fails. A page rendered outside the locale
// middleware still names its language when a localizer is present.
func render(c echo.Context, status int, component templ.Component) error {
	ctx := c.Request().Context()
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := component.Render(ctx, buf); err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	header := c.Response().Header()
	if header.Get(headerContentLanguage) == "" {
		if code := i18n.GetLocale(ctx); code != "" {
			header.Set(headerContentLanguage, code)
		}
	}
	return c.HTMLBlob(status, buf.Bytes())
}
