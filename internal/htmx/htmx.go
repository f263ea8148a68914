// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package htmx reads htmx request headers and answers with htmx navigation
// headers. An htmx request is a navigation inside an already loaded page.
package htmx

import (
	"net/http"
	"net/url"
)

// Header constants for htmx request headers.
const (
	HeaderRequest        = "HX-Request"
	HeaderBoosted        = "HX-Boosted"
	HeaderCurrentURL     = "HX-Current-URL"
	HeaderHistoryRestore = "HX-History-Restore-Request"
	HeaderTarget         = "HX-Target"
	HeaderTrigger        = "HX-Trigger"
)

// Header constants for htmx response headers.
const (
	HeaderLocation   = "HX-Location"
	HeaderPushURL    = "HX-Push-Url"
	HeaderRedirect   = "HX-Redirect"
	HeaderRefresh    = "HX-Refresh"
	HeaderReplaceURL = "HX-Replace-Url"
)

// Request contains information about an htmx request.
type Request struct { //nolint:govet // fieldalignment not critical
	IsHtmx           bool
	IsBoosted        bool
	CurrentURL       string // HX-Current-URL, the page the request came from
	IsHistoryRestore bool
	Target           string
	Trigger          string
}

// ParseRequest extracts htmx information from request headers.
func ParseRequest(r *http.Request) *Request {
	return &Request{
		IsHtmx:           r.Header.Get(HeaderRequest) == "true",
		IsBoosted:        r.Header.Get(HeaderBoosted) == "true",
		CurrentURL:       r.Header.Get(HeaderCurrentURL),
		IsHistoryRestore: r.Header.Get(HeaderHistoryRestore) == "true",
		Target:           r.Header.Get(HeaderTarget),
		Trigger:          r.Header.Get(HeaderTrigger),
	}
}

// ClientNavigation reports whether the request navigates inside a loaded
// page. History restores load a whole document and do not count.
func (r *Request) ClientNavigation() bool {
	return r.IsHtmx && !r.IsHistoryRestore
}

// PreviousURL returns the URL the request was made from: HX-Current-URL for
// htmx requests, a same-host Referer otherwise.
func PreviousURL(r *http.Request) string {
	if current := r.Header.Get(HeaderCurrentURL); current != "" {
		return current
	}
	referer := r.Header.Get("Referer")
	if referer == "" {
		return ""
	}
	u, err := url.Parse(referer)
	if err != nil || u.Host != r.Host {
		return ""
	}
	return referer
}

// Redirect sends the client to target. htmx requests get HX-Redirect for a
// full page load or HX-Location for an in-page navigation; other requests
// get a regular redirect with status.
func Redirect(w http.ResponseWriter, r *http.Request, target string, status int, hard bool) {
	if ParseRequest(r).IsHtmx {
		if hard {
			w.Header().Set(HeaderRedirect, target)
		} else {
			w.Header().Set(HeaderLocation, target)
		}
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, status)
}
