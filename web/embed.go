// Package web embeds the HTML templates and static assets served by the
// application binary.
package web

import "embed"

// Templates holds the layout, partial and page templates.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds stylesheets and the board script.
//
//go:embed static/**/*
var Static embed.FS
