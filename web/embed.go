// Package web carries the embedded dashboard assets.
package web

import "embed"

// Templates embeds the layout, partial and page templates the view
// engine parses at startup.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static embeds the stylesheet and any other assets served under /static.
//
//go:embed static/**/*
var Static embed.FS
