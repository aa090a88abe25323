// Package ui embeds the HTML templates so the server binary is
// self-contained regardless of working directory.
package ui

import "embed"

//go:embed templates
var Files embed.FS
