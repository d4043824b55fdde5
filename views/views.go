// Package views embeds the HTML templates served by the uploader.
package views

import "embed"

//go:embed layouts pages partials
var FS embed.FS
