// Package web holds the embedded front-end assets.
package web

import "embed"

//go:embed templates static
var Assets embed.FS
