package hangman

import "embed"

// WebFS embeds the static client assets served at the site root.
//
//go:embed web
var WebFS embed.FS
