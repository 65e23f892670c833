// Package assets embeds the dashboard's static files.
package assets

import "embed"

//go:embed static
var staticFS embed.FS

// StaticFS returns the embedded static tree rooted above "static".
func StaticFS() embed.FS {
	return staticFS
}
