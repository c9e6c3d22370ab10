// Package levels embeds the scene files shipped with the game.
package levels

import "embed"

//go:embed *.json
var FS embed.FS
