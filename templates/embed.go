// Package templates embeds the default workspace configuration.
package templates

import "embed"

//go:embed config.yaml queues.yaml
var FS embed.FS
