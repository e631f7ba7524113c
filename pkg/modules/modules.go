// pkg/modules/modules.go
// Package modules registers all built-in OSFiler modules with the engine.
// Importing it (usually blank) makes the full module set discoverable by
// the runner.
package modules

import (
	_ "github.com/OnlyOneCookie/OSFiler/pkg/modules/media"
	_ "github.com/OnlyOneCookie/OSFiler/pkg/modules/osint"
)
