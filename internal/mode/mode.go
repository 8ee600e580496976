// Package mode defines the services shared by mode controllers.
package mode

import (
	"github.com/zjrosen/spanmark/internal/annotations"
	"github.com/zjrosen/spanmark/internal/config"
	"github.com/zjrosen/spanmark/internal/labels"
	"github.com/zjrosen/spanmark/internal/mode/shared"
)

// Services contains shared dependencies injected into mode controllers.
type Services struct {
	Config     *config.Config
	ConfigPath string
	// Repository persists object lists. May be nil, in which case nothing
	// is saved.
	Repository annotations.Repository
	Clock      shared.Clock
	Clipboard  shared.Clipboard
	// Background is the terminal background translucent tints are mixed
	// over. The zero value is black.
	Background labels.RGB
}
