package scenes

import (
	"github.com/decker502/algoquest/pkg/game"
	"github.com/decker502/algoquest/pkg/quest"
)

// Scene is a type alias for game.Scene.
// All scene implementations should implement the game.Scene interface.
type Scene = game.Scene

var (
	_ Scene         = (*CampScene)(nil)
	_ game.Pausable = (*CampScene)(nil)
	_ Scene         = (*QuestScene)(nil)
	_ quest.Host    = (*QuestScene)(nil)
)
