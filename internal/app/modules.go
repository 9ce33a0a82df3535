package app

import (
	"github.com/spawnsci/spawnrun/internal/registry"
	"github.com/spawnsci/spawnrun/modules/spawnindex"
)

// coreModules is the definitive list of analysis modules compiled into the
// spawnrun binary.
var coreModules = []registry.Module{
	&spawnindex.Module{},
}
