package trash

import (
	"github.com/babarot/organizeimg/internal/trash/core"
	"github.com/babarot/organizeimg/internal/trash/finder"
)

func newBackend(core.Config) (core.Backend, error) {
	return finder.New(), nil
}
