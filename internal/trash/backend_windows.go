package trash

import (
	"github.com/babarot/organizeimg/internal/trash/core"
	"github.com/babarot/organizeimg/internal/trash/recyclebin"
)

func newBackend(core.Config) (core.Backend, error) {
	return recyclebin.New(), nil
}
