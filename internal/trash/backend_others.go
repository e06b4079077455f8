//go:build !darwin && !windows

package trash

import (
	"github.com/babarot/organizeimg/internal/trash/core"
	"github.com/babarot/organizeimg/internal/trash/xdg"
)

func newBackend(cfg core.Config) (core.Backend, error) {
	return xdg.NewStorage(cfg)
}
