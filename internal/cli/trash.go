package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"al.essio.dev/pkg/shellescape"
	"github.com/babarot/organizeimg/internal/ui"
	"github.com/fatih/color"
)

// Trash moves each file to the trash, one at a time, stopping at the
// first failure. It asks first unless --force is given or stdin is not
// a terminal.
func (c *CLI) Trash(files []string) error {
	slog.Debug("cli.trash started", "files", files)
	defer slog.Debug("cli.trash finished")

	if len(files) == 0 {
		return errors.New("too few arguments")
	}

	if !c.option.Trash.Force && isTerminal(c.stdin) {
		ok, err := ui.Confirm(fmt.Sprintf("Delete %d images?", len(files)), c.stdin, c.stdout)
		if err != nil {
			return fmt.Errorf("confirm failed: %w", err)
		}
		if !ok {
			slog.Info("trash canceled by user")
			return nil
		}
	}

	m, err := c.trashMover()
	if err != nil {
		return err
	}

	for _, file := range files {
		if err := m.Trash(file); err != nil {
			return err
		}
		if c.option.Trash.Verbose {
			fmt.Fprintf(c.stdout, "%s %s\n", color.GreenString("trashed"), shellescape.Quote(file))
		}
	}

	return nil
}
