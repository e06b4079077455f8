// Package debug prints the log file for --debug
package debug

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/nxadm/tail"
)

// Logs writes the log file at path to w. With live set it follows the
// file from its end, the way tail -f does, as long as stdout is a terminal.
func Logs(w io.Writer, path string, enabled, live bool) error {
	if live {
		return tailLiveLogs(w, path, enabled)
	}
	return showExistingLogs(w, path, enabled)
}

func tailLiveLogs(w io.Writer, path string, enabled bool) error {
	if !enabled {
		return errors.New("logging is not enabled in config: enable logging in config for live debugging")
	}

	follow := isatty.IsTerminal(os.Stdout.Fd())
	t, err := tail.TailFile(path, tail.Config{
		ReOpen: follow,
		Follow: follow,
		Poll:   true,
		Logger: tail.DiscardingLogger,
		Location: &tail.SeekInfo{
			Offset: 0,
			Whence: io.SeekEnd,
		},
	})
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New("log file does not exist: try running some commands with logging enabled")
		}
		return err
	}
	defer t.Cleanup()

	slog.Info("live tail started", "path", path)
	for line := range t.Lines {
		if line.Err != nil {
			return line.Err
		}
		fmt.Fprintln(w, line.Text)
	}

	return nil
}

func showExistingLogs(w io.Writer, path string, enabled bool) error {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if !enabled {
			return errors.New("logging is not enabled in config: enable logging to create log files")
		}
		return errors.New("no log file exists yet: try running some commands first")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fmt.Fprintln(w, scanner.Text())
	}

	return scanner.Err()
}
