package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/babarot/organizeimg/internal/config"
	"github.com/babarot/organizeimg/internal/env"
	"github.com/babarot/organizeimg/internal/trash"
	"github.com/babarot/organizeimg/internal/trash/core"
	"github.com/babarot/organizeimg/internal/utils/debug"
	"github.com/babarot/organizeimg/internal/utils/log"
	"github.com/jessevdk/go-flags"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/rs/xid"
	slogmulti "github.com/samber/slog-multi"
)

type Option struct {
	Config string `long:"config" description:"Path to config file" default:""`

	Meta MetaOption `group:"Meta Options"`

	List  ListCommand  `command:"list" description:"List the images in directories"`
	Trash TrashCommand `command:"trash" description:"Move images to the trash"`
	Serve ServeCommand `command:"serve" description:"Answer JSON commands read from stdin"`
}

type MetaOption struct {
	Version bool   `short:"V" long:"version" description:"Show version"`
	Debug   string `long:"debug" description:"View debug logs (default: \"full\")" optional-value:"full" optional:"yes" choice:"full" choice:"live"`
}

type ListCommand struct {
	JSON bool `long:"json" description:"Print JSON even on a terminal"`
	MIME bool `long:"mime" description:"Show the type detected from the file contents (table only)"`
	Args struct {
		Dirs []string `positional-arg-name:"DIR" required:"1"`
	} `positional-args:"yes"`
}

type TrashCommand struct {
	Force   bool `short:"f" long:"force" description:"Never prompt"`
	Verbose bool `short:"v" long:"verbose" description:"Explain what is being done"`
	Args    struct {
		Files []string `positional-arg-name:"FILE" required:"1"`
	} `positional-args:"yes"`
}

type ServeCommand struct {
	MetricsAddr string `long:"metrics-addr" description:"Serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)"`
}

type CLI struct {
	version Version
	option  Option
	config  config.Config
	runID   string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	mover *trash.Mover
}

var runID = sync.OnceValue(func() string {
	return xid.New().String()
})

func Run(v Version) error {
	return run(v, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(v Version, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opt Option
	parser := flags.NewParser(&opt, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = v.AppName
	parser.SubcommandsOptional = true
	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			fmt.Fprintln(stdout, err)
			return nil
		}
		return err
	}

	c := CLI{
		version: v,
		option:  opt,
		runID:   runID(),
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
	}

	if opt.Meta.Version {
		fmt.Fprint(stdout, v.Print())
		return nil
	}

	cfg, err := config.Parse(opt.Config)
	if err != nil {
		return err
	}
	c.config = cfg

	closer := c.setupLogger()
	defer closer.Close()

	defer slog.Debug("main function finished")
	slog.Debug("main function started", "version", v.Version, "revision", v.Revision, "buildDate", v.BuildDate)

	command := ""
	if parser.Active != nil {
		command = parser.Active.Name
	}

	if err := c.Run(command); err != nil {
		slog.Error("exit", "error", fmt.Errorf("cli.run failed: %w", err))
		if command == "" && errors.Is(err, errNoCommand) {
			parser.WriteHelp(stderr)
		}
		return err
	}
	return nil
}

var errNoCommand = errors.New("too few arguments")

func (c *CLI) Run(command string) error {
	switch c.option.Meta.Debug {
	case "live":
		return debug.Logs(c.stdout, env.ORGANIZEIMG_LOG_PATH, c.config.Logging.Enabled, true)
	case "full":
		return debug.Logs(c.stdout, env.ORGANIZEIMG_LOG_PATH, c.config.Logging.Enabled, false)
	}

	switch command {
	case "list":
		return c.List(c.option.List.Args.Dirs, c.option.List.JSON)
	case "trash":
		return c.Trash(c.option.Trash.Args.Files)
	case "serve":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return c.Serve(ctx)
	default:
		return errNoCommand
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setupLogger sends logs to the rotated log file, and to stderr as well
// when ORGANIZEIMG_DEBUG is set. Logging never goes to stdout since serve
// speaks its protocol there.
func (c *CLI) setupLogger() io.Closer {
	lc := c.config.Logging
	if !lc.Enabled {
		slog.SetDefault(log.Discard())
		return nopCloser{}
	}

	level, err := log.ParseLevel(lc.Level)
	if err != nil {
		level = log.InfoLevel
	}
	format, err := log.ParseFormatter(lc.Format)
	if err != nil {
		format = log.TextFormatter
	}

	var closer io.Closer = nopCloser{}
	logger := log.New(
		log.UseOutput(c.stderr),
		log.UseOutputFunc(func() (io.Writer, error) {
			rw, err := log.NewRotateWriter(env.ORGANIZEIMG_LOG_PATH, lc.Rotation.MaxSize, lc.Rotation.MaxFiles)
			if err != nil {
				fmt.Fprintf(c.stderr, "%s: cannot open log file, logging to stderr: %v\n", c.version.AppName, err)
				return nil, err
			}
			closer = rw
			return rw, nil
		}),
		log.UseLevel(level),
		log.UseFormatter(format),
		log.UseReportCaller(true),
		log.AsDefault(),
	)
	handler := logger.Handler()
	if env.ORGANIZEIMG_DEBUG {
		handler = slogmulti.Fanout(handler, tint.NewHandler(c.stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
		}))
	}
	slog.SetDefault(slog.New(handler).With("run_id", c.runID))

	return closer
}

// trashMover returns the mover for the configured trash, creating it on
// first use
func (c *CLI) trashMover() (*trash.Mover, error) {
	if c.mover != nil {
		return c.mover, nil
	}

	tc, err := c.config.TrashConfig()
	if err != nil {
		return nil, err
	}
	newMover := func() (*trash.Mover, error) { return trash.New(tc) }
	if tc == core.NewDefaultConfig() {
		newMover = trash.Default
	}
	m, err := newMover()
	if err != nil {
		return nil, err
	}
	c.mover = m
	return m, nil
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
