// Package bridge serves the image commands to a host process over a
// stream of newline-delimited JSON messages.
//
// A request looks like
//
//	{"id": "1", "command": "get_images", "args": {"path": "/photos"}}
//
// and is answered with a single line
//
//	{"id": "1", "ok": true, "result": [{"path": "/photos/a.jpg", "size": 10}]}
//
// or, on failure, {"id": "1", "ok": false, "error": "invalid directory"}.
package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/babarot/organizeimg/internal/images"
	"github.com/babarot/organizeimg/internal/metrics"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	CommandGetImages  = "get_images"
	CommandTrashImage = "trash_image"
)

// maxLineSize bounds a single request line
const maxLineSize = 1 << 20

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMalformed      = errors.New("malformed request")
)

// Request is a single command sent by the host
type Request struct {
	ID      string `json:"id,omitempty"`
	Command string `json:"command"`
	Args    Args   `json:"args"`
}

// Args are the command arguments. Both commands take a single path.
type Args struct {
	Path string `json:"path"`
}

// Response answers exactly one Request
type Response struct {
	ID     string          `json:"id"`
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Trasher moves a file to the trash
type Trasher interface {
	Trash(path string) error
}

// Server dispatches requests to the directory lister and the trash mover
type Server struct {
	list    func(dir string) ([]images.Entry, error)
	trasher Trasher
	filter  images.FilterOptions
	limit   int
	metrics *metrics.Metrics
}

type Option func(*Server)

// WithFilter applies exclusion rules to every get_images result
func WithFilter(opts images.FilterOptions) Option {
	return func(s *Server) {
		s.filter = opts
	}
}

// WithConcurrency bounds the number of requests handled at once
func WithConcurrency(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithMetrics records every answered request in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLister replaces images.List
func WithLister(f func(dir string) ([]images.Entry, error)) Option {
	return func(s *Server) {
		s.list = f
	}
}

// New returns a Server trashing files with t
func New(t Trasher, opts ...Option) *Server {
	s := &Server{
		list:    images.List,
		trasher: t,
		limit:   runtime.NumCPU(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handle runs one request and builds its response. It never fails:
// problems are reported in the response.
func (s *Server) Handle(req Request) Response {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	logger := slog.With("id", req.ID, "command", req.Command, "path", req.Args.Path)
	logger.Debug("request received")

	start := time.Now()
	resp := s.dispatch(req, logger)
	s.metrics.Observe(commandLabel(req.Command), resp.OK, time.Since(start))
	return resp
}

// commandLabel keeps arbitrary command names out of metric labels
func commandLabel(command string) string {
	switch command {
	case CommandGetImages, CommandTrashImage:
		return command
	}
	return "unknown"
}

func (s *Server) dispatch(req Request, logger *slog.Logger) Response {
	var (
		result any
		err    error
	)
	switch req.Command {
	case CommandGetImages:
		result, err = s.getImages(req.Args.Path)
	case CommandTrashImage:
		err = s.trasher.Trash(req.Args.Path)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownCommand, req.Command)
	}

	if err != nil {
		logger.Warn("request failed", "error", err)
		return failure(req.ID, err)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		logger.Error("failed to encode result", "error", err)
		return failure(req.ID, err)
	}
	return Response{ID: req.ID, OK: true, Result: raw}
}

func (s *Server) getImages(dir string) ([]images.Entry, error) {
	entries, err := s.list(dir)
	if err != nil {
		return nil, err
	}
	entries = images.Filter(entries, s.filter)
	if entries == nil {
		entries = []images.Entry{}
	}
	s.metrics.Listed(len(entries))
	return entries, nil
}

func failure(id string, err error) Response {
	return Response{ID: id, OK: false, Error: err.Error()}
}

// decode parses one request line. A malformed line still gets an
// answer, so the returned Response is set when ok is false.
func decode(line []byte) (Request, Response, bool) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return req, failure(uuid.NewString(), fmt.Errorf("%w: %v", ErrMalformed, err)), false
	}
	return req, Response{}, true
}

type line struct {
	data    []byte
	tooLong bool
}

// readLine returns the next line without its line ending. A line over
// maxLineSize is consumed up to its newline and returned as tooLong, so
// the stream stays in sync with the following requests.
func readLine(br *bufio.Reader) (line, error) {
	var (
		l    line
		read bool
	)
	for {
		chunk, err := br.ReadSlice('\n')
		read = read || len(chunk) > 0
		if !l.tooLong {
			l.data = append(l.data, chunk...)
			if len(l.data) > maxLineSize {
				l.data, l.tooLong = nil, true
			}
		}
		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && read:
			// last line without a trailing newline
		case err != nil:
			return line{}, err
		}
		if !l.tooLong {
			l.data = bytes.TrimRight(l.data, "\r\n")
		}
		return l, nil
	}
}

// responseWriter serializes responses so that lines never interleave
type responseWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func (w *responseWriter) write(resp Response) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(resp)
}

// Serve reads requests from r and writes responses to w until r is
// exhausted or ctx is canceled. Requests are handled concurrently, so
// responses may come back in a different order; the host matches them
// by id. Serve returns after every started request has been answered.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	out := &responseWriter{enc: json.NewEncoder(w)}
	out.enc.SetEscapeHTML(false)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	lines := make(chan line)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		br := bufio.NewReader(r)
		for {
			l, err := readLine(br)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
			select {
			case lines <- l:
			case <-ctx.Done():
				return
			}
		}
	}()

	slog.Info("bridge started")
	defer slog.Info("bridge stopped")

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case l, ok := <-lines:
			if !ok {
				break loop
			}
			if l.tooLong {
				g.Go(func() error {
					return out.write(failure(uuid.NewString(),
						fmt.Errorf("%w: line exceeds %d bytes", ErrMalformed, maxLineSize)))
				})
				continue
			}
			if len(l.data) == 0 {
				continue
			}
			g.Go(func() error {
				req, resp, ok := decode(l.data)
				if ok {
					resp = s.Handle(req)
				}
				return out.write(resp)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}

	select {
	case err := <-readErr:
		if err != nil {
			return fmt.Errorf("failed to read request: %w", err)
		}
	default:
	}

	return nil
}
