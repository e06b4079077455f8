package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/babarot/organizeimg/internal/images"
	"github.com/babarot/organizeimg/internal/metrics"
	"github.com/babarot/organizeimg/internal/trash"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeTrasher struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (f *fakeTrasher) Trash(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	if f.err != nil {
		return &trash.Error{Path: path, Err: f.err}
	}
	return nil
}

func writeFile(t *testing.T, dir, name string, size int) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), bytes.Repeat([]byte{0}, size), 0644))
}

func decodeResult[T any](t *testing.T, resp Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Result, &v))
	return v
}

func TestHandleGetImages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.png", 20)
	writeFile(t, dir, "a.JPG", 10)
	writeFile(t, dir, "notes.txt", 5)

	s := New(&fakeTrasher{})
	resp := s.Handle(Request{ID: "1", Command: CommandGetImages, Args: Args{Path: dir}})

	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, "1", resp.ID)
	assert.Equal(t, []images.Entry{
		{Path: filepath.Join(dir, "a.JPG"), Size: 10},
		{Path: filepath.Join(dir, "b.png"), Size: 20},
	}, decodeResult[[]images.Entry](t, resp))
}

func TestHandleGetImagesEmpty(t *testing.T) {
	resp := New(&fakeTrasher{}).Handle(Request{ID: "1", Command: CommandGetImages, Args: Args{Path: t.TempDir()}})

	require.True(t, resp.OK)
	assert.JSONEq(t, `[]`, string(resp.Result))
}

func TestHandleGetImagesFiltered(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.jpg", 10)
	writeFile(t, dir, "skip_thumb.jpg", 10)

	s := New(&fakeTrasher{}, WithFilter(images.FilterOptions{Globs: []string{"*_thumb.*"}}))
	resp := s.Handle(Request{Command: CommandGetImages, Args: Args{Path: dir}})

	require.True(t, resp.OK)
	assert.Equal(t, []images.Entry{{Path: filepath.Join(dir, "keep.jpg"), Size: 10}},
		decodeResult[[]images.Entry](t, resp))
}

func TestHandleGetImagesInvalidDirectory(t *testing.T) {
	resp := New(&fakeTrasher{}).Handle(Request{ID: "x", Command: CommandGetImages, Args: Args{Path: "/no/such/dir"}})

	assert.False(t, resp.OK)
	assert.Equal(t, "invalid directory", resp.Error)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"x","ok":false,"error":"invalid directory"}`, string(raw))
}

func TestHandleGetImagesReadFailure(t *testing.T) {
	lister := func(dir string) ([]images.Entry, error) {
		return nil, &images.ReadError{Path: dir, Err: os.ErrPermission}
	}
	resp := New(&fakeTrasher{}, WithLister(lister)).Handle(Request{Command: CommandGetImages, Args: Args{Path: "/locked"}})

	assert.False(t, resp.OK)
	assert.Equal(t, "failed to read directory /locked", resp.Error)
}

func TestHandleTrashImage(t *testing.T) {
	tr := &fakeTrasher{}
	resp := New(tr).Handle(Request{ID: "7", Command: CommandTrashImage, Args: Args{Path: "/photos/a.jpg"}})

	require.True(t, resp.OK)
	assert.Equal(t, []string{"/photos/a.jpg"}, tr.paths)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7","ok":true,"result":null}`, string(raw))
}

func TestHandleTrashImageFailure(t *testing.T) {
	tr := &fakeTrasher{err: errors.New("permission denied")}
	resp := New(tr).Handle(Request{Command: CommandTrashImage, Args: Args{Path: "/photos/a.jpg"}})

	assert.False(t, resp.OK)
	assert.Equal(t, "/photos/a.jpg: permission denied", resp.Error)
}

func TestHandleUnknownCommand(t *testing.T) {
	resp := New(&fakeTrasher{}).Handle(Request{Command: "rotate_image"})

	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.ID, "an id is generated when missing")
	assert.Contains(t, resp.Error, "unknown command")
}

func readResponses(t *testing.T, r io.Reader) map[string]Response {
	t.Helper()
	got := map[string]Response{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		var resp Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp), scanner.Text())
		got[resp.ID] = resp
	}
	require.NoError(t, scanner.Err())
	return got
}

func TestServe(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, dir, "a.png", 3)

	tr := &fakeTrasher{}
	input := strings.Join([]string{
		fmt.Sprintf(`{"id":"list","command":"get_images","args":{"path":%q}}`, dir),
		`{"id":"trash","command":"trash_image","args":{"path":"/tmp/x.jpg"}}`,
		``,
		`{"id":"missing","command":"get_images","args":{"path":"/does/not/exist"}}`,
		`{"id":"bad","command":"resize"}`,
		`not json`,
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, New(tr).Serve(context.Background(), strings.NewReader(input), &out))

	got := readResponses(t, &out)
	require.Len(t, got, 5)

	assert.True(t, got["list"].OK)
	assert.Equal(t, []images.Entry{{Path: filepath.Join(dir, "a.png"), Size: 3}},
		decodeResult[[]images.Entry](t, got["list"]))

	assert.True(t, got["trash"].OK)
	assert.Equal(t, []string{"/tmp/x.jpg"}, tr.paths)

	assert.False(t, got["missing"].OK)
	assert.Equal(t, "invalid directory", got["missing"].Error)

	assert.False(t, got["bad"].OK)
	assert.Contains(t, got["bad"].Error, "unknown command")

	var malformed int
	for id, resp := range got {
		if strings.Contains(resp.Error, "malformed request") {
			malformed++
			assert.NotEmpty(t, id)
		}
	}
	assert.Equal(t, 1, malformed)
}

func TestServeOversizedLine(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", 2)

	input := `{"id":"big","command":"get_images","args":{"path":"` +
		strings.Repeat("a", 2*maxLineSize) + `"}}` + "\n" +
		fmt.Sprintf(`{"id":"after","command":"get_images","args":{"path":%q}}`, dir) + "\n"

	var out bytes.Buffer
	require.NoError(t, New(&fakeTrasher{}).Serve(context.Background(), strings.NewReader(input), &out))

	got := readResponses(t, &out)
	require.Len(t, got, 2)

	assert.True(t, got["after"].OK)
	assert.Equal(t, []images.Entry{{Path: filepath.Join(dir, "a.jpg"), Size: 2}},
		decodeResult[[]images.Entry](t, got["after"]))

	assert.NotContains(t, got, "big")
	for id, resp := range got {
		if id == "after" {
			continue
		}
		assert.False(t, resp.OK)
		assert.Contains(t, resp.Error, "malformed request")
	}
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "lf", input: "a\nb\n", want: []string{"a", "b"}},
		{name: "crlf", input: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "no trailing newline", input: "a\nb", want: []string{"a", "b"}},
		{name: "empty lines", input: "\n\na\n", want: []string{"", "", "a"}},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br := bufio.NewReaderSize(strings.NewReader(tt.input), 16)
			var got []string
			for {
				l, err := readLine(br)
				if errors.Is(err, io.EOF) {
					break
				}
				require.NoError(t, err)
				require.False(t, l.tooLong)
				got = append(got, string(l.data))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadLineTooLong(t *testing.T) {
	input := strings.Repeat("x", maxLineSize+10) + "\nnext\n"
	br := bufio.NewReader(strings.NewReader(input))

	l, err := readLine(br)
	require.NoError(t, err)
	assert.True(t, l.tooLong)
	assert.Nil(t, l.data)

	l, err = readLine(br)
	require.NoError(t, err)
	assert.False(t, l.tooLong)
	assert.Equal(t, "next", string(l.data))
}

func TestServeStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(&fakeTrasher{}).Serve(ctx, pr, io.Discard)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestServeWriteFailure(t *testing.T) {
	err := New(&fakeTrasher{}).Serve(context.Background(),
		strings.NewReader(`{"command":"resize"}`+"\n"), failingWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
}

func TestHandleRecordsMetrics(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", 1)
	writeFile(t, dir, "b.jpg", 1)

	m := metrics.New(prometheus.NewRegistry())
	s := New(&fakeTrasher{}, WithMetrics(m))

	s.Handle(Request{Command: CommandGetImages, Args: Args{Path: dir}})
	s.Handle(Request{Command: CommandGetImages, Args: Args{Path: "/no/such/dir"}})
	s.Handle(Request{Command: "crop_image"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(CommandGetImages, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(CommandGetImages, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("unknown", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ImagesListed))
}
