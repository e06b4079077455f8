package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/babarot/organizeimg/internal/images"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gabriel-vasile/mimetype"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// List prints the images found in each directory. Directories are read
// concurrently but printed in the order given.
func (c *CLI) List(dirs []string, asJSON bool) error {
	slog.Debug("cli.list started", "dirs", dirs)
	defer slog.Debug("cli.list finished")

	results := make([][]images.Entry, len(dirs))
	filter := c.config.FilterOptions()

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			entries, err := images.List(dir)
			if err != nil {
				if images.IsReadFailure(err) {
					return err
				}
				return fmt.Errorf("%s: %w", dir, err)
			}
			results[i] = images.Filter(entries, filter)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	entries := lo.Flatten(results)
	if asJSON || !isTerminal(c.stdout) {
		return writeJSON(c.stdout, entries)
	}
	writeTable(c.stdout, entries, c.option.List.MIME)
	return nil
}

func writeJSON(w io.Writer, entries []images.Entry) error {
	if entries == nil {
		entries = []images.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// writeTable prints entries with humanized sizes. With sniff set, a
// column with the MIME type detected from the file contents is added.
func writeTable(w io.Writer, entries []images.Entry, sniff bool) {
	if len(entries) == 0 {
		fmt.Fprintln(w, color.YellowString("no images found"))
		return
	}

	header := []string{"Path", "Size"}
	align := []int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT}
	if sniff {
		header = append(header, "Type")
		align = append(align, tablewriter.ALIGN_LEFT)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetColumnAlignment(align)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)

	var total int64
	for _, e := range entries {
		row := []string{e.Path, humanize.Bytes(uint64(e.Size))}
		if sniff {
			row = append(row, detectType(e.Path))
		}
		table.Append(row)
		total += e.Size
	}
	table.Render()

	fmt.Fprintf(w, "\n%s images, %s\n",
		color.New(color.Bold).Sprint(humanize.Comma(int64(len(entries)))),
		humanize.Bytes(uint64(total)),
	)
}

func detectType(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		slog.Debug("cannot detect file type", "path", path, "error", err)
		return "-"
	}
	return mtype.String()
}
