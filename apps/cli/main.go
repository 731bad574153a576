package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/PhantomInTheWire/image-toolbox/pkg/codec"
	"github.com/PhantomInTheWire/image-toolbox/pkg/config"
	"github.com/PhantomInTheWire/image-toolbox/pkg/convert"
	"github.com/PhantomInTheWire/image-toolbox/pkg/export"
	"github.com/PhantomInTheWire/image-toolbox/pkg/logger"
	"github.com/PhantomInTheWire/image-toolbox/pkg/preview"
	"github.com/PhantomInTheWire/image-toolbox/pkg/split"
	"github.com/PhantomInTheWire/image-toolbox/pkg/storage"
	"github.com/alecthomas/kong"
)

var (
	log     = logger.New("[cli]")
	verbose = logger.NewVerboseLogger("[cli]")
)

const desc = `Splits images into tiles by grid or custom lines, and converts images between formats.`

var cli struct {
	Config string `short:"c" help:"TOML config file; defaults to $IMAGE_TOOLBOX_CONFIG or toolbox.toml."`

	Split   splitCmd   `cmd:"" help:"Split an image into tiles."`
	Convert convertCmd `cmd:"" help:"Convert images to another format."`
	Formats formatsCmd `cmd:"" help:"List the supported target formats."`
}

// Output chooses where results go: a local directory or the configured bucket.
type Output struct {
	Out    string `short:"o" help:"Output directory; defaults to output.dir from the config."`
	Zip    bool   `help:"Bundle all results into one zip archive."`
	Upload bool   `help:"Upload to the configured S3 bucket instead of a directory."`
}

func (o Output) sink(ctx context.Context, conf config.Config) (export.Sink, error) {
	if o.Upload {
		return storage.NewS3(ctx, conf.MinioConfig())
	}
	dir := o.Out
	if dir == "" {
		dir = conf.Output.Dir
	}
	return storage.Dir{Path: dir}, nil
}

func (o Output) write(ctx context.Context, sink export.Sink, archive string, entries []export.Entry) error {
	if o.Zip {
		return export.Bundle(ctx, sink, archive, entries)
	}
	return export.Individual(ctx, sink, entries)
}

type splitCmd struct {
	Output

	Image   string   `arg:"" type:"existingfile" help:"Image to split."`
	Rows    int      `help:"Grid rows (1-10); defaults to split.rows."`
	Cols    int      `help:"Grid columns (1-10); defaults to split.cols."`
	Line    []string `short:"l" help:"Custom line as h:<percent> or v:<percent>. Repeatable; switches to custom mode."`
	Exclude []int    `help:"Row-major tile indices, from 0, to leave out of the export."`
	Preview bool     `help:"Also write image_with_grid.png."`
}

func (c *splitCmd) Run(ctx context.Context, conf config.Config) error {
	data, err := os.ReadFile(c.Image)
	if err != nil {
		return err
	}
	src, err := codec.Decode(filepath.Base(c.Image), data)
	if err != nil {
		return err
	}

	grid := split.Grid{Rows: conf.Split.Rows, Cols: conf.Split.Cols}
	if c.Rows != 0 {
		grid.Rows = c.Rows
	}
	if c.Cols != 0 {
		grid.Cols = c.Cols
	}
	if grid.Rows < 1 || grid.Cols < 1 || grid.Rows > split.MaxGridSize || grid.Cols > split.MaxGridSize {
		return fmt.Errorf("rows and cols must be between 1 and %d", split.MaxGridSize)
	}

	lines := make([]split.Line, 0, len(c.Line))
	for _, raw := range c.Line {
		ln, err := parseLine(raw, conf.Split)
		if err != nil {
			return err
		}
		lines = append(lines, ln)
	}

	p := split.ByGrid(grid)
	if len(lines) > 0 {
		p = split.ByLines(lines)
	}
	tiles, err := split.Image(src, p)
	if err != nil {
		return err
	}
	for _, i := range c.Exclude {
		if i < 0 || i >= len(tiles) {
			return fmt.Errorf("exclude: tile %d out of range (0-%d)", i, len(tiles)-1)
		}
		tiles[i].Selected = false
	}

	sink, err := c.sink(ctx, conf)
	if err != nil {
		return err
	}
	entries := export.TileEntries(tiles)
	for _, e := range entries {
		verbose.Println("tile", e.Name, len(e.Data), "bytes")
	}
	if err := c.write(ctx, sink, export.SplitArchiveName, entries); err != nil {
		return err
	}
	log.Println("exported", len(entries), "of", len(tiles), "tiles from", c.Image)

	if c.Preview {
		o := preview.Overlay{
			Custom:    len(lines) > 0,
			Grid:      grid,
			Lines:     lines,
			ShowGrid:  true,
			Confirmed: true,
			Color:     conf.Split.Color,
			Width:     conf.Split.Width,
			Dashed:    conf.Split.Style == string(split.Dashed),
		}
		png, err := preview.PNG(src, o)
		if err != nil {
			return err
		}
		if err := sink.Save(ctx, preview.FileName, bytes.NewReader(png)); err != nil {
			return err
		}
		log.Println("wrote", preview.FileName)
	}
	return nil
}

// parseLine reads "h:50" or "vertical:12.5".
func parseLine(raw string, s config.Split) (split.Line, error) {
	o, pos, ok := strings.Cut(raw, ":")
	if !ok {
		return split.Line{}, fmt.Errorf("line %q: want <h|v>:<percent>", raw)
	}
	orientation, err := split.ParseOrientation(o)
	if err != nil {
		return split.Line{}, err
	}
	p, err := strconv.ParseFloat(pos, 64)
	if err != nil {
		return split.Line{}, fmt.Errorf("line %q: %w", raw, err)
	}
	style, err := split.ParseStyle(s.Style)
	if err != nil {
		return split.Line{}, err
	}
	return split.Line{Orientation: orientation, Position: p, Color: s.Color, Width: s.Width, Style: style}, nil
}

type convertCmd struct {
	Output

	Files []string `arg:"" type:"existingfile" help:"Images to convert."`
	To    string   `short:"t" help:"Target format (jpeg, png, webp, gif, bmp); defaults to convert.format."`
}

func (c *convertCmd) Run(ctx context.Context, conf config.Config) error {
	target := c.To
	if target == "" {
		target = conf.Convert.Format
	}
	f, err := codec.ParseFormat(target)
	if err != nil {
		return err
	}

	q := convert.NewQueue()
	defer q.Release()

	failed := 0
	for _, name := range c.Files {
		data, err := os.ReadFile(name)
		if err != nil {
			log.Println("skipping", name+":", err)
			failed++
			continue
		}
		q.Add(filepath.Base(name), data)
		verbose.Println("queued", name, len(data), "bytes")
	}

	q.Convert(ctx, f)
	for _, it := range q.Failed() {
		log.Println("failed", it.Name+":", it.Err)
		q.Remove(it.ID)
		failed++
	}

	entries := export.ConvertedEntries(q.Items())
	if len(entries) == 0 {
		return errors.New("no file could be converted")
	}

	sink, err := c.sink(ctx, conf)
	if err != nil {
		return err
	}
	if err := c.write(ctx, sink, export.ConvertArchiveName, entries); err != nil {
		return err
	}
	log.Println("converted", len(entries), "files to", f.String()+",", failed, "failed")
	return nil
}

type formatsCmd struct{}

func (formatsCmd) Run() error {
	for _, f := range codec.Formats {
		fmt.Printf("%-5s %s\n", f.String(), f.MIMEType())
	}
	return nil
}

func main() {
	kctx := kong.Parse(
		&cli,
		kong.Name("toolbox"),
		kong.Description(desc),
		kong.UsageOnError(),
	)

	conf, err := config.Load(cli.Config)
	kctx.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	err = kctx.Run(conf)
	kctx.FatalIfErrorf(err)
}
