package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/PhantomInTheWire/image-toolbox/pkg/codec"
	"github.com/PhantomInTheWire/image-toolbox/pkg/convert"
	"github.com/PhantomInTheWire/image-toolbox/pkg/editor"
	"github.com/PhantomInTheWire/image-toolbox/pkg/export"
	"github.com/PhantomInTheWire/image-toolbox/pkg/preview"
	"github.com/PhantomInTheWire/image-toolbox/pkg/split"
	"github.com/gin-gonic/gin"
)

type formatInfo struct {
	Value string `json:"value"`
	Label string `json:"label"`
	MIME  string `json:"mime"`
}

func (s *Server) handleFormats(c *gin.Context) {
	out := make([]formatInfo, 0, len(codec.Formats))
	for _, f := range codec.Formats {
		out = append(out, formatInfo{Value: string(f), Label: f.String(), MIME: f.MIMEType()})
	}
	c.JSON(http.StatusOK, out)
}

// splitForm is the parsed form shared by /api/split and /api/preview.
type splitForm struct {
	name      string
	data      []byte
	mode      editor.Mode
	grid      split.Grid
	lines     []split.Line
	style     editor.Style
	showGrid  bool
	confirmed bool
	exclude   map[int]bool
}

func (s *Server) parseSplitForm(c *gin.Context) (*splitForm, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}
	data, err := readUpload(fh)
	if err != nil {
		return nil, err
	}

	f := &splitForm{name: fh.Filename, data: data, exclude: map[int]bool{}}

	if f.mode, err = editor.ParseMode(c.DefaultPostForm("mode", string(editor.GridMode))); err != nil {
		return nil, err
	}
	if f.grid.Rows, err = formInt(c, "rows", s.conf.Split.Rows); err != nil {
		return nil, err
	}
	if f.grid.Cols, err = formInt(c, "cols", s.conf.Split.Cols); err != nil {
		return nil, err
	}
	if f.grid.Rows < 1 || f.grid.Cols < 1 || f.grid.Rows > split.MaxGridSize || f.grid.Cols > split.MaxGridSize {
		return nil, editor.ErrGridSize
	}
	if raw := c.PostForm("lines"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &f.lines); err != nil {
			return nil, fmt.Errorf("lines: %w", err)
		}
		for _, ln := range f.lines {
			if ln.Orientation != split.Horizontal && ln.Orientation != split.Vertical {
				return nil, fmt.Errorf("lines: unknown orientation %q", ln.Orientation)
			}
		}
	}

	style, err := split.ParseStyle(c.DefaultPostForm("style", s.conf.Split.Style))
	if err != nil {
		return nil, err
	}
	width := s.conf.Split.Width
	if raw := c.PostForm("width"); raw != "" {
		if width, err = strconv.ParseFloat(raw, 64); err != nil {
			return nil, fmt.Errorf("width: %w", err)
		}
	}
	f.style = editor.Style{
		Color:  c.DefaultPostForm("color", s.conf.Split.Color),
		Width:  width,
		Dashed: style == split.Dashed,
	}
	if err := f.style.Validate(); err != nil {
		return nil, err
	}

	f.showGrid = c.DefaultPostForm("show_grid", "true") == "true"
	f.confirmed = c.DefaultPostForm("confirmed", "true") == "true"

	if raw := c.PostForm("exclude"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			i, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("exclude: %w", err)
			}
			f.exclude[i] = true
		}
	}
	return f, nil
}

func (f *splitForm) partitioner() split.Partitioner {
	if f.mode == editor.CustomMode {
		return split.ByLines(f.lines)
	}
	return split.ByGrid(f.grid)
}

func (f *splitForm) overlay() preview.Overlay {
	return preview.Overlay{
		Custom:    f.mode == editor.CustomMode,
		Grid:      f.grid,
		Lines:     f.lines,
		ShowGrid:  f.showGrid,
		Confirmed: f.confirmed,
		Color:     f.style.Color,
		Width:     f.style.Width,
		Dashed:    f.style.Dashed,
	}
}

func (s *Server) handleSplit(c *gin.Context) {
	f, err := s.parseSplitForm(c)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	src, err := codec.Decode(f.name, f.data)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}

	tiles, err := split.Image(src, f.partitioner())
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	for i := range f.exclude {
		if i < 0 || i >= len(tiles) {
			fail(c, http.StatusBadRequest, fmt.Errorf("exclude: tile %d out of range (0-%d)", i, len(tiles)-1))
			return
		}
		tiles[i].Selected = false
	}

	var buf bytes.Buffer
	if err := export.Archive(&buf, export.TileEntries(tiles)); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("X-Tile-Count", strconv.Itoa(len(tiles)))
	attachment(c, export.SplitArchiveName, "application/zip", buf.Bytes())
}

func (s *Server) handlePreview(c *gin.Context) {
	f, err := s.parseSplitForm(c)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	src, err := codec.Decode(f.name, f.data)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	data, err := preview.PNG(src, f.overlay())
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	attachment(c, preview.FileName, "image/png", data)
}

type fileReport struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleConvert(c *gin.Context) {
	format, err := codec.ParseFormat(c.DefaultPostForm("format", s.conf.Convert.Format))
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		fail(c, http.StatusBadRequest, errors.New("no files uploaded"))
		return
	}

	q := convert.NewQueue()
	defer q.Release()

	var report []fileReport
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			l.Error().Println("read", fh.Filename, "failed:", err)
			report = append(report, fileReport{Name: fh.Filename, Error: err.Error()})
			continue
		}
		q.Add(fh.Filename, data)
	}

	q.Convert(c.Request.Context(), format)
	for _, it := range q.Failed() {
		report = append(report, fileReport{Name: it.Name, Error: it.Err.Error()})
		q.Remove(it.ID)
	}

	entries := export.ConvertedEntries(q.Items())
	if len(entries) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no file could be converted", "files": report})
		return
	}
	if len(report) > 0 {
		raw, err := json.MarshalIndent(report, "", "  ")
		if err == nil {
			entries = append(entries, export.Entry{Name: "report.json", Data: raw})
		}
	}

	var buf bytes.Buffer
	if err := export.Archive(&buf, entries); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("X-Failed-Count", strconv.Itoa(len(report)))
	attachment(c, export.ConvertArchiveName, "application/zip", buf.Bytes())
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, &codec.Error{Kind: codec.ReadFailure, Name: fh.Filename, Err: err}
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &codec.Error{Kind: codec.ReadFailure, Name: fh.Filename, Err: err}
	}
	return data, nil
}

func formInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.PostForm(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, codec.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, codec.ErrEncode):
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}
