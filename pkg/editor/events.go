package editor

import (
	"encoding/json"
	"fmt"

	"github.com/PhantomInTheWire/image-toolbox/pkg/split"
)

// EventType names an input event in the wire protocol.
type EventType string

const (
	EventPointerDown EventType = "pointer_down"
	EventContextMenu EventType = "context_menu"
	EventUndo        EventType = "undo"
	EventSetMode     EventType = "set_mode"
	EventSetGrid     EventType = "set_grid"
	EventSetStyle    EventType = "set_style"
	EventOrientation EventType = "set_orientation"
	EventShowGrid    EventType = "show_grid"
	EventConfirm     EventType = "confirm"
	EventSplit       EventType = "split"
	EventToggleTile  EventType = "toggle_tile"
	EventReset       EventType = "reset"
)

// Event is one input consumed by the editor. Fields unused by a type are ignored.
// Loading an image is not an event; it arrives out of band as binary data.
type Event struct {
	Type        EventType         `json:"type"`
	X           float64           `json:"x,omitempty"`
	Y           float64           `json:"y,omitempty"`
	Mode        Mode              `json:"mode,omitempty"`
	Rows        int               `json:"rows,omitempty"`
	Cols        int               `json:"cols,omitempty"`
	Style       *Style            `json:"style,omitempty"`
	Orientation split.Orientation `json:"orientation,omitempty"`
	Show        bool              `json:"show,omitempty"`
	Index       int               `json:"index,omitempty"`
}

func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("decode event: %w", err)
	}
	if ev.Type == "" {
		return ev, fmt.Errorf("decode event: missing type")
	}
	return ev, nil
}

// Apply feeds ev into the editor.
func (e *Editor) Apply(ev Event) error {
	switch ev.Type {
	case EventPointerDown:
		return e.PointerDown(ev.X, ev.Y)
	case EventContextMenu:
		_, err := e.ContextMenu(ev.X, ev.Y)
		return err
	case EventUndo:
		e.Undo()
	case EventSetMode:
		m, err := ParseMode(string(ev.Mode))
		if err != nil {
			return err
		}
		e.SetMode(m)
	case EventSetGrid:
		return e.SetGrid(split.Grid{Rows: ev.Rows, Cols: ev.Cols})
	case EventSetStyle:
		if ev.Style == nil {
			return ErrStyle
		}
		return e.SetStyle(*ev.Style)
	case EventOrientation:
		o, err := split.ParseOrientation(string(ev.Orientation))
		if err != nil {
			return err
		}
		e.SetOrientation(o)
	case EventShowGrid:
		e.SetShowGrid(ev.Show)
	case EventConfirm:
		e.Confirm()
	case EventSplit:
		return e.Split()
	case EventToggleTile:
		return e.ToggleTile(ev.Index)
	case EventReset:
		e.Reset()
	default:
		return fmt.Errorf("unknown event %q", ev.Type)
	}
	return nil
}

// Snapshot is the JSON view of an editor sent to clients.
type Snapshot struct {
	Name           string            `json:"name,omitempty"`
	Loaded         bool              `json:"loaded"`
	Width          int               `json:"width,omitempty"`
	Height         int               `json:"height,omitempty"`
	Mode           Mode              `json:"mode"`
	Grid           split.Grid        `json:"grid"`
	Lines          []split.Line      `json:"lines"`
	Orientation    split.Orientation `json:"orientation"`
	Style          Style             `json:"style"`
	Confirmed      bool              `json:"confirmed"`
	PreviewVisible bool              `json:"previewVisible"`
	Tiles          []split.Tile      `json:"tiles"`
}

func (e *Editor) Snapshot() Snapshot {
	s := Snapshot{
		Name:           e.name,
		Loaded:         e.source != nil,
		Mode:           e.mode,
		Grid:           e.grid,
		Lines:          e.Lines(),
		Orientation:    e.orientation,
		Style:          e.style,
		Confirmed:      e.confirmed,
		PreviewVisible: e.previewVisible,
		Tiles:          append([]split.Tile{}, e.tiles...),
	}
	if e.source != nil {
		s.Width = e.source.Bounds().Dx()
		s.Height = e.source.Bounds().Dy()
	}
	return s
}
