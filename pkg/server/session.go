package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PhantomInTheWire/image-toolbox/pkg/codec"
	"github.com/PhantomInTheWire/image-toolbox/pkg/config"
	"github.com/PhantomInTheWire/image-toolbox/pkg/editor"
	"github.com/PhantomInTheWire/image-toolbox/pkg/export"
	"github.com/PhantomInTheWire/image-toolbox/pkg/preview"
	"github.com/PhantomInTheWire/image-toolbox/pkg/split"
	"github.com/gorilla/websocket"
)

// Session-level commands handled outside the editor.
const (
	CommandExport          = "export"
	CommandDownloadPreview = "download_preview"
)

type MessageKind string

const (
	KindState   MessageKind = "state"
	KindError   MessageKind = "error"
	KindPreview MessageKind = "preview"
	KindArchive MessageKind = "archive"
)

// Message is the JSON text frame sent to editor clients. Preview and archive
// messages are followed by one binary frame holding the payload.
type Message struct {
	Kind  MessageKind      `json:"kind"`
	State *editor.Snapshot `json:"state,omitempty"`
	Error string           `json:"error,omitempty"`
	Name  string           `json:"name,omitempty"`
}

type session struct {
	conn *websocket.Conn
	ed   *editor.Editor
}

func newSession(conn *websocket.Conn, conf config.Config) *session {
	ed := editor.New()
	if err := ed.SetGrid(split.Grid{Rows: conf.Split.Rows, Cols: conf.Split.Cols}); err != nil {
		l.Warn().Println("config grid ignored:", err)
	}
	style := editor.Style{
		Color:  conf.Split.Color,
		Width:  conf.Split.Width,
		Dashed: conf.Split.Style == string(split.Dashed),
	}
	if err := ed.SetStyle(style); err != nil {
		l.Warn().Println("config style ignored:", err)
	}
	conn.SetReadLimit(int64(conf.Server.MaxUploadMB) << 20)
	return &session{conn: conn, ed: ed}
}

func (s *session) run() error {
	if err := s.sendState(); err != nil {
		return err
	}
	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}

		switch kind {
		case websocket.BinaryMessage:
			err = s.load(data)
		case websocket.TextMessage:
			err = s.handle(data)
		default:
			continue
		}

		if err != nil {
			var fatal *writeError
			if errors.As(err, &fatal) {
				return fatal.err
			}
			if err := s.send(Message{Kind: KindError, Error: err.Error()}); err != nil {
				return err
			}
		}
	}
}

// writeError marks a failure to talk to the client, which ends the session.
type writeError struct {
	err error
}

func (e *writeError) Error() string { return e.err.Error() }

func (s *session) load(data []byte) error {
	name := "upload"
	mime, err := codec.Sniff(name, data)
	if err != nil {
		return err
	}
	if f, err := codec.ParseFormat(mime); err == nil {
		name += "." + f.Extension()
	}
	img, err := codec.Decode(name, data)
	if err != nil {
		return err
	}
	if err := s.ed.Load(name, img); err != nil {
		return err
	}
	return s.refresh()
}

type command struct {
	Type string `json:"type"`
}

func (s *session) handle(data []byte) error {
	var cmd command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	switch cmd.Type {
	case CommandExport:
		return s.export()
	case CommandDownloadPreview:
		return s.sendPreview()
	}

	ev, err := editor.DecodeEvent(data)
	if err != nil {
		return err
	}
	if err := s.ed.Apply(ev); err != nil {
		// the state may still have changed; keep the client in sync
		if werr := s.sendState(); werr != nil {
			return werr
		}
		return err
	}
	return s.refresh()
}

func (s *session) export() error {
	entries := export.TileEntries(s.ed.Tiles())
	if len(entries) == 0 {
		return errors.New("no tiles selected")
	}
	var buf bytes.Buffer
	if err := export.Archive(&buf, entries); err != nil {
		return err
	}
	return s.sendBinary(Message{Kind: KindArchive, Name: export.SplitArchiveName}, buf.Bytes())
}

func (s *session) refresh() error {
	if err := s.sendState(); err != nil {
		return err
	}
	if s.ed.Source() == nil || !s.ed.PreviewVisible() {
		return nil
	}
	return s.sendPreview()
}

func (s *session) sendPreview() error {
	if s.ed.Source() == nil || !s.ed.PreviewVisible() {
		return errors.New("no preview available")
	}
	data, err := preview.PNG(s.ed.Source(), s.ed.Overlay())
	if err != nil {
		return err
	}
	return s.sendBinary(Message{Kind: KindPreview, Name: preview.FileName}, data)
}

func (s *session) sendState() error {
	snap := s.ed.Snapshot()
	return s.send(Message{Kind: KindState, State: &snap})
}

func (s *session) send(m Message) error {
	if err := s.conn.WriteJSON(m); err != nil {
		return &writeError{err: err}
	}
	return nil
}

func (s *session) sendBinary(m Message, data []byte) error {
	if err := s.send(m); err != nil {
		return err
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return &writeError{err: err}
	}
	return nil
}
