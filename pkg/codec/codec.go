package codec

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	// registers the webp decoder with image.Decode
	_ "golang.org/x/image/webp"
)

// Format is a target encoding for converted or split images.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	WEBP Format = "webp"
	GIF  Format = "gif"
	BMP  Format = "bmp"
)

// Formats lists every supported target in display order.
var Formats = []Format{JPEG, PNG, WEBP, GIF, BMP}

var mimeTypes = map[Format]string{
	JPEG: "image/jpeg",
	PNG:  "image/png",
	WEBP: "image/webp",
	GIF:  "image/gif",
	BMP:  "image/bmp",
}

var imagingFormats = map[Format]imaging.Format{
	JPEG: imaging.JPEG,
	PNG:  imaging.PNG,
	GIF:  imaging.GIF,
	BMP:  imaging.BMP,
}

// ParseFormat accepts a format name, a file extension or a MIME type.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, ".")
	s = strings.TrimPrefix(s, "image/")
	if s == "jpg" {
		s = "jpeg"
	}
	f := Format(s)
	if _, ok := mimeTypes[f]; !ok {
		return "", fmt.Errorf("unsupported format %q", s)
	}
	return f, nil
}

func (f Format) MIMEType() string {
	return mimeTypes[f]
}

// Extension returns the file extension without the leading dot.
func (f Format) Extension() string {
	return string(f)
}

func (f Format) String() string {
	return strings.ToUpper(string(f))
}

// Sniff detects the MIME type of raw file bytes and rejects anything
// outside the image/* family.
func Sniff(name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &Error{Kind: ReadFailure, Name: name, Err: fmt.Errorf("empty file")}
	}
	m := mimetype.Detect(data)
	if !strings.HasPrefix(m.String(), "image/") {
		return m.String(), &Error{Kind: ReadFailure, Name: name, Err: fmt.Errorf("not an image: %s", m.String())}
	}
	return m.String(), nil
}

// Decode sniffs and decodes data into a drawable image at native resolution.
func Decode(name string, data []byte) (image.Image, error) {
	if _, err := Sniff(name, data); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &Error{Kind: DecodeFailure, Name: name, Err: err}
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, &Error{Kind: DecodeFailure, Name: name, Err: fmt.Errorf("empty image")}
	}
	return img, nil
}

// Encode writes img in format f.
func Encode(name string, img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case WEBP:
		err = webp.Encode(&buf, img, &webp.Options{Lossless: true})
	default:
		imf, ok := imagingFormats[f]
		if !ok {
			return nil, &Error{Kind: EncodeFailure, Name: name, Err: fmt.Errorf("unsupported format %q", string(f))}
		}
		err = imaging.Encode(&buf, img, imf)
	}
	if err != nil {
		return nil, &Error{Kind: EncodeFailure, Name: name, Err: err}
	}
	return buf.Bytes(), nil
}
