// Package structure extracts the chemical-structure image embedded in a
// prediction row's markup.
package structure

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// ErrNoImage is returned when the markup carries no usable image.
var ErrNoImage = errors.New("no structure image")

// ImageSource returns the src of the first <img> in markup. Only data:image,
// http and https sources are accepted.
func ImageSource(markup string) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", ErrNoImage
	}
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", ErrNoImage
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "img" {
				continue
			}
			for _, a := range tok.Attr {
				if a.Key == "src" {
					src := strings.TrimSpace(a.Val)
					if !allowed(src) {
						return "", fmt.Errorf("%w: unsupported source", ErrNoImage)
					}
					return src, nil
				}
			}
		}
	}
}

func allowed(src string) bool {
	lower := strings.ToLower(src)
	if strings.HasPrefix(lower, "data:image/") {
		return true
	}
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Image is a decoded inline image.
type Image struct {
	MIMEType string
	Data     []byte
}

// Ext returns a file extension for the image type, with the leading dot.
func (i Image) Ext() string {
	switch i.MIMEType {
	case "image/png":
		return ".png"
	case "image/svg+xml":
		return ".svg"
	case "image/jpeg":
		return ".jpg"
	}
	if exts, _ := mime.ExtensionsByType(i.MIMEType); len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

// DecodeDataURI decodes a base64 data URI such as "data:image/png;base64,...".
func DecodeDataURI(src string) (Image, error) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return Image{}, fmt.Errorf("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("malformed data uri")
	}
	parts := strings.Split(meta, ";")
	if parts[len(parts)-1] != "base64" {
		return Image{}, fmt.Errorf("data uri is not base64 encoded")
	}
	mt := parts[0]
	if mt == "" {
		mt = "text/plain"
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return Image{}, fmt.Errorf("decode data uri: %w", err)
	}
	return Image{MIMEType: strings.ToLower(mt), Data: data}, nil
}
