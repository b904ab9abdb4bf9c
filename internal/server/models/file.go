package models

import (
	"encoding/base64"
	"fmt"
	"time"
	"unicode/utf8"
)

// Encoding tags how file bytes travel over JSON transports.
type Encoding string

const (
	EncodingUTF8   Encoding = "utf8"
	EncodingBase64 Encoding = "base64"
)

// ParseEncoding maps the wire spelling to an Encoding; empty means utf8.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case "", EncodingUTF8:
		return EncodingUTF8, nil
	case EncodingBase64:
		return EncodingBase64, nil
	default:
		return "", fmt.Errorf("unknown encoding %q", s)
	}
}

// Content is the raw bytes of a file together with the encoding it was
// written with, so binary uploads are never mistaken for text.
type Content struct {
	Encoding Encoding
	Data     []byte
}

// NewContent tags data as utf8 when it is valid UTF-8 and base64 otherwise.
func NewContent(data []byte) Content {
	if utf8.Valid(data) {
		return Content{Encoding: EncodingUTF8, Data: data}
	}
	return Content{Encoding: EncodingBase64, Data: data}
}

// DecodeContent turns a transport string back into raw bytes.
func DecodeContent(enc Encoding, s string) (Content, error) {
	switch enc {
	case EncodingUTF8, "":
		return Content{Encoding: EncodingUTF8, Data: []byte(s)}, nil
	case EncodingBase64:
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return Content{}, fmt.Errorf("bad base64 content: %w", err)
		}
		return Content{Encoding: EncodingBase64, Data: b}, nil
	default:
		return Content{}, fmt.Errorf("unknown encoding %q", enc)
	}
}

// String renders the content for a transport according to its encoding.
func (c Content) String() string {
	if c.Encoding == EncodingBase64 {
		return base64.StdEncoding.EncodeToString(c.Data)
	}
	return string(c.Data)
}

// File is the metadata row of a stored file. The bytes live in the blob
// store under StorageKey.
type File struct {
	ProjectID  string
	Path       string
	Size       int64
	Encoding   Encoding
	Version    int64
	StorageKey string
	UpdatedAt  time.Time
}

// FileInfo is a listing entry.
type FileInfo struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	Version int64  `json:"version"`
}
