// Package qrcode renders checkout handoff URLs as QR codes, either as block
// characters for a terminal or as a PNG data URI for a web page.
package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent = errors.New("qrcode: content cannot be empty")
	ErrEncode       = errors.New("qrcode: failed to encode content")
)

const defaultSize = 192

func encode(content string) (*skipqrcode.QRCode, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	q, err := skipqrcode.New(content, skipqrcode.Medium)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return q, nil
}

// Text returns content as half-block characters, two modules per line.
// Set inverse for light-on-dark terminals.
func Text(content string, inverse bool) (string, error) {
	q, err := encode(content)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(inverse), nil
}

// DataURI returns content as a base64 PNG suitable for an img src.
// A non-positive size uses the default.
func DataURI(content string, size int) (string, error) {
	q, err := encode(content)
	if err != nil {
		return "", err
	}
	if size <= 0 {
		size = defaultSize
	}
	png, err := q.PNG(size)
	if err != nil {
		return "", errors.Join(ErrEncode, err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
