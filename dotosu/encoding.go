package dotosu

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// normaliseText turns raw file contents into UTF-8. Charts saved by the old
// Windows editor are Windows-1252 and are transcoded.
func normaliseText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("transcode windows-1252: %w", err)
	}
	return string(out), nil
}
