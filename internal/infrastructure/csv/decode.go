package csvio

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts raw file bytes to UTF-8. A UTF-8 byte order mark is
// stripped. Content that is not valid UTF-8 is retried as cp932
// (Shift_JIS); anything else fails with ErrInvalidEncoding.
func Decode(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	if utf8.Valid(data) {
		return data, nil
	}

	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
		return nil, ErrInvalidEncoding
	}
	return decoded, nil
}

// CheckFile validates the upload before decoding: the file name must end
// in .csv (case-insensitive) and the content must not exceed maxSize bytes.
func CheckFile(filename string, size int64, maxSize int64) error {
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return ErrNotCSV
	}
	if maxSize > 0 && size > maxSize {
		return ErrFileTooLarge
	}
	return nil
}
