package handler

import (
	"io"

	"github.com/gin-gonic/gin"
)

// Download content types
const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// readUpload reads the uploaded "file" form field. Size enforcement
// happens in the services; maxBytes only bounds the read itself.
func readUpload(c *gin.Context, maxBytes int64) (string, []byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", nil, err
	}

	f, err := fileHeader.Open()
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return "", nil, err
	}
	return fileHeader.Filename, data, nil
}

// wantsExcel reports whether the client asked for an xlsx export
func wantsExcel(c *gin.Context) bool {
	return c.Query("format") == "xlsx"
}
