package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedType is returned for files that are neither PDF nor plain text.
var ErrUnsupportedType = errors.New("unsupported file type")

// Supported reports whether filename has an extension Text can handle.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".txt":
		return true
	}
	return false
}

// Text extracts the text of an uploaded file, chosen by extension.
func Text(filename string, content []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err := PDF(content)
		if err != nil {
			return "", fmt.Errorf("extract pdf %s: %w", filename, err)
		}
		return text, nil
	case ".txt":
		return string(content), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filename)
	}
}

// PDF returns the plain text of every readable page, one line per page.
// The pdf package panics on some malformed inputs; those surface as errors.
func PDF(content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf: %v", r)
		}
	}()

	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}
