package extract

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/meghashyamc/wordindex/logger"
)

// Extractor produces the plain text of supported files.
type Extractor struct {
	logger    logger.Logger
	converter Converter
}

func New(logger logger.Logger, converter Converter) *Extractor {
	return &Extractor{
		logger:    logger,
		converter: converter,
	}
}

// Extract returns the text of the file at path. Failures are always *Error and concern
// only this file.
func (e *Extractor) Extract(ctx context.Context, path string, kind Kind) (string, error) {
	switch kind {
	case KindPlain:
		return readPlain(path)
	case KindConvertible:
		return e.convert(ctx, path)
	default:
		return "", &Error{Path: path, Kind: ErrUnsupportedKind}
	}
}

func (e *Extractor) convert(ctx context.Context, path string) (string, error) {
	text, err := e.converter.Convert(ctx, path)
	if !errors.Is(err, ErrConverterMissing) {
		return text, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		e.logger.Debug("converter missing, reading docx directly", "path", path)
		return readDocx(path)
	case ".md", ".html", ".htm":
		e.logger.Debug("converter missing, reading file as plain text", "path", path)
		return readPlain(path)
	default:
		return "", err
	}
}
