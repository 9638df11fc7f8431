package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

const docxBodyPart = "word/document.xml"

var errNoDocumentBody = errors.New("docx has no " + docxBodyPart)

type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []struct {
		Content string `xml:",chardata"`
	} `xml:"t"`
}

// readDocx pulls paragraph text out of a .docx without an external converter.
// Formatting, tables nested in text boxes and headers are not recovered.
func readDocx(path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", &Error{Path: path, Kind: ErrConversionFailed, Err: err}
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != docxBodyPart {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", &Error{Path: path, Kind: ErrConversionFailed, Err: err}
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", &Error{Path: path, Kind: ErrConversionFailed, Err: err}
		}

		var doc docxDocument
		if err := xml.Unmarshal(content, &doc); err != nil {
			return "", &Error{Path: path, Kind: ErrConversionFailed, Err: err}
		}

		return docxText(doc), nil
	}

	return "", &Error{Path: path, Kind: ErrConversionFailed, Err: errNoDocumentBody}
}

func docxText(doc docxDocument) string {
	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				result.WriteString(text.Content)
			}
		}
	}

	return strings.TrimSpace(result.String())
}
