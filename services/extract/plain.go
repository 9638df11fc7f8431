package extract

import (
	"bytes"
	"errors"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var errInvalidGBK = errors.New("invalid GBK byte sequence")

func readPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &Error{Path: path, Kind: ErrRead, Err: err}
	}

	text, err := decode(data)
	if err != nil {
		return "", &Error{Path: path, Kind: ErrUnsupportedEncoding, Err: err}
	}

	return text, nil
}

// decode returns valid UTF-8 as is, minus a byte order mark, and otherwise
// tries GBK. GBK output holding replacement characters means the bytes were
// not GBK either.
func decode(data []byte) (string, error) {
	if utf8.Valid(data) {
		text, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), data)
		if err != nil {
			return "", err
		}
		return string(text), nil
	}

	text, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	if bytes.ContainsRune(text, utf8.RuneError) {
		return "", errInvalidGBK
	}

	return string(text), nil
}
