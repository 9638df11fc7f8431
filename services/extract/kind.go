package extract

import (
	"path/filepath"
	"strings"
)

type Kind int

const (
	KindUnsupported Kind = iota
	// KindPlain files are read and decoded directly.
	KindPlain
	// KindConvertible files go through the external converter.
	KindConvertible
)

var kindsByExtension = map[string]Kind{
	".txt":  KindPlain,
	".sql":  KindPlain,
	".csv":  KindPlain,
	".log":  KindPlain,
	".docx": KindConvertible,
	".md":   KindConvertible,
	".odt":  KindConvertible,
	".rtf":  KindConvertible,
	".epub": KindConvertible,
	".html": KindConvertible,
	".htm":  KindConvertible,
}

// KindOf classifies a file name by its extension, ignoring case.
func KindOf(name string) Kind {
	return kindsByExtension[strings.ToLower(filepath.Ext(name))]
}

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindConvertible:
		return "convertible"
	default:
		return "unsupported"
	}
}
