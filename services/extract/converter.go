package extract

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultConverterCommand = "pandoc"
	DefaultConverterTimeout = 2 * time.Minute

	// waitDelay bounds how long a killed converter may keep its output pipes open.
	waitDelay = 5 * time.Second
)

// Converter turns a rich document into plain text.
type Converter interface {
	Convert(ctx context.Context, path string) (string, error)
}

// Pandoc runs pandoc, or a compatible command, as a subprocess per document.
type Pandoc struct {
	Command string
	Timeout time.Duration
}

func NewPandoc(command string, timeout time.Duration) *Pandoc {
	if command == "" {
		command = DefaultConverterCommand
	}
	if timeout <= 0 {
		timeout = DefaultConverterTimeout
	}

	return &Pandoc{Command: command, Timeout: timeout}
}

func (p *Pandoc) Convert(ctx context.Context, path string) (string, error) {
	convertCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	cmd := exec.CommandContext(convertCtx, p.Command, "-t", "plain", "--wrap=none", "--markdown-headings=atx", path)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	switch {
	case err == nil:
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist) && cmd.Process == nil:
		return "", &Error{Path: path, Kind: ErrConverterMissing, Err: err}
	case ctx.Err() != nil:
		return "", &Error{Path: path, Kind: ErrConversionFailed, Err: ctx.Err()}
	case errors.Is(convertCtx.Err(), context.DeadlineExceeded):
		return "", &Error{Path: path, Kind: ErrConversionTimeout, Err: err}
	default:
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = errors.Join(err, errors.New(msg))
		}
		return "", &Error{Path: path, Kind: ErrConversionFailed, Err: err}
	}

	if !utf8.Valid(stdout.Bytes()) {
		return "", &Error{Path: path, Kind: ErrConversionFailed, Err: errors.New("converter output is not UTF-8")}
	}

	return stdout.String(), nil
}
