package usecase

import (
	"bytes"
	"errors"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLimit is how much of an upload is buffered for content detection.
const sniffLimit = 3072

func errorsIsAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// sniff detects the content type of r from its first bytes and returns a
// reader that replays those bytes before the rest of r.
func sniff(r io.Reader) (*mimetype.MIME, io.Reader, error) {
	head := make([]byte, sniffLimit)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, nil, err
	}
	head = head[:n]

	return mimetype.Detect(head), io.MultiReader(bytes.NewReader(head), r), nil
}

// matchMIME returns the allowed type m matches, aliases included.
func matchMIME(m *mimetype.MIME, allowed ...string) (string, bool) {
	for _, a := range allowed {
		if m.Is(a) {
			return a, true
		}
	}
	return "", false
}
