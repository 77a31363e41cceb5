package llm

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errNoJSON = errors.New("no json object in model output")

// decodeModelJSON reads the first JSON object out of a model answer. Models
// wrap answers in prose or markdown fences, so each opening brace is tried in
// turn; the decoder stops at the matching close and ignores what follows.
func decodeModelJSON[T any](raw string) (T, error) {
	var zero T
	text := []byte(raw)
	lastErr := errNoJSON
	for {
		start := bytes.IndexByte(text, '{')
		if start < 0 {
			return zero, lastErr
		}
		text = text[start:]
		var out T
		err := json.NewDecoder(bytes.NewReader(text)).Decode(&out)
		if err == nil {
			return out, nil
		}
		lastErr = err
		text = text[1:]
	}
}
