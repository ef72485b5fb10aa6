package analysis

import (
	"encoding/json"
	"errors"
	"strings"
)

// decodeJSON pulls the outermost openCh...closeCh span out of a model reply,
// tolerating markdown fences and chatter around it.
func decodeJSON(text string, openCh, closeCh byte, v interface{}) error {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.IndexByte(text, openCh)
	end := strings.LastIndexByte(text, closeCh)
	if start < 0 || end <= start {
		return newError(KindMalformed, errors.New("no JSON found in model reply"))
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return newError(KindMalformed, err)
	}
	return nil
}
