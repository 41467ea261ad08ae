// Package viz implements the visualization payload protocol: extracting a
// typed data block embedded in free-form assistant text and dispatching it
// to a renderer.
package viz

import (
	"encoding/json"
	"strings"

	"github.com/adviso/adviso/pkg/models"
)

// Delimiter is the sentinel wrapping a payload block inside assistant text.
// It appears twice: once before and once after the serialized payload.
const Delimiter = "[VISUALIZATION]"

// Split scans raw assistant text for the first complete delimiter pair and
// decodes the block between them. Malformed or missing payloads degrade to
// plain text: the prose equals the raw input and no payload is returned.
// On success the delimited block is removed and any further complete pairs
// lose their delimiters (the inner text stays as prose), so re-splitting
// the prose never yields a payload.
func Split(rawText string) (string, *models.VisualizationPayload) {
	start := strings.Index(rawText, Delimiter)
	if start < 0 {
		return rawText, nil
	}

	rest := rawText[start+len(Delimiter):]

	end := strings.Index(rest, Delimiter)
	if end < 0 {
		// A lone delimiter is not a block; leave the text untouched.
		return rawText, nil
	}

	block := rest[:end]

	payload := decodePayload(block)
	if payload == nil {
		return rawText, nil
	}

	before := strings.TrimSpace(rawText[:start])
	after := strings.TrimSpace(stripResidualPairs(rest[end+len(Delimiter):]))

	return joinProse(before, after), payload
}

// stripResidualPairs removes the delimiters of complete pairs after the
// honored one, left to right, keeping the enclosed text. A trailing
// unpaired delimiter stays; a lone delimiter never yields a payload.
func stripResidualPairs(text string) string {
	for {
		first := strings.Index(text, Delimiter)
		if first < 0 {
			return text
		}

		rest := text[first+len(Delimiter):]

		second := strings.Index(rest, Delimiter)
		if second < 0 {
			return text
		}

		text = text[:first] + rest[:second] + rest[second+len(Delimiter):]
	}
}

func decodePayload(block string) *models.VisualizationPayload {
	var payload models.VisualizationPayload

	if err := json.Unmarshal([]byte(strings.TrimSpace(block)), &payload); err != nil {
		return nil
	}

	if payload.Type == "" {
		return nil
	}

	if !validateData(payload.Type, payload.Data) {
		return nil
	}

	return &payload
}

func joinProse(before, after string) string {
	switch {
	case before == "":
		return after
	case after == "":
		return before
	default:
		return before + "\n\n" + after
	}
}
