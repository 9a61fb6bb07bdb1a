package tracker

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// textChunks computes a character-level diff between base and head, cleaned
// up for readability. Equal runs and whitespace-only changes are skipped.
func textChunks(field, base, head string) []Chunk {
	if base == head {
		return nil
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(base, head, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var chunks []Chunk
	for _, d := range diffs {
		var kind string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = "added"
		case diffmatchpatch.DiffDelete:
			kind = "removed"
		default:
			continue
		}
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		chunks = append(chunks, Chunk{Type: kind, Field: field, Content: d.Text})
	}
	return chunks
}
