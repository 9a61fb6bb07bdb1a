package checker

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyResponse is returned for blank backend output.
	ErrEmptyResponse = errors.New("empty response")
	// ErrNotArray is returned when the output is JSON but not a list.
	ErrNotArray = errors.New("response JSON is not an array")
	// ErrNoJSONArray is returned when no decodable array is found.
	ErrNoJSONArray = errors.New("no JSON array found in response")
)

var (
	fenceRE      = regexp.MustCompile("```[a-zA-Z]*\n|```")
	fencedBodyRE = regexp.MustCompile("(?s)```[a-zA-Z]*\n(.*?)```")
)

// maxArrayCandidates bounds how many '[' positions are tried.
const maxArrayCandidates = 32

// ParseIssues extracts the issue array from backend text. The body of the
// first fenced block is tried before the surrounding prose. Within a text
// the first array holding an object wins; an array of plain values is only
// returned when nothing better decodes. A response that is entirely valid
// JSON but not an array is rejected.
func ParseIssues(text string) ([]any, error) {
	if m := fencedBodyRE.FindStringSubmatch(text); m != nil {
		if arr, err := parseArray(strings.TrimSpace(m[1])); err == nil {
			return arr, nil
		}
	}
	return parseArray(strings.TrimSpace(fenceRE.ReplaceAllString(text, "")))
}

func parseArray(s string) ([]any, error) {
	if s == "" {
		return nil, ErrEmptyResponse
	}

	if s[0] != '[' {
		var whole any
		if json.Unmarshal([]byte(s), &whole) == nil {
			return nil, ErrNotArray
		}
	}

	var first []any
	off := 0
	for tries := 0; tries < maxArrayCandidates; tries++ {
		i := strings.IndexByte(s[off:], '[')
		if i < 0 {
			break
		}
		start := off + i
		off = start + 1

		var arr []any
		if err := json.NewDecoder(strings.NewReader(s[start:])).Decode(&arr); err != nil {
			continue
		}
		if arr == nil {
			arr = []any{}
		}
		if hasObject(arr) {
			return arr, nil
		}
		if first == nil {
			first = arr
		}
	}
	if first != nil {
		return first, nil
	}
	return nil, ErrNoJSONArray
}

func hasObject(arr []any) bool {
	for _, v := range arr {
		if _, ok := v.(map[string]any); ok {
			return true
		}
	}
	return false
}
