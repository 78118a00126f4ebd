package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/xrsl/texcv/pkg/model"
)

// ErrEmptyResult reports an answer that decoded to nothing usable.
var ErrEmptyResult = errors.New("empty result")

type validator interface {
	Validate() error
}

// requiredKeys lists the keys a generated record must carry. Decoding
// alone would turn a missing key into a zero value, e.g. job 0, which
// matches no loaded job.
func requiredKeys(v any) []string {
	switch v.(type) {
	case model.Summary:
		return []string{"summary"}
	case model.JobDescription:
		return []string{"job", "description"}
	case model.Cvitem:
		return []string{"job", "item"}
	case model.CarStory:
		return []string{"job", "challenge", "action", "result"}
	case model.Letterinfo:
		return []string{"recipient", "subject", "opening", "content"}
	default:
		return nil
	}
}

func checkKeys(record gjson.Result, keys []string) error {
	var missing []string
	for _, k := range keys {
		if !record.Get(k).Exists() {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing keys %s", strings.Join(missing, ", "))
	}
	return nil
}

// EstimateTokens approximates a token count as one token per four
// characters, rounded up.
func EstimateTokens(s string) int {
	return int(math.Ceil(float64(utf8.RuneCountInString(s)) / 4))
}

// extractJSON strips markdown code fences and any prose around the first
// JSON object or array in s.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}

	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return strings.TrimSpace(s)
	}
	closer := "}"
	if s[start] == '[' {
		closer = "]"
	}
	if end := strings.LastIndex(s, closer); end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}

// decodeObject strictly decodes a single record.
func decodeObject[T validator](text string) (T, error) {
	var v T
	raw := extractJSON(text)
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return v, fmt.Errorf("answer is not a JSON object")
	}
	if err := checkKeys(gjson.Parse(raw), requiredKeys(v)); err != nil {
		return v, err
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, err
	}
	if err := v.Validate(); err != nil {
		return v, err
	}
	return v, nil
}

// decodeList strictly decodes a list of records. The list may be wrapped in
// an object under any key, e.g. {"items": [...]}. A decoded empty list is
// ErrEmptyResult.
func decodeList[T validator](text string) ([]T, error) {
	raw := extractJSON(text)
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("answer is not valid JSON")
	}

	root := gjson.Parse(raw)
	if root.IsObject() {
		var inner gjson.Result
		root.ForEach(func(_, value gjson.Result) bool {
			if value.IsArray() {
				inner = value
				return false
			}
			return true
		})
		if !inner.Exists() {
			return nil, fmt.Errorf("answer has no JSON array")
		}
		root = inner
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("answer is not a JSON array")
	}
	var zero T
	keys := requiredKeys(zero)
	for i, record := range root.Array() {
		if !record.IsObject() {
			return nil, fmt.Errorf("item %d is not a JSON object", i)
		}
		if err := checkKeys(record, keys); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}

	var list []T
	if err := json.Unmarshal([]byte(root.Raw), &list); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrEmptyResult
	}
	for i, v := range list {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return list, nil
}

func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}
