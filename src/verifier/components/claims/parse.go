package claims

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	arrayRe  = regexp.MustCompile(`\[[\s\S]*\]`)
	digitsRe = regexp.MustCompile(`[^0-9]`)
)

// ParseClaimList parses a model response that should be a JSON array of
// strings. Code fences are stripped first; if direct parsing fails, the
// first bracket-delimited substring is tried before giving up.
func ParseClaimList(raw string) ([]string, error) {
	content := stripFences(strings.TrimSpace(raw))

	var list []string
	if err := json.Unmarshal([]byte(content), &list); err == nil {
		return list, nil
	}
	if m := arrayRe.FindString(content); m != "" {
		if err := json.Unmarshal([]byte(m), &list); err == nil {
			return list, nil
		}
	}
	return nil, fmt.Errorf("claims: could not parse claim list from model response")
}

func stripFences(content string) string {
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
	} else {
		return content
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// ParseScore pulls a 0-10 integer out of a model response. Non-digit text
// is stripped; an unparseable response defaults to the neutral 5; the
// result is clamped either way.
func ParseScore(raw string) int {
	digits := digitsRe.ReplaceAllString(strings.TrimSpace(raw), "")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 5
	}
	return Clamp(n, 0, 10)
}

func Clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
