package recipe

import (
	"regexp"
	"strings"
)

var fillerPhrases = []string{"i want", "please", "something", "show me", "can i have"}

var withoutPattern = regexp.MustCompile(`without\s+([a-zA-Z,\s]+)`)

// ExtractExclusions cleans a free-text query and pulls out the ingredients
// listed in a "without X, Y" clause.
//
//	ExtractExclusions("recipe without nuts, dairy") == ("recipe", ["nuts", "dairy"])
func ExtractExclusions(query string) (string, []string) {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, f := range fillerPhrases {
		q = strings.ReplaceAll(q, f, "")
	}
	q = strings.TrimSpace(q)

	var exclusions []string
	if m := withoutPattern.FindStringSubmatchIndex(q); m != nil {
		for _, part := range strings.Split(q[m[2]:m[3]], ",") {
			if part = strings.TrimSpace(part); part != "" {
				exclusions = append(exclusions, part)
			}
		}
		q = q[:m[0]] + q[m[1]:]
	}

	return strings.Join(strings.Fields(q), " "), exclusions
}

// MergeExclusions combines query exclusions with the stored dietary ones,
// dropping blanks and duplicates.
func MergeExclusions(lists ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range lists {
		for _, e := range list {
			e = strings.TrimSpace(e)
			key := strings.ToLower(e)
			if e == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, e)
		}
	}
	return out
}
