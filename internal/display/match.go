package display

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Match resolves free text against option labels: an exact name first, then
// a unique prefix, then the single closest name within a small edit
// distance. A label's name is the text before its first " (" so that
// "Ranch (1)" matches "ranch". Matching ignores case.
func Match(input string, options []string) (int, bool) {
	in := normalise(input)
	if in == "" {
		return -1, false
	}
	names := make([]string, len(options))
	for i, o := range options {
		names[i] = labelName(o)
		if names[i] == in {
			return i, true
		}
	}

	found := -1
	for i, name := range names {
		if strings.HasPrefix(name, in) {
			if found >= 0 {
				return -1, false
			}
			found = i
		}
	}
	if found >= 0 {
		return found, true
	}

	best, bestDist, tied := -1, 0, false
	for i, name := range names {
		dist := levenshtein.ComputeDistance(in, name)
		if dist > distanceLimit(len(name)) {
			continue
		}
		switch {
		case best < 0 || dist < bestDist:
			best, bestDist, tied = i, dist, false
		case dist == bestDist:
			tied = true
		}
	}
	if best < 0 || tied {
		return -1, false
	}
	return best, true
}

func labelName(label string) string {
	if i := strings.Index(label, " ("); i >= 0 {
		label = label[:i]
	}
	return normalise(label)
}

func normalise(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
