// Package suggest improves ApplyError diagnostics when a hunk fails to
// anchor. It never changes whether a hunk applies — the core applier's
// exact-match semantics are untouched — it only helps a human (or a
// GUI collaborator) understand why a hunk did not match by naming the
// closest line actually present in the file.
package suggest

import "github.com/sergi/go-diff/diffmatchpatch"

// ClosestLine returns the line in candidates with the smallest
// Levenshtein distance to want, and that distance. It returns ("", -1)
// if candidates is empty.
func ClosestLine(want string, candidates []string) (line string, distance int) {
	if len(candidates) == 0 {
		return "", -1
	}

	dmp := diffmatchpatch.New()
	best := -1
	bestLine := candidates[0]

	for _, c := range candidates {
		diffs := dmp.DiffMain(want, c, false)
		d := dmp.DiffLevenshtein(diffs)
		if best == -1 || d < best {
			best = d
			bestLine = c
		}
	}

	return bestLine, best
}

// AnchorFailure builds a human-readable explanation for why a hunk's
// leading context or deletion line could not be found near the
// estimated offset, by reporting the most similar line actually
// present in a window of the working buffer.
func AnchorFailure(want string, window []string) string {
	line, distance := ClosestLine(want, window)
	if distance < 0 {
		return "no comparable lines in range"
	}
	if distance == 0 {
		return "an exact match exists elsewhere in the file (context/order mismatch)"
	}
	return "closest line in range: " + quote(line)
}

func quote(s string) string {
	if len(s) > 80 {
		s = s[:77] + "..."
	}
	return "\"" + s + "\""
}
