package diff

import (
	"regexp"
	"strconv"
	"strings"
)

// hunkHeaderRE accepts the three recognised @@ shapes:
//
//	@@ -O,L +N,L @@
//	@@ -O +N @@
//	@@
//
// with an optional trailing label after the closing @@, tolerated by
// the final .* group.
var hunkHeaderRE = regexp.MustCompile(
	`^@@(?:\s*-\s*(\d+)(?:,(\d+))?)?` +
		`(?:\s+\+\s*(\d+)(?:,(\d+))?)?` +
		`(?:\s*@@.*)?$`,
)

// noisePrefixes lists preamble lines skipped when not inside a hunk
// body: VCS metadata lines that precede or separate file headers.
var noisePrefixes = []string{
	"diff ",
	"index ",
	"new file mode",
	"deleted file mode",
	"similarity index",
	"rename from",
	"rename to",
	"GIT binary patch",
	"Binary files ",
}

func isNoiseLine(line string) bool {
	for _, p := range noisePrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// headerPath matches a "--- ", "+++ " or "*** " header line, rejecting
// the legacy context-diff range form ("*** 1,5 ***") by requiring the
// first non-space character after the marker not be a digit.
func headerPath(line, marker string) (path string, ok bool) {
	if !strings.HasPrefix(line, marker) {
		return "", false
	}
	rest := strings.TrimPrefix(line, marker)
	trimmed := strings.TrimLeft(rest, " ")
	if trimmed == "" {
		return "", false
	}
	if trimmed[0] >= '0' && trimmed[0] <= '9' {
		return "", false
	}
	return trimmed, true
}

// cleanPath normalises a header path: drops a trailing timestamp after
// the first tab, strips a leading "a/" or "b/", trims surrounding
// whitespace, and preserves "/dev/null" verbatim.
func cleanPath(p string) string {
	p = strings.TrimRight(p, " \t")
	if idx := strings.IndexByte(p, '\t'); idx >= 0 {
		p = strings.TrimRight(p[:idx], " \t")
	}
	if p == "/dev/null" {
		return p
	}
	if strings.HasPrefix(p, "a/") || strings.HasPrefix(p, "b/") {
		p = p[2:]
	}
	return strings.TrimSpace(p)
}

// Parse converts diff text into an ordered list of FilePatch values.
// It is tolerant of common VCS preamble noise and of short or bare
// hunk headers, per the unified-diff dialect this package accepts.
func Parse(text string) ([]*FilePatch, error) {
	lines := splitLines(text)
	var patches []*FilePatch
	var cur *FilePatch

	i := 0
	for i < len(lines) {
		line := lines[i]

		if isNoiseLine(line) {
			i++
			continue
		}

		if oldPath, ok := headerPath(line, "*** "); ok {
			newLine, consumed, ok := lookaheadNewHeader(lines, i+1, "--- ")
			if !ok {
				return nil, parseErrf(i+1, "missing --- <new> after *** <old>")
			}
			newPath, _ := headerPath(newLine, "--- ")
			cur = &FilePatch{OldPath: cleanPath(oldPath), NewPath: cleanPath(newPath)}
			patches = append(patches, cur)
			i = consumed
			continue
		}

		if oldPath, ok := headerPath(line, "--- "); ok {
			newLine, consumed, ok := lookaheadNewHeader(lines, i+1, "+++ ")
			if !ok {
				return nil, parseErrf(i+1, "missing +++ <new> after --- <old>")
			}
			newPath, _ := headerPath(newLine, "+++ ")
			cur = &FilePatch{OldPath: cleanPath(oldPath), NewPath: cleanPath(newPath)}
			patches = append(patches, cur)
			i = consumed
			continue
		}

		if strings.HasPrefix(line, "*** ") || strings.HasPrefix(line, "--- ") {
			return nil, parseErrf(i+1, "malformed header line: %q", line)
		}

		if strings.HasPrefix(line, "@@") {
			if cur == nil {
				return nil, parseErrf(i+1, "hunk header before any file header")
			}
			m := hunkHeaderRE.FindStringSubmatch(line)
			if m == nil {
				return nil, parseErrf(i+1, "bad hunk header: %s", line)
			}
			h := Hunk{
				OldStart: atoiDefault(m[1], 1),
				OldLen:   atoiDefault(m[2], 0),
				NewStart: atoiDefault(m[3], 1),
				NewLen:   atoiDefault(m[4], 0),
			}
			i++
			for i < len(lines) {
				l := lines[i]
				if strings.HasPrefix(l, "@@") {
					break
				}
				if _, ok := headerPath(l, "--- "); ok {
					break
				}
				if _, ok := headerPath(l, "*** "); ok {
					break
				}
				if strings.HasPrefix(l, "diff ") {
					break
				}
				if l == "" {
					h.Lines = append(h.Lines, HunkLine{Kind: Context, Text: ""})
					i++
					continue
				}
				switch l[0] {
				case ' ':
					h.Lines = append(h.Lines, HunkLine{Kind: Context, Text: l[1:]})
				case '+':
					h.Lines = append(h.Lines, HunkLine{Kind: Addition, Text: l[1:]})
				case '-':
					h.Lines = append(h.Lines, HunkLine{Kind: Deletion, Text: l[1:]})
				case '\\':
					// "\ No newline at end of file" and similar markers
					// are ignored without effect.
				default:
					return nil, parseErrf(i+1, "unrecognised hunk body line: %q", l)
				}
				i++
			}
			cur.Hunks = append(cur.Hunks, h)
			continue
		}

		i++
	}

	if len(patches) == 0 {
		return nil, parseErrf(0, "no file patches found")
	}
	return patches, nil
}

// lookaheadNewHeader scans up to three lines starting at idx for a
// new-header line beginning with marker ("+++ " after a "--- " header,
// "--- " after a "*** " header), skipping any recognised preamble noise
// along the way. It returns the matched line, the index just past it,
// and whether a match was found.
func lookaheadNewHeader(lines []string, idx int, marker string) (string, int, bool) {
	limit := idx + 3
	if limit > len(lines) {
		limit = len(lines)
	}
	for j := idx; j < limit; j++ {
		if isNoiseLine(lines[j]) {
			continue
		}
		if _, ok := headerPath(lines[j], marker); ok {
			return lines[j], j + 1, true
		}
		return "", 0, false
	}
	return "", 0, false
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// splitLines splits on "\n" without treating a trailing newline as a
// final empty element's own line, matching strings.Split semantics
// used deliberately here: Go's strings.Split("a\nb\n", "\n") yields
// ["a","b",""], and that trailing "" is an artifact of a trailing
// newline, not a line of diff content. We trim exactly one trailing
// empty element to mirror Python's str.splitlines() used by the
// reference implementation.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" && strings.HasSuffix(text, "\n") {
		lines = lines[:len(lines)-1]
	}
	return lines
}
