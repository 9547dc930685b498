package diff

import "strconv"

// Summarize counts additions, deletions and hunks across a FilePatch.
// It is a pure function with no I/O.
func Summarize(fp *FilePatch) (additions, deletions, hunks int) {
	for _, h := range fp.Hunks {
		for _, hl := range h.Lines {
			switch hl.Kind {
			case Addition:
				additions++
			case Deletion:
				deletions++
			}
		}
	}
	return additions, deletions, len(fp.Hunks)
}

// FormatFileDiff reconstructs a canonical single-file unified diff
// from a parsed FilePatch. It is not a round-trip with Parse —
// timestamps, skipped noise lines and original length heuristics are
// not preserved — it is a canonical presentation of the parsed model.
func FormatFileDiff(fp *FilePatch) string {
	oldPath := fp.OldPath
	if oldPath == "" {
		oldPath = "/dev/null"
	}
	newPath := fp.NewPath
	if newPath == "" {
		newPath = "/dev/null"
	}

	lines := make([]string, 0, 2+4*len(fp.Hunks))
	lines = append(lines, "--- "+withPrefix(oldPath, "a/"), "+++ "+withPrefix(newPath, "b/"))

	for _, h := range fp.Hunks {
		lines = append(lines, "@@ -"+strconv.Itoa(h.OldStart)+","+strconv.Itoa(h.OldLen)+
			" +"+strconv.Itoa(h.NewStart)+","+strconv.Itoa(h.NewLen)+" @@")
		for _, hl := range h.Lines {
			lines = append(lines, string(hl.Kind.prefix())+hl.Text)
		}
	}

	return join(lines)
}

// withPrefix prepends prefix to p, unless p is the literal "/dev/null"
// sentinel, which is written bare.
func withPrefix(p, prefix string) string {
	if p == "/dev/null" {
		return p
	}
	return prefix + p
}
