package diff

import (
	"github.com/batalabs/diffcore/internal/obslog"
	"github.com/batalabs/diffcore/internal/suggest"
)

// ApplyOptions configures Apply. FuzzyContext is the half-width of the
// local search window tried around an estimated anchor before Apply
// falls back to a full scan. Zero disables the local window.
//
// Logger, when set, receives a debug line per hunk recording which
// anchoring strategy succeeded (estimate, fuzzy offset, or full scan;
// "insert-only" for a hunk with no context or deletion lines).
// It is purely an observability side channel: Apply's return value
// never depends on whether a logger is attached.
type ApplyOptions struct {
	FuzzyContext int
	Logger       *obslog.Logger
}

// DefaultApplyOptions returns the default configuration: a fuzzy
// window of 5 lines on either side of the estimated anchor.
func DefaultApplyOptions() ApplyOptions {
	return ApplyOptions{FuzzyContext: 5}
}

func (o ApplyOptions) fuzzy() int {
	if o.FuzzyContext < 0 {
		return 0
	}
	return o.FuzzyContext
}

// origin records where a working-buffer line came from: its index in
// the original text, or (via inserted) that it is not present in the
// original text. Using a sum type (rather than a reserved sentinel
// integer) keeps "this line has no original index" distinguishable
// from a legitimate index 0.
type origin struct {
	index    int
	inserted bool
}

func fromOriginal(i int) origin { return origin{index: i} }
func inserted() origin          { return origin{inserted: true} }

// Apply applies a single FilePatch to originalText, producing the
// patched text and provenance of inserted/removed lines. Apply never
// mutates fp or originalText. It is all-or-nothing: any hunk failure
// aborts before anything is returned.
func Apply(originalText string, fp *FilePatch, opts ApplyOptions) (*ApplyResult, error) {
	origLines := splitLines(originalText)

	out := make([]string, len(origLines))
	copy(out, origLines)

	originMap := make([]origin, len(origLines))
	for i := range originMap {
		originMap[i] = fromOriginal(i)
	}

	bias := 0
	var added []int
	var removedOriginal []int

	for _, h := range fp.Hunks {
		guess := clamp(h.OldStart-1+bias, 0, len(out))

		anchor, strategy, found := findAnchor(out, h, guess, opts.fuzzy())
		if !found {
			hint := anchorFailureHint(out, h, guess)
			return nil, applyErrf(guess+1, "failed to locate hunk starting at old:%d (%s)", h.OldStart, hint)
		}
		opts.Logger.Debugf("hunk old:%d anchored at %d via %s", h.OldStart, anchor, strategy)

		if err := verifyHunk(out, h, anchor); err != nil {
			return nil, err
		}

		cur := anchor
		for _, hl := range h.Lines {
			switch hl.Kind {
			case Context:
				if hl.Text == "" {
					for cur < len(out) && out[cur] == "" {
						cur++
					}
				} else {
					cur++
				}
			case Deletion:
				if !originMap[cur].inserted {
					removedOriginal = append(removedOriginal, originMap[cur].index)
				}
				out = append(out[:cur], out[cur+1:]...)
				originMap = append(originMap[:cur], originMap[cur+1:]...)
				bias--
			case Addition:
				out = append(out, "")
				copy(out[cur+1:], out[cur:])
				out[cur] = hl.Text

				originMap = append(originMap, origin{})
				copy(originMap[cur+1:], originMap[cur:])
				originMap[cur] = inserted()

				added = append(added, cur)
				cur++
				bias++
			}
		}
	}

	return &ApplyResult{
		Text:                 join(out),
		AddedLines:           added,
		RemovedLinesOriginal: sortedUnique(removedOriginal),
	}, nil
}

// verifyHunk re-walks the full hunk body from anchor without mutating
// out, confirming every context and deletion entry matches. This pass
// must complete before any mutation starts: once mutation begins the
// working buffer is no longer aligned with the hunk's offsets, which
// would make a failure's reported line number meaningless and make
// rollback necessary.
func verifyHunk(out []string, h Hunk, anchor int) error {
	cur := anchor
	for _, hl := range h.Lines {
		switch hl.Kind {
		case Context:
			if hl.Text == "" {
				for cur < len(out) && out[cur] == "" {
					cur++
				}
			} else {
				if cur >= len(out) || out[cur] != hl.Text {
					return applyErrf(cur+1, "context mismatch")
				}
				cur++
			}
		case Deletion:
			if cur >= len(out) || out[cur] != hl.Text {
				return applyErrf(cur+1, "deletion mismatch")
			}
			cur++
		case Addition:
			// insertions do not consume the working buffer
		}
	}
	return nil
}

// consumingSequence returns the in-order subsequence of a hunk's body
// containing only context and deletion entries — insertions do not
// anchor.
func consumingSequence(h Hunk) []HunkLine {
	var out []HunkLine
	for _, hl := range h.Lines {
		if hl.Kind == Context || hl.Kind == Deletion {
			out = append(out, hl)
		}
	}
	return out
}

// minConsumingLength is the number of consuming entries that strictly
// require a line to exist: deletions, and non-empty context. An empty
// context entry can match a zero-length run of blanks, so it imposes
// no lower bound on the candidate window.
func minConsumingLength(consuming []HunkLine) int {
	n := 0
	for _, hl := range consuming {
		if hl.Kind == Deletion || (hl.Kind == Context && hl.Text != "") {
			n++
		}
	}
	return n
}

// findAnchor locates the position in out at which hunk h's consuming
// sequence matches, trying the estimate, then a local fuzzy window,
// then a full scan. The returned strategy names which of those three
// succeeded, or is "insert-only" when the hunk has no consuming entries
// and anchors at the clamped estimate without a match attempt; it is
// for observability only.
func findAnchor(out []string, h Hunk, guess, fuzzy int) (pos int, strategy string, found bool) {
	consuming := consumingSequence(h)
	if len(consuming) == 0 {
		return clamp(guess, 0, len(out)), "insert-only", true
	}

	maxStart := len(out) - minConsumingLength(consuming)
	if maxStart < 0 {
		maxStart = 0
	}
	guess = clamp(guess, 0, maxStart)

	if matchesFrom(out, consuming, guess) {
		return guess, "estimate", true
	}

	for d := 1; d <= fuzzy; d++ {
		if left := guess - d; left >= 0 && left <= maxStart && matchesFrom(out, consuming, left) {
			return left, "fuzzy", true
		}
		if right := guess + d; right >= 0 && right <= maxStart && matchesFrom(out, consuming, right) {
			return right, "fuzzy", true
		}
	}

	for p := 0; p <= maxStart; p++ {
		if matchesFrom(out, consuming, p) {
			return p, "global-scan", true
		}
	}

	return 0, "", false
}

// matchesFrom is the anchoring match predicate: it walks the
// consuming sequence starting at cur and reports whether every entry
// is satisfied, applying the blank-run rule for empty-text context.
func matchesFrom(out []string, consuming []HunkLine, start int) bool {
	cur := start
	n := len(out)
	for _, hl := range consuming {
		switch hl.Kind {
		case Context:
			if hl.Text == "" {
				for cur < n && out[cur] == "" {
					cur++
				}
			} else {
				if cur >= n || out[cur] != hl.Text {
					return false
				}
				cur++
			}
		case Deletion:
			if cur >= n || out[cur] != hl.Text {
				return false
			}
			cur++
		}
	}
	return true
}

// anchorFailureHint asks the suggest package for the line in a window
// around guess most similar to the hunk's first consuming entry, to
// make an anchoring failure actionable. It has no effect on whether
// the hunk applies — it only annotates the error already decided.
func anchorFailureHint(out []string, h Hunk, guess int) string {
	consuming := consumingSequence(h)
	var want string
	for _, hl := range consuming {
		if hl.Text != "" {
			want = hl.Text
			break
		}
	}
	if want == "" {
		return "no non-blank anchor text to compare"
	}

	const window = 25
	lo := clamp(guess-window, 0, len(out))
	hi := clamp(guess+window, 0, len(out))
	return suggest.AnchorFailure(want, out[lo:hi])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func join(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	n := len(lines) - 1
	for _, l := range lines {
		n += len(l)
	}
	b := make([]byte, 0, n)
	for i, l := range lines {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, l...)
	}
	return string(b)
}

func sortedUnique(xs []int) []int {
	if len(xs) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(xs))
	out := make([]int, 0, len(xs))
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
