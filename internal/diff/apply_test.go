package diff

import (
	"reflect"
	"testing"
)

func mustParseOne(t *testing.T, text string) *FilePatch {
	t.Helper()
	patches, err := Parse(text)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(patches) != 1 {
		t.Fatalf("got %d patches, want 1", len(patches))
	}
	return patches[0]
}

func TestApply_PureAdditionAtTop(t *testing.T) {
	fp := mustParseOne(t, "--- x\n+++ x\n@@ -1,1 +1,2 @@\n+z\n a\n")
	res, err := Apply("a\nb\nc", fp, DefaultApplyOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "z\na\nb\nc" {
		t.Errorf("text = %q, want %q", res.Text, "z\na\nb\nc")
	}
	if !reflect.DeepEqual(res.AddedLines, []int{0}) {
		t.Errorf("added = %v, want [0]", res.AddedLines)
	}
	if len(res.RemovedLinesOriginal) != 0 {
		t.Errorf("removed = %v, want []", res.RemovedLinesOriginal)
	}
}

func TestApply_PureDeletion(t *testing.T) {
	fp := mustParseOne(t, "--- x\n+++ x\n@@ -2,1 +1,0 @@\n-b\n")
	res, err := Apply("a\nb\nc", fp, DefaultApplyOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "a\nc" {
		t.Errorf("text = %q, want %q", res.Text, "a\nc")
	}
	if len(res.AddedLines) != 0 {
		t.Errorf("added = %v, want []", res.AddedLines)
	}
	if !reflect.DeepEqual(res.RemovedLinesOriginal, []int{1}) {
		t.Errorf("removed = %v, want [1]", res.RemovedLinesOriginal)
	}
}

func TestApply_ReplaceMiddleWithFuzzyDrift(t *testing.T) {
	fp := mustParseOne(t, "--- x\n+++ x\n@@ -1,3 +1,3 @@\n a\n-b\n+B\n c\n")
	original := "h1\nh2\na\nb\nc\nt1\n"
	res, err := Apply(original, fp, DefaultApplyOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "h1\nh2\na\nB\nc\nt1"
	if res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
	if !reflect.DeepEqual(res.AddedLines, []int{3}) {
		t.Errorf("added = %v, want [3]", res.AddedLines)
	}
	if !reflect.DeepEqual(res.RemovedLinesOriginal, []int{3}) {
		t.Errorf("removed = %v, want [3]", res.RemovedLinesOriginal)
	}
}

func TestApply_BlankRunTolerance(t *testing.T) {
	fp := mustParseOne(t, "--- x\n+++ x\n@@ -1,3 +1,4 @@\n x\n \n+Z\n y\n")
	original := "x\n\n\n\ny"
	res, err := Apply(original, fp, DefaultApplyOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := splitLines(res.Text)
	idx := -1
	for i, l := range lines {
		if l == "Z" {
			idx = i
		}
	}
	if idx == -1 {
		t.Fatalf("Z not found in result: %q", res.Text)
	}
	if idx+1 >= len(lines) || lines[idx+1] != "y" {
		t.Errorf("Z not immediately before y: %v", lines)
	}
	if !reflect.DeepEqual(res.AddedLines, []int{idx}) {
		t.Errorf("added = %v, want [%d]", res.AddedLines, idx)
	}
}

func TestApply_InsertOnlyAnchorsAtClampedGuess(t *testing.T) {
	fp := mustParseOne(t, "--- x\n+++ x\n@@ -5,0 +6,1 @@\n+new\n")
	res, err := Apply("a\nb\nc", fp, DefaultApplyOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// old_start-1 = 4, clamped to len(out) = 3.
	if res.Text != "a\nb\nc\nnew" {
		t.Errorf("text = %q, want %q", res.Text, "a\nb\nc\nnew")
	}
	if !reflect.DeepEqual(res.AddedLines, []int{3}) {
		t.Errorf("added = %v, want [3]", res.AddedLines)
	}
}

func TestApply_ZeroFuzzyOnlyViaGlobalScan(t *testing.T) {
	fp := mustParseOne(t, "--- x\n+++ x\n@@ -1,1 +1,1 @@\n-b\n+B\n")
	// Drift far enough that the local window (fuzzy=0) can't find it,
	// only the global scan can.
	original := "p1\np2\np3\np4\np5\np6\np7\np8\nb\nq1"
	res, err := Apply(original, fp, ApplyOptions{FuzzyContext: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "p1\np2\np3\np4\np5\np6\np7\np8\nB\nq1" {
		t.Errorf("text = %q", res.Text)
	}
}

func TestApply_NoBlankLinesEmptyContextNoAdvancement(t *testing.T) {
	fp := mustParseOne(t, "--- x\n+++ x\n@@ -1,2 +1,3 @@\n a\n \n+Z\n")
	res, err := Apply("a\nb", fp, DefaultApplyOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Empty context after "a" matches a zero-length blank run (no
	// blanks present), so Z is inserted immediately after "a".
	if res.Text != "a\nZ\nb" {
		t.Errorf("text = %q, want %q", res.Text, "a\nZ\nb")
	}
}

func TestApply_AnchoringFailure(t *testing.T) {
	fp := mustParseOne(t, "--- x\n+++ x\n@@ -1,1 +1,1 @@\n-nonexistent\n+z\n")
	_, err := Apply("a\nb\nc", fp, DefaultApplyOptions())
	if err == nil {
		t.Fatalf("expected anchoring failure")
	}
	var ae *ApplyError
	if !errorsAs(err, &ae) {
		t.Fatalf("expected *ApplyError, got %T: %v", err, err)
	}
}

func TestApply_ContextMismatchIsFatal(t *testing.T) {
	// No position in the original satisfies the leading context entry,
	// so neither anchoring nor verification can succeed.
	fp := &FilePatch{
		OldPath: "x", NewPath: "x",
		Hunks: []Hunk{{
			OldStart: 1, OldLen: 2, NewStart: 1, NewLen: 2,
			Lines: []HunkLine{
				{Kind: Context, Text: "wrong-context"},
				{Kind: Deletion, Text: "b"},
			},
		}},
	}
	_, err := Apply("a\nb\nc", fp, DefaultApplyOptions())
	if err == nil {
		t.Fatalf("expected an error")
	}
	var ae *ApplyError
	if !errorsAs(err, &ae) {
		t.Fatalf("expected *ApplyError, got %T: %v", err, err)
	}
}

func TestApply_NeverPartiallyMutatesOnFailure(t *testing.T) {
	fp := mustParseOne(t, "--- x\n+++ x\n@@ -1,1 +1,1 @@\n-nonexistent\n+z\n")
	original := "a\nb\nc"
	_, err := Apply(original, fp, DefaultApplyOptions())
	if err == nil {
		t.Fatalf("expected error")
	}
	// The caller's original string is never touched; Apply operates on
	// a private copy.
	if original != "a\nb\nc" {
		t.Fatalf("original text was mutated: %q", original)
	}
}

func TestApply_MultiHunkBiasTracksAcrossHunks(t *testing.T) {
	text := "--- x\n+++ x\n" +
		"@@ -1,1 +1,2 @@\n+top\n a\n" +
		"@@ -3,1 +4,1 @@\n-c\n+C\n"
	fp := mustParseOne(t, text)
	res, err := Apply("a\nb\nc", fp, DefaultApplyOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "top\na\nb\nC" {
		t.Errorf("text = %q, want %q", res.Text, "top\na\nb\nC")
	}
}

func errorsAs(err error, target **ApplyError) bool {
	if ae, ok := err.(*ApplyError); ok {
		*target = ae
		return true
	}
	return false
}
