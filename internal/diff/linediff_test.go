package diff

import (
	"reflect"
	"testing"
)

func TestCompute_IdenticalTextHasNoHunks(t *testing.T) {
	inputs := []string{"", "a", "a\nb\nc", "trailing\n", "crlf\r\nline\r\n"}

	for _, in := range inputs {
		got := Compute(in, in)
		if got.Added != 0 || got.Deleted != 0 || len(got.Hunks) != 0 {
			t.Errorf("Compute(%q, %q) = %+v, want empty change", in, in, got)
		}
		if !got.IsEmpty() {
			t.Errorf("IsEmpty() = false for identical %q", in)
		}
	}
}

func TestCompute_CountsAddedAndDeleted(t *testing.T) {
	got := Compute("a\nb\nc", "a\nB\nc\nd")

	if got.Added != 2 {
		t.Errorf("Added = %d, want 2", got.Added)
	}
	if got.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", got.Deleted)
	}
	want := []Hunk{
		{OldStart: 2, OldLines: 1, NewStart: 2, NewLines: 1},
		{OldStart: 4, OldLines: 0, NewStart: 4, NewLines: 1},
	}
	if !reflect.DeepEqual(got.Hunks, want) {
		t.Errorf("Hunks = %+v, want %+v", got.Hunks, want)
	}
}

func TestCompute_Positional(t *testing.T) {
	tests := []struct {
		name    string
		old     string
		new     string
		added   int
		deleted int
		hunks   []Hunk
	}{
		{
			name:    "insertion at top shifts every line",
			old:     "a\nb",
			new:     "x\na\nb",
			added:   3,
			deleted: 2,
			hunks:   []Hunk{{OldStart: 1, OldLines: 2, NewStart: 1, NewLines: 3}},
		},
		{
			name:    "new file against empty previous content",
			old:     "",
			new:     "one\ntwo",
			added:   2,
			deleted: 1,
			hunks:   []Hunk{{OldStart: 1, OldLines: 1, NewStart: 1, NewLines: 2}},
		},
		{
			name:    "truncation",
			old:     "a\nb\nc",
			new:     "a",
			added:   0,
			deleted: 2,
			hunks:   []Hunk{{OldStart: 2, OldLines: 2, NewStart: 2, NewLines: 0}},
		},
		{
			name:    "two separate edits",
			old:     "a\nb\nc\nd\ne",
			new:     "A\nb\nc\nD\ne",
			added:   2,
			deleted: 2,
			hunks: []Hunk{
				{OldStart: 1, OldLines: 1, NewStart: 1, NewLines: 1},
				{OldStart: 4, OldLines: 1, NewStart: 4, NewLines: 1},
			},
		},
		{
			name:    "crlf equals lf",
			old:     "a\r\nb",
			new:     "a\nb",
			added:   0,
			deleted: 0,
			hunks:   []Hunk{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.old, tt.new)
			if got.Added != tt.added || got.Deleted != tt.deleted {
				t.Errorf("added/deleted = %d/%d, want %d/%d", got.Added, got.Deleted, tt.added, tt.deleted)
			}
			if !reflect.DeepEqual(got.Hunks, tt.hunks) {
				t.Errorf("Hunks = %+v, want %+v", got.Hunks, tt.hunks)
			}
			if (got.Added+got.Deleted == 0) != (len(got.Hunks) == 0) {
				t.Errorf("zero counts must coincide with zero hunks: %+v", got)
			}
		})
	}
}

func TestCompute_HunksOrderedAndDisjoint(t *testing.T) {
	got := Compute("1\n2\n3\n4\n5\n6\n7", "1\nx\n3\ny\ny\n6\nz\n8")

	prevEnd := 0
	for _, h := range got.Hunks {
		start, end := h.NewRange()
		if start <= prevEnd {
			t.Fatalf("hunk %+v overlaps or precedes previous end %d", h, prevEnd)
		}
		prevEnd = end
	}
}

func TestHunk_NewRange(t *testing.T) {
	tests := []struct {
		h          Hunk
		start, end int
	}{
		{Hunk{NewStart: 3, NewLines: 2}, 3, 4},
		{Hunk{NewStart: 5, NewLines: 0}, 5, 5},
		{Hunk{NewStart: 0, NewLines: 0}, 1, 1},
	}

	for _, tt := range tests {
		start, end := tt.h.NewRange()
		if start != tt.start || end != tt.end {
			t.Errorf("NewRange(%+v) = (%d, %d), want (%d, %d)", tt.h, start, end, tt.start, tt.end)
		}
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{""}},
		{"a", []string{"a"}},
		{"a\n", []string{"a", ""}},
		{"a\r\nb", []string{"a", "b"}},
	}

	for _, tt := range tests {
		if got := SplitLines(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitLines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
