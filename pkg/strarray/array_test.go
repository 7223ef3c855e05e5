package strarray

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/escaper/pkg/strbuf"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		sep   string
		max   int
		want  []string
	}{
		{"simple", "a,b,c", ",", 0, []string{"a", "b", "c"}},
		{"consecutive separators", "a,,b", ",", 0, []string{"a", "", "b"}},
		{"max one", "a,b,c", ",", 1, []string{"a", "b,c"}},
		{"max larger than splits", "a,b", ",", 5, []string{"a", "b"}},
		{"negative max is unlimited", "a,b,c", ",", -1, []string{"a", "b", "c"}},
		{"empty input", "", ",", 0, []string{""}},
		{"separator absent", "abc", ",", 0, []string{"abc"}},
		{"leading and trailing", ",a,", ",", 0, []string{"", "a", ""}},
		{"multi-byte separator", "a::b::c", "::", 0, []string{"a", "b", "c"}},
		{"only separators", ",,", ",", 0, []string{"", "", ""}},
		{"embedded NUL", "a\x00b,c", ",", 0, []string{"a\x00b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Split(tt.input, tt.sep, tt.max)
			if err != nil {
				t.Fatalf("Split(%q, %q, %d) error = %v", tt.input, tt.sep, tt.max, err)
			}
			if diff := cmp.Diff(tt.want, a.Entries()); diff != "" {
				t.Errorf("Split(%q, %q, %d) mismatch (-want +got):\n%s", tt.input, tt.sep, tt.max, diff)
			}
		})
	}
}

func TestSplit_EmptySeparator(t *testing.T) {
	a, err := Split("abc", "", 0)
	if !errors.Is(err, ErrInvalidArg) {
		t.Fatalf("Split() error = %v, want ErrInvalidArg", err)
	}
	if a != nil {
		t.Errorf("Split() returned %v on error", a.Entries())
	}
}

func TestSplit_DoesNotModifyInput(t *testing.T) {
	input := "x;y;z"
	if _, err := Split(input, ";", 0); err != nil {
		t.Fatal(err)
	}
	if input != "x;y;z" {
		t.Errorf("input changed to %q", input)
	}
}

func TestSplitBuffer(t *testing.T) {
	b := strbuf.New(0)
	_ = b.Append("k=v&x=y")
	a, err := SplitBuffer(b, "&", 0)
	if err != nil {
		t.Fatal(err)
	}
	b.Clear()
	_ = b.Append("overwritten")
	if diff := cmp.Diff([]string{"k=v", "x=y"}, a.Entries()); diff != "" {
		t.Errorf("SplitBuffer() mismatch (-want +got):\n%s", diff)
	}
}

func TestArray_Growth(t *testing.T) {
	var a Array
	for i := 0; i < 100; i++ {
		if err := a.Append(strings.Repeat("x", i)); err != nil {
			t.Fatal(err)
		}
	}
	if a.Len() != 100 {
		t.Fatalf("Len() = %d, want 100", a.Len())
	}
	if a.Cap() != 128 {
		t.Errorf("Cap() = %d, want 128", a.Cap())
	}
	for i := 0; i < 100; i++ {
		if len(a.At(i)) != i {
			t.Fatalf("At(%d) has length %d", i, len(a.At(i)))
		}
	}
}

func TestArray_EntriesIsCopy(t *testing.T) {
	a := New(2)
	_ = a.Append("one")
	e := a.Entries()
	e[0] = "changed"
	if a.At(0) != "one" {
		t.Errorf("At(0) = %q after editing Entries() copy", a.At(0))
	}
}

func TestArray_JoinRoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "a,,b", ",x,y,"} {
		a, err := Split(s, ",", 0)
		if err != nil {
			t.Fatal(err)
		}
		if got := a.Join(","); got != s {
			t.Errorf("Join(Split(%q)) = %q", s, got)
		}
	}
}

func TestArray_Release(t *testing.T) {
	a, _ := Split("a,b", ",", 0)
	a.Release()
	if a.Len() != 0 || a.Cap() != 0 {
		t.Errorf("after Release: Len=%d Cap=%d", a.Len(), a.Cap())
	}
	if err := a.Append("again"); err != nil {
		t.Errorf("Append() after Release error = %v", err)
	}
}

func BenchmarkSplit(b *testing.B) {
	s := strings.Repeat("field,", 64)
	for i := 0; i < b.N; i++ {
		_, _ = Split(s, ",", 0)
	}
}
