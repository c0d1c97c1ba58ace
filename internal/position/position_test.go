package position

import "testing"

func at(line, col, off int) Position {
	return Position{Filename: "test.mdl", Line: line, Column: col, Offset: off}
}

func TestPositionValidity(t *testing.T) {
	if (Position{}).IsValid() {
		t.Error("zero position reports valid")
	}

	if !at(1, 1, 0).IsValid() {
		t.Error("start-of-file position reports invalid")
	}
}

func TestPositionString(t *testing.T) {
	if got := at(3, 7, 42).String(); got != "test.mdl:3:7" {
		t.Errorf("String = %q", got)
	}

	p := Position{Line: 3, Column: 7}
	if got := p.String(); got != "3:7" {
		t.Errorf("String without filename = %q", got)
	}

	long := Position{Filename: "dir/sub/test.mdl", Line: 1, Column: 1}
	if got := long.String(); got != "test.mdl:1:1" {
		t.Errorf("String did not strip the directory: %q", got)
	}
}

func TestPositionOrdering(t *testing.T) {
	a, b := at(1, 1, 0), at(1, 2, 1)

	if !a.Before(b) || b.Before(a) {
		t.Error("Before disagrees with offsets")
	}
	if !b.After(a) || a.After(b) {
		t.Error("After disagrees with offsets")
	}
}

func TestAdvance(t *testing.T) {
	p := at(1, 1, 0)

	p = p.Advance('a', 1)
	if p.Line != 1 || p.Column != 2 || p.Offset != 1 {
		t.Errorf("after 'a': %d:%d offset %d", p.Line, p.Column, p.Offset)
	}

	p = p.Advance('λ', 2)
	if p.Column != 3 || p.Offset != 3 {
		t.Errorf("after a two-byte rune: column %d offset %d", p.Column, p.Offset)
	}

	p = p.Advance('\n', 1)
	if p.Line != 2 || p.Column != 1 || p.Offset != 4 {
		t.Errorf("after newline: %d:%d offset %d", p.Line, p.Column, p.Offset)
	}
}

func TestSpan(t *testing.T) {
	s := NewSpan(at(1, 1, 0), at(1, 5, 4))

	if !s.IsValid() {
		t.Fatal("span reports invalid")
	}

	if got := s.String(); got != "test.mdl:1:1-5" {
		t.Errorf("single-line String = %q", got)
	}

	multi := NewSpan(at(1, 3, 2), at(2, 4, 9))
	if got := multi.String(); got != "test.mdl:1:3-2:4" {
		t.Errorf("multi-line String = %q", got)
	}

	if !s.Contains(at(1, 3, 2)) {
		t.Error("span does not contain an interior position")
	}
	if s.Contains(at(1, 5, 4)) {
		t.Error("span contains its exclusive end")
	}
}

func TestSpanUnion(t *testing.T) {
	a := NewSpan(at(1, 1, 0), at(1, 3, 2))
	b := NewSpan(at(1, 5, 4), at(2, 1, 8))

	u := a.Union(b)
	if u.Start != a.Start || u.End != b.End {
		t.Errorf("union = %s", u)
	}

	if got := a.Union(Span{}); got != a {
		t.Error("union with an invalid span is not the identity")
	}
}
