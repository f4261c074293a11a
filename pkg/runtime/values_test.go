package runtime

import "testing"

func TestEqualScalars(t *testing.T) {
	cases := []struct {
		a, b Value
		want bool
	}{
		{Int(1), Int(1), true},
		{Int(1), Int(2), false},
		{Int(1), Float(1), false},
		{Text("a"), Text("a"), true},
		{Bool(true), Bool(true), true},
		{Unit(), Unit(), true},
		{Skip(), Skip(), true},
		{Skip(), Unit(), false},
	}
	for _, tc := range cases {
		if got := Equal(tc.a, tc.b); got != tc.want {
			t.Fatalf("Equal(%s, %s) = %v, want %v", ToString(tc.a), ToString(tc.b), got, tc.want)
		}
	}
}

func TestEqualObjectsIgnoreFieldOrder(t *testing.T) {
	a := ObjectOf(Field("x", Int(1)), Field("y", Int(2)))
	b := ObjectOf(Field("y", Int(2)), Field("x", Int(1)))
	if !Equal(a, b) {
		t.Fatalf("objects with same fields in different order should be equal")
	}
	c := ObjectOf(Field("x", Int(1)))
	if Equal(a, c) {
		t.Fatalf("objects with different field sets should not be equal")
	}
}

func TestEqualListsAreOrdered(t *testing.T) {
	if Equal(ListOf(Int(1), Int(2)), ListOf(Int(2), Int(1))) {
		t.Fatalf("lists with different order should not be equal")
	}
	if !Equal(ListOf(Int(1), Int(2)), ListOf(Int(1), Int(2))) {
		t.Fatalf("identical lists should be equal")
	}
}

func TestIsSkipTreatsNilAsSkip(t *testing.T) {
	if !IsSkip(nil) {
		t.Fatalf("nil should read as Skip")
	}
	if !IsSkip(Skip()) {
		t.Fatalf("Skip() should read as Skip")
	}
	if IsSkip(Int(0)) {
		t.Fatalf("Int(0) should not read as Skip")
	}
}

func TestToString(t *testing.T) {
	cases := []struct {
		value Value
		want  string
	}{
		{Skip(), "SKIP"},
		{Unit(), "UNIT"},
		{Bool(true), "True"},
		{Int(-3), "-3"},
		{Text("hi"), `"hi"`},
		{ListOf(Int(1), Int(2)), "[1, 2]"},
		{ObjectOf(Field("x", Int(1))), "{x: 1}"},
	}
	for _, tc := range cases {
		if got := ToString(tc.value); got != tc.want {
			t.Fatalf("ToString = %q, want %q", got, tc.want)
		}
	}
}
