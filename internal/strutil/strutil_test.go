package strutil

import (
	"reflect"
	"testing"
)

func TestByteLength(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"héllo", 6},
		{"日本語", 9},
		{"a€b", 5},
	}
	for _, c := range cases {
		if got := ByteLength(c.in); got != c.want {
			t.Errorf("ByteLength(%q): got %d, want %d", c.in, got, c.want)
		}
	}
}

func TestSplitNonEmpty(t *testing.T) {
	cases := []struct {
		in   string
		sep  string
		want []string
	}{
		{"a,b,c", ",", []string{"a", "b", "c"}},
		{",a,,b,", ",", []string{"a", "b"}},
		{"", ",", nil},
		{",,,", ",", nil},
		{"one", ",", []string{"one"}},
	}
	for _, c := range cases {
		got := SplitNonEmpty(c.in, c.sep)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("SplitNonEmpty(%q, %q): got %v, want %v", c.in, c.sep, got, c.want)
		}
	}
}
