package input

import "testing"

func TestParsePageDefaults(t *testing.T) {
	p, err := ParsePage("", "")
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}
	want := Page{Offset: 0, Limit: 10, Number: 1}
	if p != want {
		t.Errorf("ParsePage = %+v, want %+v", p, want)
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		start, length string
		want          Page
	}{
		{"0", "10", Page{Offset: 0, Limit: 10, Number: 1}},
		{"20", "10", Page{Offset: 20, Limit: 10, Number: 3}},
		{"25", "10", Page{Offset: 25, Limit: 10, Number: 3}},
		{"10", "5", Page{Offset: 10, Limit: 5, Number: 3}},
	}
	for _, tt := range tests {
		got, err := ParsePage(tt.start, tt.length)
		if err != nil {
			t.Errorf("ParsePage(%q, %q) failed: %v", tt.start, tt.length, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePage(%q, %q) = %+v, want %+v", tt.start, tt.length, got, tt.want)
		}
	}
}

func TestParsePageRejects(t *testing.T) {
	tests := []struct{ start, length string }{
		{"abc", "10"},
		{"10", "abc"},
		{"-10", "10"},
		{"10", ""},
		{"", "10"},
		{"0", "0"},
		{"99999999999999999999", "10"},
	}
	for _, tt := range tests {
		if _, err := ParsePage(tt.start, tt.length); !IsValidationError(err) {
			t.Errorf("ParsePage(%q, %q) error = %v, want ValidationError", tt.start, tt.length, err)
		}
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("id", "42")
	if err != nil || id != 42 {
		t.Fatalf("ParseID = %d, %v", id, err)
	}
	for _, bad := range []string{"", "4 2", "x", "-1"} {
		if _, err := ParseID("id", bad); !IsValidationError(err) {
			t.Errorf("ParseID(%q) error = %v, want ValidationError", bad, err)
		}
	}
}
