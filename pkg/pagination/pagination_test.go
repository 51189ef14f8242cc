package pagination

import (
	"net/http/httptest"
	"testing"
)

func TestFromRequestClamping(t *testing.T) {
	cases := []struct {
		url      string
		wantPage int
		wantSize int
	}{
		{"/catalog", 1, DefaultSize},
		{"/catalog?page=3&size=10", 3, 10},
		{"/catalog?page=-1&size=0", 1, DefaultSize},
		{"/catalog?page=2&size=9999", 2, MaxSize},
		{"/catalog?page=abc&size=xyz", 1, DefaultSize},
	}

	for _, tc := range cases {
		r := httptest.NewRequest("GET", tc.url, nil)
		got := FromRequest(r)
		if got.Number != tc.wantPage || got.Size != tc.wantSize {
			t.Errorf("%s: got page=%d size=%d, want page=%d size=%d", tc.url, got.Number, got.Size, tc.wantPage, tc.wantSize)
		}
	}
}

func TestOffset(t *testing.T) {
	p := Normalize(Page{Number: 3, Size: 10})
	if p.Offset() != 20 {
		t.Fatalf("expected offset 20, got %d", p.Offset())
	}
}

func TestNewResult(t *testing.T) {
	res := NewResult([]string{"a", "b"}, Page{Number: 1, Size: 2}, 5)
	if res.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", res.TotalPages)
	}
	if res.Total != 5 {
		t.Fatalf("expected total 5, got %d", res.Total)
	}

	empty := NewResult[string](nil, Page{Number: 1, Size: 2}, 0)
	if empty.Items == nil {
		t.Fatal("expected non-nil items slice")
	}
}
