package store

import "testing"

func TestPageParamsValidate(t *testing.T) {
	tests := []struct {
		name      string
		in        PageParams
		wantPage  int
		wantLimit int
	}{
		{"defaults", PageParams{}, 1, 20},
		{"negative page", PageParams{Page: -3, Limit: 10}, 1, 10},
		{"limit capped", PageParams{Page: 2, Limit: 500}, 2, 100},
		{"valid passthrough", PageParams{Page: 4, Limit: 50}, 4, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Validate()
			if tt.in.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", tt.in.Page, tt.wantPage)
			}
			if tt.in.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", tt.in.Limit, tt.wantLimit)
			}
		})
	}
}

func TestPageParamsOffset(t *testing.T) {
	p := PageParams{Page: 3, Limit: 20}
	if got := p.Offset(); got != 40 {
		t.Errorf("Offset() = %d, want 40", got)
	}
}

func TestNewPageResult(t *testing.T) {
	params := PageParams{Page: 2, Limit: 20}
	result := NewPageResult([]string{"a", "b"}, params, 41)

	if result.Total != 41 {
		t.Errorf("Total = %d, want 41", result.Total)
	}
	if result.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", result.TotalPages)
	}
	if result.Page != 2 || result.Limit != 20 {
		t.Errorf("Page/Limit = %d/%d, want 2/20", result.Page, result.Limit)
	}
}

func TestNewPageResult_Empty(t *testing.T) {
	result := NewPageResult([]string(nil), PageParams{Page: 1, Limit: 20}, 0)

	if result.TotalPages != 0 {
		t.Errorf("TotalPages = %d, want 0", result.TotalPages)
	}
	if result.Total != 0 {
		t.Errorf("Total = %d, want 0", result.Total)
	}
}
