package pagination_test

import (
	"net/url"
	"slices"
	"testing"

	"github.com/JaimeStill/screener/pkg/pagination"
)

func config(t *testing.T) pagination.Config {
	t.Helper()
	cfg := pagination.Config{PageSize: 2, PageLimit: 3}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestPageRequestFromQuery(t *testing.T) {
	cfg := config(t)

	tests := []struct {
		name     string
		query    string
		page     int
		pageSize int
	}{
		{"defaults", "", 1, 2},
		{"explicit", "page=2&page_size=3", 2, 3},
		{"clamped size", "page_size=50", 1, 3},
		{"negative page", "page=-4", 1, 2},
		{"garbage", "page=x&page_size=y", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req := pagination.PageRequestFromQuery(values, cfg)
			if req.Page != tt.page || req.PageSize != tt.pageSize {
				t.Errorf("got page %d size %d, want %d/%d", req.Page, req.PageSize, tt.page, tt.pageSize)
			}
		})
	}
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name       string
		req        pagination.PageRequest
		want       []int
		totalPages int
	}{
		{"first page", pagination.PageRequest{Page: 1, PageSize: 2}, []int{1, 2}, 3},
		{"last partial page", pagination.PageRequest{Page: 3, PageSize: 2}, []int{5}, 3},
		{"past the end", pagination.PageRequest{Page: 9, PageSize: 2}, []int{}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pagination.Slice(items, tt.req)
			if !slices.Equal(got.Data, tt.want) {
				t.Errorf("data: got %v, want %v", got.Data, tt.want)
			}
			if got.Total != 5 || got.TotalPages != tt.totalPages {
				t.Errorf("total %d pages %d", got.Total, got.TotalPages)
			}
		})
	}
}

func TestNewPageResultEmpty(t *testing.T) {
	got := pagination.NewPageResult[string](nil, 0, 1, 10)
	if got.Data == nil || got.TotalPages != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestConfigFinalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     pagination.Config
		env     map[string]string
		want    pagination.Config
		wantErr bool
	}{
		{name: "defaults", want: pagination.Config{PageSize: 50, PageLimit: 500}},
		{name: "small limit lowers default size", cfg: pagination.Config{PageLimit: 20}, want: pagination.Config{PageSize: 20, PageLimit: 20}},
		{name: "large size raises default limit", cfg: pagination.Config{PageSize: 800}, want: pagination.Config{PageSize: 800, PageLimit: 800}},
		{
			name: "env overrides file",
			cfg:  pagination.Config{PageSize: 10, PageLimit: 20},
			env:  map[string]string{"TEST_PAGE_SIZE": "15", "TEST_PAGE_LIMIT": "30"},
			want: pagination.Config{PageSize: 15, PageLimit: 30},
		},
		{name: "size above limit", cfg: pagination.Config{PageSize: 10, PageLimit: 5}, wantErr: true},
		{name: "negative size", cfg: pagination.Config{PageSize: -1}, wantErr: true},
		{name: "malformed env", env: map[string]string{"TEST_PAGE_SIZE": "ten"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := tt.cfg
			err := cfg.Finalize(&pagination.Env{PageSize: "TEST_PAGE_SIZE", PageLimit: "TEST_PAGE_LIMIT"})
			if tt.wantErr {
				if err == nil {
					t.Errorf("Finalize(%+v) succeeded, want error", tt.cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Finalize: %v", err)
			}
			if cfg != tt.want {
				t.Errorf("cfg = %+v, want %+v", cfg, tt.want)
			}
		})
	}
}
