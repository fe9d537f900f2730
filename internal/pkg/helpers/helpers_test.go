package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"golang", "golang"},
		{"Go Developers", "go-developers"},
		{"Go & Rust!", "go---rust-"},
		{"web3", "web3"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 10)
	assert.Equal(t, uint64(20), offset)
	assert.Equal(t, 10, limit)

	offset, limit = CalculateOffsetLimit(0, 0)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, DefaultPageSize, limit)

	_, limit = CalculateOffsetLimit(1, MaxPageSize+1)
	assert.Equal(t, DefaultPageSize, limit, "oversized page size falls back to the default")
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(45, 2, 20)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, int64(45), info.TotalItems)

	empty := NewPaginationInfo(0, 1, 20)
	assert.Equal(t, 1, empty.TotalPages, "an empty result still reports one page")

	clamped := NewPaginationInfo(10, 99, 20)
	assert.Equal(t, 1, clamped.CurrentPage, "page is clamped to the last page")
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Second, ParseDuration("90s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("not-a-duration", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
}
