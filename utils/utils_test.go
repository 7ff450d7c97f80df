package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomString(t *testing.T) {
	s := GenerateRandomString(16)
	assert.Len(t, s, 16)
	assert.NotEqual(t, s, GenerateRandomString(16))
}

func TestGenerateRandomDigitString(t *testing.T) {
	s := GenerateRandomDigitString(6)
	assert.Len(t, s, 6)
	for _, c := range s {
		assert.True(t, c >= '0' && c <= '9')
	}
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		url       string
		wantSkip  int64
		wantLimit int64
	}{
		{"/?page=1&limit=10", 0, 10},
		{"/?page=3&limit=20", 40, 20},
		{"/", 0, 10},
		{"/?page=0&limit=-5", 0, 10},
		{"/?limit=500", 0, 100},
	}

	for _, tc := range cases {
		r := httptest.NewRequest("GET", tc.url, nil)
		skip, limit := ParsePagination(r, 10, 100)
		assert.Equal(t, tc.wantSkip, skip, tc.url)
		assert.Equal(t, tc.wantLimit, limit, tc.url)
	}
}
