package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Go for Beginners":        "go-for-beginners",
		"  Crème Brûlée 101!  ":   "creme-brulee-101",
		"C++ & Rust -- deep dive": "c-rust-deep-dive",
		"!!!":                     "course",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
	long := Slugify(strings.Repeat("word ", 100))
	assert.LessOrEqual(t, len(long), 180)
	assert.True(t, IsSlug(long))
}

func TestIsSlug(t *testing.T) {
	assert.True(t, IsSlug("go-101"))
	assert.False(t, IsSlug("Go-101"))
	assert.False(t, IsSlug("go--101"))
	assert.False(t, IsSlug("-go"))
	assert.False(t, IsSlug(""))
}
