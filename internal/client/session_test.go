package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultView(t *testing.T) {
	v := DefaultView()
	assert.True(t, v.IsDefault())
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, DefaultPerPage, v.PerPage)
	assert.Equal(t, DefaultSortBy, v.SortBy)
	assert.Equal(t, DefaultSortOrder, v.SortOrder)
}

func TestViewIsDefault(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*View)
		want   bool
	}{
		{"untouched", func(v *View) {}, true},
		{"paged forward", func(v *View) { v.Page = 2 }, false},
		{"sorted by size", func(v *View) { v.SortBy = "file_size" }, false},
		{"ascending", func(v *View) { v.SortOrder = "ASC" }, false},
		{"filtered", func(v *View) { v.Filter.Filename = "cat" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := DefaultView()
			tt.mutate(&v)
			assert.Equal(t, tt.want, v.IsDefault())
		})
	}
}

func TestSessionPageAndSort(t *testing.T) {
	s := NewSession()

	s.SetPage(3)
	assert.Equal(t, 3, s.View().Page)

	s.SetPage(0)
	assert.Equal(t, 1, s.View().Page)

	s.SetPage(4)
	s.SetSort("file_size", "ASC")
	v := s.View()
	assert.Equal(t, "file_size", v.SortBy)
	assert.Equal(t, "ASC", v.SortOrder)
	// sort change returns to page 1
	assert.Equal(t, 1, v.Page)
}

func TestSessionObserveTotal(t *testing.T) {
	s := NewSession()

	// first observation is a baseline, never an increase
	assert.False(t, s.ObserveTotal(10))
	assert.False(t, s.ObserveTotal(10))
	assert.True(t, s.ObserveTotal(11))
	// a decrease (deletion) is not an increase
	assert.False(t, s.ObserveTotal(5))
	assert.True(t, s.ObserveTotal(6))
}

func TestApplyFilterResetsBaseline(t *testing.T) {
	s := NewSession()
	s.SetPage(3)
	assert.False(t, s.ObserveTotal(100))

	s.ApplyFilter(Filter{Filename: "cat"})
	v := s.View()
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, "cat", v.Filter.Filename)

	// filtered totals are much smaller; without the reset this would
	// look like a shrink, and the next unfiltered total like a spike
	assert.False(t, s.ObserveTotal(4))
	assert.True(t, s.ObserveTotal(5))
}

func TestSnapBack(t *testing.T) {
	s := NewSession()
	s.SetSort("file_size", "DESC")
	s.SetPage(5)

	s.SnapBack()
	v := s.View()
	assert.Equal(t, 1, v.Page)
	// only the page snaps, the rest of the view is preserved
	assert.Equal(t, "file_size", v.SortBy)
}

func TestSessionAuthenticated(t *testing.T) {
	s := NewSession()
	assert.False(t, s.Authenticated())
	s.SetAuthenticated(true)
	assert.True(t, s.Authenticated())
}
