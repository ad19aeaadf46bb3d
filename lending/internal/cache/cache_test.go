package cache_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookhive/lending-service/lending/internal/cache"
	"github.com/bookhive/lending-service/lending/internal/model"
)

func TestKey(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name   string
		filter model.BookFilter
		want   string
	}{
		{
			name:   "empty",
			filter: model.BookFilter{},
			want:   "title=&author=&page=0&limit=0",
		},
		{
			name:   "full",
			filter: model.BookFilter{Title: "prince", Author: "saint", Page: 2, Limit: 10},
			want:   "title=prince&author=saint&page=2&limit=10",
		},
		{
			name:   "filters distinguish pages",
			filter: model.BookFilter{Title: "prince", Page: 3, Limit: 5},
			want:   "title=prince&author=&page=3&limit=5",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, cache.Key(tt.filter))
		})
	}
}

func TestCatalogCache(t *testing.T) {
	t.Parallel()
	c, err := cache.New(zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	filter := model.BookFilter{Title: "prince", Page: 1, Limit: 5}
	list := model.ListBooks{
		Items: []model.Book{
			{BookUid: "f7cdc58f-2caf-4b15-9727-f89dcc629b27", Title: "The Little Prince", Quantity: 3},
		},
		Pagination: model.Paging{CurrentPage: 1, Limit: 5, TotalItems: 1, TotalPages: 1},
	}

	_, ok := c.Get(filter)
	require.False(t, ok)

	c.Set(filter, list)
	got, ok := c.Get(filter)
	require.True(t, ok)
	require.Equal(t, list, got)

	// a different filter tuple is a distinct entry
	_, ok = c.Get(model.BookFilter{Title: "prince", Page: 2, Limit: 5})
	require.False(t, ok)

	c.Invalidate()
	_, ok = c.Get(filter)
	require.False(t, ok)
}
