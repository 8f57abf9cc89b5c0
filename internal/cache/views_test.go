package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViews_RoundTrip(t *testing.T) {
	v := NewViews()

	_, ok := v.Get("/dashboard/invoices", "page=1")
	assert.False(t, ok)

	v.Set("/dashboard/invoices", "page=1", []byte(`{"page":1}`))
	payload, ok := v.Get("/dashboard/invoices", "page=1")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"page":1}`), payload)
}

func TestViews_InvalidateDropsAllVariants(t *testing.T) {
	v := NewViews()
	v.Set("/dashboard/invoices", "page=1", []byte("a"))
	v.Set("/dashboard/invoices", "query=x&page=2", []byte("b"))
	v.Set("/dashboard/customers", "all", []byte("c"))

	v.Invalidate("/dashboard/invoices")

	_, ok := v.Get("/dashboard/invoices", "page=1")
	assert.False(t, ok)
	_, ok = v.Get("/dashboard/invoices", "query=x&page=2")
	assert.False(t, ok)
	// other paths untouched
	_, ok = v.Get("/dashboard/customers", "all")
	assert.True(t, ok)
}

func TestViews_InvalidateMissingPathIsNoop(t *testing.T) {
	v := NewViews()
	v.Invalidate("/dashboard/invoices")
}
