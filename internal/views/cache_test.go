package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheVersions(t *testing.T) {
	c := NewCache()

	assert.Zero(t, c.Version("/dashboard/invoices"))

	c.Invalidate("/dashboard/invoices")
	c.Invalidate("/dashboard/invoices")
	c.Invalidate("/dashboard")

	assert.Equal(t, uint64(2), c.Version("/dashboard/invoices"))
	assert.Equal(t, uint64(1), c.Version("/dashboard"))
	assert.Zero(t, c.Version("/never-touched"))
}
