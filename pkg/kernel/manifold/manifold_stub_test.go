//go:build !manifold

package manifold

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReturnsError(t *testing.T) {
	e, err := New()
	assert.Nil(t, e)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.EqualError(t, err, "manifold engine not available: build with -tags=manifold")
}
