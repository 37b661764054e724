package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderAmountInCents(t *testing.T) {
	// 37.01 n'est pas représentable exactement en float64 : une simple
	// troncature donnerait 3700
	assert.Equal(t, int64(3701), orderAmountInCents(37.01))
	assert.Equal(t, int64(3700), orderAmountInCents(37.00))
	assert.Equal(t, int64(2999), orderAmountInCents(29.99))
	assert.Equal(t, int64(0), orderAmountInCents(0))
	assert.Equal(t, int64(129900), orderAmountInCents(1299.00))
}
