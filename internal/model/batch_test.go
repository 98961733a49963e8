package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSellingPriceFor(t *testing.T) {
	assert.Equal(t, int64(21600), SellingPriceFor(18000))
	assert.Equal(t, int64(12000), SellingPriceFor(10000))
	assert.Equal(t, int64(0), SellingPriceFor(0))
	// floor, not round
	assert.Equal(t, int64(1), SellingPriceFor(1))
}
