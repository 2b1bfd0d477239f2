package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMutezToTez(t *testing.T) {
	tests := []struct {
		mutez int64
		tez   float64
	}{
		{0, 0},
		{1_000_000, 1},
		{2_500_000, 2.5},
		{1, 0},        // rounds below a hundredth of a tez
		{5_000, 0.01}, // half a hundredth rounds up
		{123_456_789, 123.46},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.tez, MutezToTez(tt.mutez), "mutez=%d", tt.mutez)
	}
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress("tz1VSUr8wwNhLAzempoch5d6hLRiTh8Cjcjb"))
	assert.True(t, ValidAddress("KT1RJ6PbjHpwc3M5rw5s2Nbmefwbuwbdxton"))

	assert.False(t, ValidAddress(""))
	assert.False(t, ValidAddress("tz1tooshort"))
	assert.False(t, ValidAddress("xx1VSUr8wwNhLAzempoch5d6hLRiTh8Cjcjb"))
}
