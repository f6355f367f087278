// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package oblivious

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidthValidate(t *testing.T) {
	for _, w := range Widths {
		require.NoError(t, w.Validate(), "width %d", w)
	}
	for _, w := range []Width{0, 1, 4, 7, 10, 64} {
		err := w.Validate()
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrUnsupportedWidth), "width %d: %v", w, err)
	}
}

func TestWidthMaxValue(t *testing.T) {
	testCases := []struct {
		w    Width
		want uint64
	}{
		{W6, 63},
		{W8, 255},
		{W12, 4095},
		{W16, 65535},
		{W24, 1<<24 - 1},
		{W32, 1<<32 - 1},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, tc.w.MaxValue(), tc.w.String())
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, uint64(63), Clamp(uint64(99), W6))
	assert.Equal(t, uint64(42), Clamp(uint64(42), W6))
	assert.Equal(t, uint64(255), Clamp(255, W16))
	assert.Equal(t, uint64(4095), Clamp(5000, W12))
	assert.Equal(t, uint64(1<<24-1), Clamp(1<<30, W24))
	assert.Equal(t, uint64(1<<32-1), Clamp(1<<63, W32))
}

func TestWrapAndSatAdd(t *testing.T) {
	assert.Equal(t, uint64(4), Wrap(68, W6))
	assert.Equal(t, uint64(0), Wrap(256, W8))
	assert.Equal(t, uint64(63), SatAdd(40, 40, W6))
	assert.Equal(t, uint64(63), SatAdd(63, 0, W6))
	assert.Equal(t, uint64(62), SatAdd(31, 31, W6))
	assert.Equal(t, uint64(1<<32-1), SatAdd(1<<32-1, 1<<32-1, W32))
}

func TestCheckRange(t *testing.T) {
	require.NoError(t, CheckRange(63, W6))
	err := CheckRange(64, W6)
	require.ErrorIs(t, err, ErrEncoding)
	err = CheckRange(1, Width(5))
	require.ErrorIs(t, err, ErrUnsupportedWidth)
}
