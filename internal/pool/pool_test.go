package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetFloat64Slice(t *testing.T) {
	t.Run("returns slice with requested length", func(t *testing.T) {
		slice, cleanup := GetFloat64Slice(128)
		defer cleanup()

		require.Len(t, slice, 128)
		require.GreaterOrEqual(t, cap(slice), 128)
	})

	t.Run("reuses pooled backing array when capacity is sufficient", func(t *testing.T) {
		slice1, cleanup1 := GetFloat64Slice(64)
		ptr1 := &slice1[0]
		cleanup1()

		slice2, cleanup2 := GetFloat64Slice(64)
		defer cleanup2()

		require.Equal(t, ptr1, &slice2[0], "expected same backing array")
	})

	t.Run("grows when pooled capacity is insufficient", func(t *testing.T) {
		_, cleanup1 := GetFloat64Slice(8)
		cleanup1()

		slice2, cleanup2 := GetFloat64Slice(4096)
		defer cleanup2()

		require.Len(t, slice2, 4096)
	})
}

func TestGetByteSlice(t *testing.T) {
	slice, cleanup := GetByteSlice(256)
	defer cleanup()

	require.Len(t, slice, 256)
	require.GreaterOrEqual(t, cap(slice), 256)
}
