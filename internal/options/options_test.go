package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fitConfig struct {
	Degree  int
	Alpha   float64
	Verbose bool
}

func withDegree(d int) Option[*fitConfig] {
	return New(func(c *fitConfig) error {
		if d < 1 {
			return errors.New("degree must be >= 1")
		}
		c.Degree = d

		return nil
	})
}

func withVerbose() Option[*fitConfig] {
	return NoError(func(c *fitConfig) { c.Verbose = true })
}

func TestApply(t *testing.T) {
	t.Run("applies options in order", func(t *testing.T) {
		cfg := &fitConfig{}
		err := Apply(cfg, withDegree(2), withVerbose(), NoError(func(c *fitConfig) { c.Alpha = 0.5 }))
		require.NoError(t, err)
		require.Equal(t, 2, cfg.Degree)
		require.Equal(t, 0.5, cfg.Alpha)
		require.True(t, cfg.Verbose)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &fitConfig{}
		err := Apply(cfg, withDegree(3), withDegree(0), withVerbose())
		require.Error(t, err)
		require.Contains(t, err.Error(), "degree must be >= 1")
		require.Equal(t, 3, cfg.Degree)
		require.False(t, cfg.Verbose, "options after the failing one must not run")
	})

	t.Run("empty option list is a no-op", func(t *testing.T) {
		cfg := &fitConfig{Degree: 7}
		require.NoError(t, Apply(cfg))
		require.Equal(t, 7, cfg.Degree)
	})
}

func TestGenericTargets(t *testing.T) {
	var n int
	opt := NoError(func(p *int) { *p = 42 })
	require.NoError(t, Apply(&n, opt))
	require.Equal(t, 42, n)
}
