package snapshot

import (
	"fmt"

	"github.com/firmanaf/ntlmodeling/errs"
	"github.com/firmanaf/ntlmodeling/format"
	"github.com/firmanaf/ntlmodeling/internal/options"
)

var magic = [4]byte{'N', 'T', 'L', 'S'}

const (
	formatVersion = 1

	flagDegreeClamped = 1 << 0
	flagClampNonNeg   = 1 << 1
	flagHasNoData     = 1 << 2
)

type config struct {
	compression format.CompressionType
}

// Option configures snapshot encoding.
type Option = options.Option[*config]

func defaultConfig() *config {
	return &config{compression: format.CompressionZstd}
}

// WithCompression selects the payload codec. The default is Zstd.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(c *config) error {
		if !ct.Valid() {
			return fmt.Errorf("%w: compression type %s", errs.ErrInvalidConfig, ct)
		}
		c.compression = ct

		return nil
	})
}
