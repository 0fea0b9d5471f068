package geotess

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the process-wide defaults: the default ellipsoid new Shapes
// are built against, the default interpolation modes a Position is
// constructed with, the GridCatalog capacity, and the log level.
// Grounded on the rest-of-pack convention of a viper-backed settings struct
// (paulcager/osgridref, tobilg/duckdb-tileserver use the same shape: a struct
// of typed fields populated by one Load call, not ad hoc flag parsing).
type Config struct {
	DefaultEllipsoid     Ellipsoid
	UseSphere            bool
	DefaultHorizontal    HorizontalInterpolation
	DefaultRadial        RadialInterpolation
	GridCacheBytes       int64
	LogLevel             string
}

// DefaultConfig returns the package defaults: WGS84, ellipsoidal, linear
// horizontal and radial interpolation, a 64MB grid cache, info-level logging.
func DefaultConfig() Config {
	return Config{
		DefaultEllipsoid:  WGS84,
		UseSphere:         false,
		DefaultHorizontal: HorizontalLinear,
		DefaultRadial:     RadialLinear,
		GridCacheBytes:    64 * 1024 * 1024,
		LogLevel:          "info",
	}
}

// LoadConfig reads configuration from path (any format viper supports: YAML,
// JSON, TOML) layered over DefaultConfig, and applies the resulting log
// level immediately.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("ellipsoid", "WGS84")
	v.SetDefault("useSphere", false)
	v.SetDefault("horizontalInterpolation", "LINEAR")
	v.SetDefault("radialInterpolation", "LINEAR")
	v.SetDefault("gridCacheBytes", cfg.GridCacheBytes)
	v.SetDefault("logLevel", cfg.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		return cfg, &ErrIoFailure{Path: path, Reason: err.Error()}
	}

	switch v.GetString("ellipsoid") {
	case "SPHERE":
		cfg.DefaultEllipsoid = SPHERE
	case "GRS80":
		cfg.DefaultEllipsoid = GRS80
	case "IERS2003":
		cfg.DefaultEllipsoid = IERS2003
	default:
		cfg.DefaultEllipsoid = WGS84
	}
	cfg.UseSphere = v.GetBool("useSphere")

	if v.GetString("horizontalInterpolation") == "NATURAL_NEIGHBOR" {
		cfg.DefaultHorizontal = HorizontalNaturalNeighbor
	} else {
		cfg.DefaultHorizontal = HorizontalLinear
	}
	if v.GetString("radialInterpolation") == "CUBIC_SPLINE" {
		cfg.DefaultRadial = RadialCubicSpline
	} else {
		cfg.DefaultRadial = RadialLinear
	}

	cfg.GridCacheBytes = v.GetInt64("gridCacheBytes")
	cfg.LogLevel = v.GetString("logLevel")

	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		Configure(lvl)
	}

	return cfg, nil
}

// Shape builds the Shape this Config describes.
func (c Config) Shape() Shape {
	return NewShape(c.DefaultEllipsoid, c.UseSphere)
}
