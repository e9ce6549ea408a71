package blob

import (
	"context"
	"fmt"
)

// Config selects and configures a driver.
type Config struct {
	Driver string   `mapstructure:"driver" yaml:"driver"`
	Root   string   `mapstructure:"root" yaml:"root"`
	S3     S3Config `mapstructure:"s3" yaml:"s3"`
}

// Open builds the Store named by cfg.Driver. An empty driver means fs.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch Driver(cfg.Driver) {
	case DriverFilesystem, "":
		return NewFSStore(cfg.Root)
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverS3:
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
