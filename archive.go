package arcade

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/splashkit/arcade-packager/internal"
)

const archiveTimeLayout = "20060102-150405"

// ArchiveName is the tarball file name for a run started at started. It
// carries the same timestamp as the run's report.
func ArchiveName(cfg Config, started time.Time) string {
	prefix := cfg.ArchivePrefix
	if prefix == "" {
		prefix = DefaultArchivePrefix
	}
	return fmt.Sprintf("%s-%s.tar.gz", prefix, started.Format(archiveTimeLayout))
}

// Archive packs the whole work dir into a gzipped tarball next to it and
// returns the archive path.
func Archive(ctx context.Context, cfg Config, name string) (string, error) {
	flags := "czf"
	if cfg.Verbose {
		flags = "czvf"
	}
	args := []string{flags, filepath.Join("..", name)}
	for _, p := range cfg.ArchiveExclude {
		args = append(args, "--exclude="+p)
	}
	args = append(args, ".")

	root, err := filepath.Abs(cfg.WorkDir)
	if err != nil {
		return "", &ArchiveError{Path: name, Err: err}
	}
	path := filepath.Join(filepath.Dir(root), name)
	cfg.logger().Info("creating archive", "path", path)
	if err := cfg.runner().Run(ctx, internal.Command{Dir: cfg.WorkDir, Name: "tar", Args: args}); err != nil {
		return "", &ArchiveError{Path: path, Err: err}
	}
	return path, nil
}
