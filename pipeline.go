package arcade

import (
	"context"
	"errors"
	"fmt"
)

// RunResult is what a pipeline run produced.
type RunResult struct {
	Builds  []BuildResult
	Scripts []string
	Catalog string
	Report  string
	Archive string
}

// Failed lists the games whose build did not succeed.
func (r *RunResult) Failed() []string {
	var out []string
	for _, b := range r.Builds {
		if !b.OK() {
			out = append(out, b.Game)
		}
	}
	return out
}

// Run loads every manifest in cfg.ManifestDir and runs the pipeline over
// them.
func Run(ctx context.Context, cfg Config) (*RunResult, error) {
	cfg, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	manifests, err := LoadManifests(cfg.ManifestDir, cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	return RunManifests(ctx, cfg, manifests)
}

// RunManifests builds every game, then writes all launch scripts, then the
// catalog and report, then the archive. Each phase finishes for every game
// before the next starts.
func RunManifests(ctx context.Context, cfg Config, manifests []*GameManifest) (*RunResult, error) {
	cfg, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	log := cfg.logger()
	started := cfg.now()
	out := &RunResult{}
	report := NewReport(started)
	builder := NewBuilder(cfg)

	var failures []error
	built := make([]*GameManifest, 0, len(manifests))
	for _, m := range manifests {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if cfg.Clean {
			if err := builder.Clean(m); err != nil {
				return out, &BuildError{Game: m.Name, Err: err}
			}
		}
		res, err := builder.Build(ctx, m)
		out.Builds = append(out.Builds, res)
		report.AddResult(res)
		if err != nil {
			if !cfg.KeepGoing {
				return out, err
			}
			log.Error("game failed, continuing", "game", m.Name, "err", err)
			failures = append(failures, err)
			continue
		}
		built = append(built, m)
	}

	for _, m := range built {
		path, err := WriteLaunchScript(cfg, m)
		if err != nil {
			return out, fmt.Errorf("%s: launch script: %w", m.Name, err)
		}
		out.Scripts = append(out.Scripts, path)
	}

	catalog := NewCatalog()
	for _, m := range built {
		catalog.Append(cfg, m)
	}
	out.Catalog = cfg.CatalogPath()
	if err := catalog.WriteFile(out.Catalog); err != nil {
		return out, fmt.Errorf("write catalog: %w", err)
	}
	log.Info("wrote catalog", "path", out.Catalog, "games", catalog.Len())

	var archiveName string
	if !cfg.SkipArchive {
		archiveName = ArchiveName(cfg, started)
		report.SetArchive(archiveName)
	}
	report.Finish(cfg.now())
	out.Report = cfg.ReportPath()
	if err := report.WriteFile(out.Report); err != nil {
		return out, err
	}

	if !cfg.SkipArchive {
		path, err := Archive(ctx, cfg, archiveName)
		if err != nil {
			return out, err
		}
		out.Archive = path
	}

	if len(failures) > 0 {
		return out, errors.Join(failures...)
	}
	return out, nil
}
