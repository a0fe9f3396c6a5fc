package arcade

import (
	"fmt"

	"github.com/splashkit/arcade-packager/internal"
)

// ManifestError reports a manifest that could not be read or is missing a
// required field.
type ManifestError struct {
	Path  string
	Field string
	Err   error
}

func (e *ManifestError) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("manifest %s: %s: %s", e.Path, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("manifest %s: missing required field %s", e.Path, e.Field)
	default:
		return fmt.Sprintf("manifest %s: %s", e.Path, e.Err)
	}
}

func (e *ManifestError) Unwrap() error { return e.Err }

// FetchError is a failed clone.
type FetchError struct {
	Game string
	Repo string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: clone %s: %s", e.Game, e.Repo, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type UnsupportedLanguageError struct {
	Game     string
	Language Language
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("%s: unknown language %q", e.Game, string(e.Language))
}

// BuildError is a toolchain that exited non-zero, or a build directory that
// could not be prepared.
type BuildError struct {
	Game string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: build: %s", e.Game, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

type ArchiveError struct {
	Path string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive %s: %s", e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// ExitCode maps a run error to the process exit status: the failing
// subprocess's status when there is one, otherwise 1.
func ExitCode(err error) int {
	return internal.ExitCode(err)
}
