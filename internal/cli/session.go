package cli

import (
	"errors"
	"os"

	"github.com/roach88/glimpse/internal/collection"
	"github.com/roach88/glimpse/internal/manifest"
	"github.com/roach88/glimpse/internal/store"
	"github.com/roach88/glimpse/internal/transform"
)

// session is a collection built from one manifest file.
type session struct {
	path     string
	manifest *manifest.Manifest
	coll     *collection.Collection
}

// openSession loads and builds the manifest at path. An unreadable file
// is a command error, an invalid one a failure.
func openSession(opts *RootOptions, path string) (*session, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load manifest", err).withCode(ErrCodeLoad)
	}

	coll := collection.New(collection.WithLogger(opts.Logger()))
	n, err := manifest.Build(coll, m, transform.Default())
	if err != nil {
		return nil, WrapExitError(ExitFailure, "invalid manifest", err).withCode(ErrCodeInvalid)
	}
	opts.Logger().Debug("manifest loaded", "path", path, "sources", n)

	return &session{path: path, manifest: m, coll: coll}, nil
}

// openLog opens the pass log at path. With mustExist a missing file is an
// error instead of a new empty log.
func openLog(path string, mustExist bool) (*store.Store, error) {
	if mustExist {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, NewExitError(ExitCommandError, "database not found: "+path).withCode(ErrCodeStore)
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err).withCode(ErrCodeStore)
	}
	return st, nil
}

// dbPath picks the command's --db flag over the configured default.
func dbPath(flag string, opts *RootOptions) string {
	if flag != "" {
		return flag
	}
	return opts.DB
}
