package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nightlyone/lockfile"
	"github.com/rs/zerolog"
)

var ErrAlreadyRunning = errors.New("clipwatch is already running")

// Path returns the lock file guarding display. One watcher per display is
// enough; a second one would only print every capture twice.
func Path(display string) string {
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	name := strings.NewReplacer("/", "_", ":", "_").Replace(display)
	return filepath.Join(os.TempDir(), fmt.Sprintf("clipwatch%s.lck", name))
}

// Acquire takes the lock at path and returns the function that releases it.
func Acquire(path string) (func() error, error) {
	lock, err := lockfile.New(path)
	if err != nil {
		return nil, fmt.Errorf("lock file %s: %w", path, err)
	}

	if lockErr := lock.TryLock(); lockErr != nil {
		owner, err := lock.GetOwner()
		if err != nil {
			return nil, fmt.Errorf("cannot get locked process: %w", lockErr)
		}
		return nil, fmt.Errorf("%w: pid %d", ErrAlreadyRunning, owner.Pid)
	}

	return lock.Unlock, nil
}

// Must is Acquire that exits through logger on failure.
func Must(logger zerolog.Logger, display string) func() {
	unlock, err := Acquire(Path(display))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to lock")
	}

	return func() {
		if err := unlock(); err != nil {
			logger.Warn().Err(err).Msg("cannot unlock process")
		}
	}
}
