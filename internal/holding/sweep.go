package holding

import (
	"os"
	"path/filepath"
	"time"

	logpkg "github.com/rzbill/spillway/pkg/log"
)

// SweepStale reclaims holding areas abandoned by crashed predecessors. A
// candidate is stale when its RUNNING marker exists and was last written
// before now-staleAfter; a live process refreshes the marker far more often.
// Returns the number of areas reclaimed.
//
// In cloud mode the root itself is the single candidate and only its
// contents are removed. Otherwise every subdirectory of the root is a
// candidate and is removed wholesale.
func SweepStale(root string, inCloud bool, staleAfter time.Duration, logger logpkg.Logger) int {
	if inCloud {
		if removeExpired(Area{Root: root, Dir: root, InCloud: true}, staleAfter, logger) {
			return 1
		}
		return 0
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		// Nothing to sweep if the root does not exist yet.
		return 0
	}
	reclaimed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		a := Area{Root: root, Dir: filepath.Join(root, e.Name())}
		if removeExpired(a, staleAfter, logger) {
			reclaimed++
		}
	}
	return reclaimed
}

func removeExpired(a Area, staleAfter time.Duration, logger logpkg.Logger) bool {
	info, err := os.Stat(a.MarkerPath())
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) <= staleAfter {
		return false
	}
	if err := wipe(a); err != nil {
		logger.Warnf("unable to reclaim holding area %s: %v", a.Dir, err)
		return false
	}
	logger.Infof("holding area %s expired", a.Dir)
	return true
}

// wipe removes a stale area. Cloud mode keeps the shared root directory and
// deletes its contents, the marker included.
func wipe(a Area) error {
	if !a.InCloud {
		return os.RemoveAll(a.Dir)
	}
	entries, err := os.ReadDir(a.Dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(a.Dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
