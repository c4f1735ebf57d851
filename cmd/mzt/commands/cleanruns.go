package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/mzt-timers/mzt-go/cmd/mzt-web/api"
)

// RunCleanRuns deletes every run that has ended by now from the mzt-web
// database at dbPath.
func RunCleanRuns(dbPath string, now time.Time, w io.Writer) error {
	store, err := api.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	n, err := store.DeleteEndedRuns(now)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Deleted %d ended run(s)\n", n)
	return nil
}
