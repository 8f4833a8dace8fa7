// Command seed-meet stores a synthetic meet in a running standings service
// and verifies the standings it serves.
package main

import (
	"os"

	"github.com/okian/swimchamps/internal/seedmeet"
)

func main() {
	if err := seedmeet.NewCommand().Execute(); err != nil {
		os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
