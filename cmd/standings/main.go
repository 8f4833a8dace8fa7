// Command standings prints championship standings from meet snapshot files.
package main

import (
	"os"

	"github.com/okian/swimchamps/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
