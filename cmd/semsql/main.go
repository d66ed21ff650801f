// Command semsql compiles semantic models and renders queries as warehouse SQL.
package main

import (
	"os"

	"github.com/roach88/semsql/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
