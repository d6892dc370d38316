// Command textflow turns free-form text into flowchart nodes and lays them
// out on a canvas.
//
//	textflow extract "Boil water. Add pasta. Drain."
//	echo "..." | textflow extract --draw --canvas sqlite --dsn ./canvas.db
//	textflow serve --addr :8080
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
