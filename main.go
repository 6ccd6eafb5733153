package main

import (
	"flutter-bootstrap/cmd"
)

// main is the program entry point. It delegates to cmd.Execute(), which parses the
// verbosity flag, runs the toolchain installation and exits 0 on success or 1 when
// a required step could not be completed.
func main() {
	cmd.Execute()
}
