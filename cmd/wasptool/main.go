// Command wasptool inspects and converts WebAssembly modules: it dumps a
// binary module's sections as human-readable text, outlines a function's
// control-flow structure, searches function bodies for opcode patterns,
// and converts between the binary and text (.wat) encodings.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(doMain())
}

// doMain is separated out for the purpose of unit testing: a testable
// int-returning entry point instead of calling os.Exit from deep inside a
// command handler.
func doMain() int {
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return exitCode
}

// exitCode lets a subcommand signal failure (diagnostics reported but no Go
// error worth cobra's own "Error: ..." banner) without cobra printing extra
// noise for what is a normal, expected outcome of e.g. `validate`.
var exitCode int
