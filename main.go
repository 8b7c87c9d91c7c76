package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/devsnap/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
	defaultFailureExitCode    = 1
)

// main executes the devsnap command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}

	fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)

	var exitCodeError *cli.ExitCodeError
	if errors.As(executionError, &exitCodeError) {
		os.Exit(exitCodeError.Code)
	}
	os.Exit(defaultFailureExitCode)
}
