package main

import (
	"errors"
	"os"

	"duet-cli/internal/cli"
	"duet-cli/internal/exitcode"
	"duet-cli/internal/mutate"
	"duet-cli/internal/remote"
	"duet-cli/internal/session"
)

func main() {
	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps the error taxonomy onto scripting exit codes: bad input,
// missing session, or a remote failure. Anything else is a generic failure.
func exitCode(err error) int {
	var (
		emptyField mutate.EmptyFieldError
		badStatus  mutate.InvalidStatusError
		badDate    mutate.BadDateError
		writeErr   *remote.WriteError
		readErr    *remote.ReadError
	)
	switch {
	case errors.As(err, &emptyField), errors.As(err, &badStatus), errors.As(err, &badDate):
		return exitcode.Usage
	case errors.Is(err, session.ErrAuthRequired), errors.Is(err, remote.ErrNoSession):
		return exitcode.Auth
	case errors.As(err, &writeErr), errors.As(err, &readErr):
		return exitcode.Remote
	}
	return 1
}
