package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/flarebyte/jsforge/cmd/jsforge/root"
)

type exitCoder interface {
	ExitCode() int
}

func main() {
	// .env may set JSFORGE_CONFIG; running without one is normal.
	_ = godotenv.Load()
	err := root.Execute(os.Args[1:])
	if err == nil {
		return
	}
	_, _ = fmt.Fprintln(os.Stderr, oneLine(err))
	os.Exit(exitCode(err))
}

// oneLine collapses an error into a single stderr line.
func oneLine(err error) string {
	msg := strings.Join(strings.Fields(err.Error()), " ")
	if msg == "" {
		return "error"
	}
	return msg
}

// exitCode is 1 unless the error chain carries a non-zero ExitCode.
func exitCode(err error) int {
	var ec exitCoder
	if errors.As(err, &ec) {
		if c := ec.ExitCode(); c != 0 {
			return c
		}
	}
	return 1
}
