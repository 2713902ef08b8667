package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-ps"
)

// errAlreadyRunning is returned when another daemon would arm the same reminders twice.
var errAlreadyRunning = errors.New("another reminder server is already running")

// ensureSingleInstance fails when another process runs this executable.
func ensureSingleInstance() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	processList, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	if pid, found := findInstance(processList, os.Getpid(), filepath.Base(executable)); found {
		return fmt.Errorf("%w (pid %d)", errAlreadyRunning, pid)
	}

	return nil
}

// findInstance returns the pid of a process other than self running name.
func findInstance(processList []ps.Process, self int, name string) (int, bool) {
	for _, process := range processList {
		if process.Pid() == self {
			continue
		}

		if process.Executable() == name {
			return process.Pid(), true
		}
	}

	return 0, false
}
