package cmd

import (
	"strings"
	"testing"
)

func TestIsMutatingCommand(t *testing.T) {
	mutating := []string{"encounter add", "encounter ability use", "turn next", "deathsave fail", "bastion facility add", "day advance", "import"}
	for _, name := range mutating {
		if !isMutatingCommand(name) {
			t.Errorf("expected %q to be mutating", name)
		}
	}

	readOnly := []string{"encounter list", "player list", "turn show", "day", "status", "export", "sync pull", "sync push", "auth login", "track", ""}
	for _, name := range readOnly {
		if isMutatingCommand(name) {
			t.Errorf("expected %q to NOT be mutating", name)
		}
	}
}

func TestMutatingCommandsExist(t *testing.T) {
	for key := range mutatingCommands {
		found, rest, err := rootCmd.Find(strings.Fields(key))
		if err != nil {
			t.Errorf("%q: %v", key, err)
			continue
		}
		if len(rest) != 0 || commandKey(found) != key {
			t.Errorf("%q resolves to %q (rest %v)", key, commandKey(found), rest)
		}
	}
}
