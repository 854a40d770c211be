package main

import (
	"errors"
	"testing"

	"github.com/oxhq/qmldiff/internal/diag"
)

func TestExitCodeForMapsErrorKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"usage error", newUsageError("missing argument"), exitUsageError},
		{"diagnostic", diag.NoMatch("main.qml", "Rectangle"), exitPatchError},
		{"wrapped diagnostic", errors.New("apply-diffs: " + diag.NoMatch("main.qml", "Rectangle").Error()), exitUsageError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCodeFor(tc.err); got != tc.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestNewUsageErrorIsDistinguishableFromDiagnostic(t *testing.T) {
	err := newUsageError("apply-diffs requires at least %d arguments", 3)
	var ue usageError
	if !errors.As(err, &ue) {
		t.Fatal("expected newUsageError to produce a usageError")
	}
	if err.Error() != "apply-diffs requires at least 3 arguments" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestAbsReturnsMagnitude(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{5, 5},
		{-5, 5},
		{0, 0},
	}
	for _, tc := range cases {
		if got := abs(tc.in); got != tc.want {
			t.Errorf("abs(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestApplyDiffsCommandRegistersFlattenAndClearFlags(t *testing.T) {
	cmd := newApplyDiffsCmd()
	if cmd.Flags().Lookup("flatten") == nil {
		t.Error("expected apply-diffs to register a --flatten flag")
	}
	if cmd.Flags().Lookup("clear") == nil {
		t.Error("expected apply-diffs to register a --clear flag")
	}
	if err := cmd.Args(cmd, []string{"src", "dst"}); err == nil {
		t.Error("expected apply-diffs to reject fewer than 3 positional arguments")
	}
	if err := cmd.Args(cmd, []string{"src", "dst", "patch.diff"}); err != nil {
		t.Errorf("expected apply-diffs to accept 3 positional arguments, got %v", err)
	}
}

func TestHashDiffsCommandRegistersReverseFlag(t *testing.T) {
	cmd := newHashDiffsCmd()
	if cmd.Flags().Lookup("reverse") == nil {
		t.Error("expected hash-diffs to register a --reverse flag")
	}
}

func TestVersionCommandReportsUse(t *testing.T) {
	cmd := newVersionCmd()
	if cmd.Use != "version" {
		t.Errorf("expected Use=\"version\", got %q", cmd.Use)
	}
}
