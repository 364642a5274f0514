package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"stitchcore/pkg/domain"
)

// output is swapped in tests.
var output io.Writer = os.Stdout

// parseID parses a positive int64 command argument.
func parseID(arg, label string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", label, arg)
	}
	return id, nil
}

// emit prints v as indented JSON when --json is set, otherwise falls back to
// the provided human line.
func emit(v any, human string) error {
	if flagJSON {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(output, string(b))
		return nil
	}
	fmt.Fprintln(output, human)
	return nil
}

// emitList prints each item through line unless --json is set.
func emitList[T any](items []T, line func(T) string) error {
	if flagJSON {
		b, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(output, string(b))
		return nil
	}
	for _, item := range items {
		fmt.Fprintln(output, line(item))
	}
	return nil
}

// warnOnViolations surfaces non-blocking rule violations on stderr.
func warnOnViolations(res domain.Result) {
	for _, v := range res.Violations {
		if v.Severity != domain.SeverityBlock {
			fmt.Fprintf(os.Stderr, "warning: %s: %s\n", v.Rule, v.Message)
		}
	}
}
