package cmd

import (
	"fmt"
	"testing"

	harness "github.com/mumoshu/naemon-bdd/pkg"
)

func TestHandleError(t *testing.T) {
	testcases := []struct {
		err      error
		expected int
	}{
		{
			err:      nil,
			expected: 0,
		},
		{
			err:      harness.NewInitError(fmt.Errorf("naemon_exec_path is required")),
			expected: 2,
		},
		{
			err:      harness.NewSuiteError(1),
			expected: 1,
		},
		{
			err:      harness.NewSuiteError(2),
			expected: 2,
		},
		{
			err:      fmt.Errorf("unexpected"),
			expected: 1,
		},
	}

	for i, tc := range testcases {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			msg, status := HandleError(tc.err)
			if status != tc.expected {
				t.Errorf("status %d doesn't match expected %d", status, tc.expected)
			}
			if tc.err == nil && msg != "" {
				t.Errorf("expected no message, got %q", msg)
			}
			if tc.err != nil && msg == "" {
				t.Error("expected a message")
			}
		})
	}
}
