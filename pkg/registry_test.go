package harness

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStepDefinitions(t *testing.T) {
	defs := stepDefinitions(&StepSet{})

	samples := []string{
		"I have naemon host objects",
		"I have naemon service objects",
		"I have naemon config event_broker_options set to -1",
		"I have an invalid naemon system configuration",
		"I have an invalid naemon object configuration",
		"I have directory archives",
		"I write config to file",
		"I verify the naemon configuration",
		"config verification fail",
		"config verification pass",
		"I start naemon",
		"naemon should fail to start",
		"naemon should successfully start",
	}

	matched := map[string]bool{}
	for _, phrase := range samples {
		var hits []string
		for _, def := range defs {
			if def.Handler == nil {
				t.Fatalf("step %q has no handler", def.Pattern)
			}
			if regexp.MustCompile(def.Pattern).MatchString(phrase) {
				hits = append(hits, def.Pattern)
			}
		}
		if len(hits) != 1 {
			t.Errorf("phrase %q matches %d step definitions: %v", phrase, len(hits), hits)
			continue
		}
		matched[hits[0]] = true
	}

	for _, def := range defs {
		if !matched[def.Pattern] {
			t.Errorf("no sample phrase exercises step %q", def.Pattern)
		}
	}
}

func TestStepDefinitionCaptures(t *testing.T) {
	testcases := []struct {
		pattern  string
		phrase   string
		expected []string
	}{
		{
			pattern:  `^I have naemon (.+) objects$`,
			phrase:   "I have naemon service objects",
			expected: []string{"service"},
		},
		{
			pattern:  `^I have naemon config (.+) set to (.+)$`,
			phrase:   "I have naemon config event_broker_options set to -1",
			expected: []string{"event_broker_options", "-1"},
		},
		{
			pattern:  `^I have directory (.+)$`,
			phrase:   "I have directory var/archives",
			expected: []string{"var/archives"},
		},
	}

	for i, tc := range testcases {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			m := regexp.MustCompile(tc.pattern).FindStringSubmatch(tc.phrase)
			if m == nil {
				t.Fatalf("phrase %q doesn't match %q", tc.phrase, tc.pattern)
			}
			if diff := cmp.Diff(tc.expected, m[1:]); diff != "" {
				t.Errorf("%v", diff)
			}
		})
	}
}
