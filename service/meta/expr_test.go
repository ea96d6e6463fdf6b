package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnvExpr(t *testing.T) {
	testCases := []struct {
		description string
		env         map[string]string
		input       string
		expect      string
	}{
		{description: "no expressions", input: "workers: 4", expect: "workers: 4"},
		{description: "single expression", env: map[string]string{"FLOOR_TEAM": "io"}, input: "team: ${env.FLOOR_TEAM}", expect: "team: io"},
		{description: "repeated expressions", env: map[string]string{"FLOOR_A": "1", "FLOOR_B": "2"}, input: "${env.FLOOR_A}-${env.FLOOR_B}-${env.FLOOR_A}", expect: "1-2-1"},
		{description: "unset variable", input: "unset=${env.FLOOR_UNSET}-end", expect: "unset=-end"},
		{description: "fallback used", input: "timeout: ${env.FLOOR_UNSET:-10s}", expect: "timeout: 10s"},
		{description: "fallback ignored", env: map[string]string{"FLOOR_TIMEOUT": "2s"}, input: "timeout: ${env.FLOOR_TIMEOUT:-10s}", expect: "timeout: 2s"},
		{description: "missing closing brace", env: map[string]string{"FLOOR_X": "x"}, input: "start ${env.FLOOR_X", expect: "start ${env.FLOOR_X"},
		{description: "malformed name", input: "start ${env.FLOOR X and ${env.FLOOR_UNSET} end", expect: "start ${env.FLOOR X and  end"},
		{description: "leading digit", input: "${env.1FLOOR}", expect: "${env.1FLOOR}"},
		{description: "empty name", input: "oops ${env.} done", expect: "oops  done"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			for key, value := range testCase.env {
				t.Setenv(key, value)
			}
			assert.Equal(t, testCase.expect, expandEnvExpr(testCase.input))
		})
	}
}
