package graph

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutFailure struct{ msg string }

func (e *timeoutFailure) Error() string { return e.msg }
func (e *timeoutFailure) Timeout() bool { return true }

type wrappedFailure struct{ cause error }

func (e *wrappedFailure) Error() string { return "wrapped: " + e.cause.Error() }
func (e *wrappedFailure) Unwrap() error { return e.cause }

type listFailure []string

func (e listFailure) Error() string { return fmt.Sprint([]string(e)) }

type timeout interface {
	error
	Timeout() bool
}

func TestMatchEscalation(t *testing.T) {
	testCases := []struct {
		description string
		escalations []*Escalation
		err         error
		expect      string
	}{
		{
			description: "exact type",
			escalations: []*Escalation{EscalationOf[error]("any"), EscalationOf[*timeoutFailure]("timeout")},
			err:         &timeoutFailure{msg: "x"},
			expect:      "timeout",
		},
		{
			description: "sentinel identity",
			escalations: []*Escalation{EscalationFor(io.EOF, "eof")},
			err:         io.EOF,
			expect:      "eof",
		},
		{
			description: "exact type wins over earlier cause match",
			escalations: []*Escalation{EscalationOf[*timeoutFailure]("cause"), EscalationOf[*wrappedFailure]("wrapper")},
			err:         &wrappedFailure{cause: &timeoutFailure{msg: "x"}},
			expect:      "wrapper",
		},
		{
			description: "cause chain",
			escalations: []*Escalation{EscalationOf[*timeoutFailure]("cause")},
			err:         fmt.Errorf("ctx: %w", &timeoutFailure{msg: "x"}),
			expect:      "cause",
		},
		{
			description: "wrapped sentinel",
			escalations: []*Escalation{EscalationFor(io.EOF, "eof")},
			err:         fmt.Errorf("read: %w", io.EOF),
			expect:      "eof",
		},
		{
			description: "interface after concrete",
			escalations: []*Escalation{EscalationOf[error]("any"), EscalationOf[timeout]("timeout")},
			err:         &timeoutFailure{msg: "x"},
			expect:      "any",
		},
		{
			description: "interface in declaration order",
			escalations: []*Escalation{EscalationOf[timeout]("timeout"), EscalationOf[error]("any")},
			err:         &timeoutFailure{msg: "x"},
			expect:      "timeout",
		},
		{
			description: "joined errors",
			escalations: []*Escalation{EscalationOf[*timeoutFailure]("timeout")},
			err:         errors.Join(io.EOF, &timeoutFailure{msg: "x"}),
			expect:      "timeout",
		},
		{
			description: "no match",
			escalations: []*Escalation{EscalationOf[*timeoutFailure]("timeout")},
			err:         io.EOF,
		},
		{
			description: "uncomparable target",
			escalations: []*Escalation{EscalationFor(listFailure{"a"}, "list"), EscalationOf[error]("any")},
			err:         listFailure{"a"},
			expect:      "any",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual := MatchEscalation(testCase.escalations, testCase.err)
			if testCase.expect == "" {
				assert.Nil(t, actual)
				return
			}
			if assert.NotNil(t, actual) {
				assert.Equal(t, testCase.expect, actual.Function)
			}
		})
	}
}

func TestEscalation_IsCatchAll(t *testing.T) {
	assert.True(t, EscalationOf[error]("x").IsCatchAll())
	assert.False(t, EscalationOf[*timeoutFailure]("x").IsCatchAll())
	assert.False(t, EscalationFor(io.EOF, "x").IsCatchAll())
}
