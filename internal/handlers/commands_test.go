package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input   string
		want    command
		wantErr bool
	}{
		{input: "g", want: command{name: "g"}},
		{input: "r", want: command{name: "r"}},
		{input: "a 7", want: command{name: "a", number: 7}},
		{input: "  a   12 ", want: command{name: "a", number: 12}},
		{input: "", wantErr: true},
		{input: "x", wantErr: true},
		{input: "a", wantErr: true},
		{input: "a 1 2", wantErr: true},
		{input: "a seven", wantErr: true},
		{input: "g 1", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := parseCommand(test.input)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestParseCommands(t *testing.T) {
	commands, err := parseCommands("a 1\n\ng\r\na 2\n")
	require.NoError(t, err)
	assert.Equal(t, []command{
		{name: "a", number: 1},
		{name: "g"},
		{name: "a", number: 2},
	}, commands)

	_, err = parseCommands("a 1\nboom")
	assert.Error(t, err)
}
