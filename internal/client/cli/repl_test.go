package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunREPL_Dispatch(t *testing.T) {
	var calls []string
	loggedIn := false

	cmds := []command{
		{name: "login", usage: "log in", run: func(_ context.Context, args []string) error {
			calls = append(calls, "login "+strings.Join(args, " "))
			loggedIn = true
			return nil
		}},
		{name: "tags", usage: "list tags", session: true, run: func(context.Context, []string) error {
			calls = append(calls, "tags")
			return errors.New("boom")
		}},
	}

	input := strings.Join([]string{"help", "tags", "", "login a@b.c", "help", "tags", "foobar", "exit", "tags"}, "\n")
	var out bytes.Buffer

	runREPL(context.Background(), cmds, func() bool { return loggedIn }, func() string { return "(s)" }, bufio.NewReader(strings.NewReader(input)), &out)

	assert.Equal(t, []string{"login a@b.c", "tags"}, calls)

	text := out.String()
	assert.Contains(t, text, "Please log in first")
	assert.Contains(t, text, "error: boom")
	assert.Contains(t, text, "Unknown command: foobar")
	assert.Contains(t, text, "sk (s)> ")
	assert.Contains(t, text, "Bye!")

	// the first help hides session commands, the second shows them
	helps := strings.Split(text, "Available commands:")
	if assert.Len(t, helps, 3) {
		assert.NotContains(t, helps[1], "list tags")
		assert.Contains(t, helps[2], "list tags")
	}
}

func TestRunREPL_StopsOnEOFAndCancel(t *testing.T) {
	called := false
	cmds := []command{{name: "ping", run: func(context.Context, []string) error {
		called = true
		return nil
	}}}
	var out bytes.Buffer

	runREPL(context.Background(), cmds, func() bool { return false }, func() string { return "" }, bufio.NewReader(strings.NewReader("ping")), &out)
	assert.True(t, called, "a last line without newline still runs")

	called = false
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runREPL(ctx, cmds, func() bool { return false }, func() string { return "" }, bufio.NewReader(strings.NewReader("ping\n")), &out)
	assert.False(t, called)
}
