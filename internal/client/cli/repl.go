package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// command is one REPL verb. Commands with session set are hidden from help
// and refused until the user is logged in.
type command struct {
	name    string
	usage   string
	session bool
	run     func(ctx context.Context, args []string) error
}

// runREPL reads a line from reader, parses the first token as the command
// and dispatches it. Errors returned by commands are printed and the loop
// goes on. It exits on EOF or when the user types "exit" or "quit".
func runREPL(ctx context.Context, cmds []command, loggedIn func() bool, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	byName := make(map[string]command, len(cmds))
	for _, c := range cmds {
		byName[c.name] = c
	}

	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(out, "sk %s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(out)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			printHelp(out, cmds, loggedIn())
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		}

		c, ok := byName[name]
		if !ok {
			fmt.Fprintln(out, "Unknown command:", name)
			continue
		}
		if c.session && !loggedIn() {
			fmt.Fprintln(out, "Please log in first")
			continue
		}
		if err := c.run(ctx, args); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
}

func printHelp(out io.Writer, cmds []command, loggedIn bool) {
	fmt.Fprintln(out, "Available commands:")
	for _, c := range cmds {
		if c.session && !loggedIn {
			continue
		}
		fmt.Fprintf(out, "  %-14s %s\n", c.name, c.usage)
	}
	fmt.Fprintf(out, "  %-14s %s\n", "exit", "leave the program")
}

// commands lists the verbs of the App in help order.
func (a *App) commands() []command {
	return []command{
		{name: "ping", usage: "check that the server answers", run: a.Ping},
		{name: "admin-login", usage: "[username]  log in as super-admin", run: a.AdminLogin},
		{name: "login", usage: "[email]  log in as a user or organization owner", run: a.Login},
		{name: "register", usage: "<organization-id>  create a user account", run: a.Register},
		{name: "register-org", usage: "<organization-id>  create an organization owner account", run: a.RegisterOrganization},
		{name: "refresh", usage: "rotate the session tokens", session: true, run: a.Refresh},
		{name: "logout", usage: "forget the session", session: true, run: a.Logout},
		{name: "orgs", usage: "list organizations (super-admin)", session: true, run: a.Organizations},
		{name: "create-org", usage: "<name>  create an organization (super-admin)", session: true, run: a.CreateOrganization},
		{name: "tags", usage: "list tags of your organization", session: true, run: a.Tags},
		{name: "create-tag", usage: "<name>  create a tag", session: true, run: a.CreateTag},
		{name: "rename-tag", usage: "<tag-id> <name>  rename a tag", session: true, run: a.RenameTag},
		{name: "delete-tag", usage: "<tag-id>  delete a tag", session: true, run: a.DeleteTag},
		{name: "items", usage: "[-tag id] [-q text] [-sort newest|oldest|a-z|z-a] [-own] [-page n] [-limit n]", session: true, run: a.Items},
		{name: "item", usage: "<item-id>  show one item", session: true, run: a.ShowItem},
		{name: "add-item", usage: "create an item", session: true, run: a.AddItem},
		{name: "edit-item", usage: "<item-id> [-name s] [-desc s] [-value n] [-tags a,b]", session: true, run: a.EditItem},
		{name: "delete-item", usage: "<item-id>  delete an item", session: true, run: a.DeleteItem},
		{name: "add-photo", usage: "<item-id> <file>  upload a photo", session: true, run: a.AddPhoto},
		{name: "delete-photo", usage: "<item-id> <photo-id>  delete a photo", session: true, run: a.DeletePhoto},
	}
}
