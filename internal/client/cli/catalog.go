package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"
)

func formatTime(ts *timestamppb.Timestamp) string {
	if ts == nil {
		return "-"
	}
	return ts.AsTime().Local().Format(time.DateTime)
}

func (a *App) Organizations(ctx context.Context, _ []string) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	orgs, err := a.client.ListOrganizations(ctx)
	if err != nil {
		return err
	}
	if len(orgs) == 0 {
		fmt.Fprintln(a.out, "No organizations")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED")
	for _, o := range orgs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", o.ID, o.Name, formatTime(o.CreatedAt))
	}
	return w.Flush()
}

func (a *App) CreateOrganization(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	if name == "" {
		return errUsage
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	org, err := a.client.CreateOrganization(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Organization %q created, id %s\n", org.Name, org.ID)
	return nil
}

func (a *App) Tags(ctx context.Context, _ []string) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	tags, err := a.client.ListTags(ctx)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		fmt.Fprintln(a.out, "No tags")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, t := range tags {
		fmt.Fprintf(w, "%s\t%s\n", t.ID, t.Name)
	}
	return w.Flush()
}

func (a *App) CreateTag(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	if name == "" {
		return errUsage
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	tag, err := a.client.CreateTag(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Tag %q created, id %s\n", tag.Name, tag.ID)
	return nil
}

func (a *App) RenameTag(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.UpdateTag(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Tag renamed")
	return nil
}

func (a *App) DeleteTag(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.DeleteTag(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Tag deleted")
	return nil
}
