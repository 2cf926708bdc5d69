package cli

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/dmitrijs2005/policysignoff/internal/client/api"
)

func statusLabel(p api.PolicyItem) string {
	switch {
	case p.Signed:
		return "signed"
	case p.Overdue:
		return "OVERDUE"
	default:
		return "pending"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a *App) list(ctx context.Context, _ []string) error {
	policies, err := a.client.ListPolicies(ctx)
	if err != nil {
		return describe(err)
	}
	if len(policies) == 0 {
		fmt.Fprintln(a.out, "No policies.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDUE\tCREATED BY\tFILE\tSTATUS")
	for _, p := range policies {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.DueDate, p.CreatedBy, yesNo(p.HasFile), statusLabel(p))
	}
	return tw.Flush()
}

func (a *App) printDetail(d *api.PolicyDetail) error {
	fmt.Fprintf(a.out, "#%d %s\n", d.ID, d.Title)
	fmt.Fprintf(a.out, "Due:        %s\n", d.DueDate)
	fmt.Fprintf(a.out, "Created by: %s\n", d.CreatedBy)
	fmt.Fprintf(a.out, "Status:     %s\n", statusLabel(d.PolicyItem))
	if d.FileName != nil {
		fmt.Fprintf(a.out, "Document:   %s (%s)\n", *d.FileName, d.FileStatus)
	}
	if d.Description != "" {
		fmt.Fprintf(a.out, "\n%s\n", d.Description)
	}

	s := d.SignoffSummary
	fmt.Fprintf(a.out, "\nSigned: %d of %d\n", s.SignedCount, s.TotalUsers)

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tSIGNED AT\tOVERDUE")
	for _, row := range s.Signoffs {
		signedAt := "-"
		if row.SignedAt != nil {
			signedAt = *row.SignedAt
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.User, signedAt, yesNo(row.Overdue))
	}
	return tw.Flush()
}

func (a *App) show(ctx context.Context, args []string) error {
	id, err := parseID(args, 0)
	if err != nil {
		return err
	}

	d, err := a.client.GetPolicy(ctx, id)
	if err != nil {
		return describe(err)
	}
	return a.printDetail(d)
}

func (a *App) create(ctx context.Context, args []string) error {
	fs := newFlagSet("create")
	var in api.CreatePolicyRequest
	fs.StringVar(&in.Title, "title", "", "policy title")
	fs.StringVar(&in.Description, "description", "", "policy description")
	fs.StringVar(&in.DueDate, "due", "", "due date, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.promptIfEmpty(&in.Title, "Title"); err != nil {
		return err
	}
	if in.Description == "" {
		d, err := readParagraph(a.reader, a.out, "Description")
		if err != nil {
			return err
		}
		in.Description = d
	}
	if err := a.promptIfEmpty(&in.DueDate, "Due date (YYYY-MM-DD)"); err != nil {
		return err
	}

	p, err := a.client.CreatePolicy(ctx, in)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(a.out, "Created policy #%d %q, due %s.\n", p.ID, p.Title, p.DueDate)
	return nil
}

// sign signs off a policy and re-reads it, so a duplicate attempt still
// ends with the current state on screen.
func (a *App) sign(ctx context.Context, args []string) error {
	id, err := parseID(args, 0)
	if err != nil {
		return err
	}

	res, err := a.client.SignOff(ctx, id)
	if err != nil {
		return describe(err)
	}

	if res.AlreadySigned {
		fmt.Fprintln(a.out, "You have already signed this policy.")
	} else {
		fmt.Fprintf(a.out, "%s at %s.\n", res.Message, res.SignedAt)
	}

	d, err := a.client.GetPolicy(ctx, id)
	if err != nil {
		return describe(err)
	}
	return a.printDetail(d)
}
