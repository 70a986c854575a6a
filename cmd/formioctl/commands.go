package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	formio "github.com/formio/formio.go"
	"github.com/formio/formio.go/pkg/models"
)

type commands struct {
	ctx *formio.Context
	in  io.Reader
	out io.Writer
}

func (c *commands) dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "whoami":
		return c.whoami(ctx)
	case "forms":
		return c.forms(ctx, args)
	case "form":
		return c.form(ctx, args)
	case "submissions":
		return c.submissions(ctx, args)
	case "submission":
		return c.submission(ctx, args)
	case "submit":
		return c.submit(ctx, args)
	case "delete":
		return c.remove(ctx, args)
	case "roles":
		return c.roles(ctx)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
}

func (c *commands) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func needArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("%w: %s", errUsage, usage)
	}
	return nil
}

// formPath accepts a form path, with or without the leading slash, or a
// full URL.
func formPath(p string) string {
	if strings.Contains(p, "://") || strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}

func (c *commands) whoami(ctx context.Context) error {
	user, err := c.ctx.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		_, err := fmt.Fprintln(c.out, "anonymous")
		return err
	}
	return c.print(user)
}

type listFlags struct {
	fs    *flag.FlagSet
	limit int
	skip  int
	typ   string
	where multiFlag
}

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func newListFlags(name string) *listFlags {
	lf := &listFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	lf.fs.IntVar(&lf.limit, "limit", 10, "Page size")
	lf.fs.IntVar(&lf.skip, "skip", 0, "Items to skip")
	lf.fs.StringVar(&lf.typ, "type", "", "Form type filter (form or resource)")
	lf.fs.Var(&lf.where, "where", "Filter as key=value; repeatable")
	return lf
}

func (lf *listFlags) query() (*formio.Query, error) {
	q := formio.NewQuery().WithLimit(lf.limit).WithSkip(lf.skip)
	if lf.typ != "" {
		q.WithType(models.FormType(lf.typ))
	}
	for _, w := range lf.where {
		k, v, ok := strings.Cut(w, "=")
		if !ok {
			return nil, fmt.Errorf("%w: -where wants key=value, got %q", errUsage, w)
		}
		q.Where(k, v)
	}
	return q, q.Validate()
}

func (c *commands) forms(ctx context.Context, args []string) error {
	lf := newListFlags("forms")
	if err := lf.fs.Parse(args); err != nil {
		return err
	}
	q, err := lf.query()
	if err != nil {
		return err
	}
	page, err := formio.New(c.ctx, "").LoadForms(ctx, q)
	if err != nil {
		return err
	}
	for _, f := range page.Items {
		fmt.Fprintf(c.out, "%s\t%s\t%s\n", f.ID, f.Path, f.Title)
	}
	_, err = fmt.Fprintf(c.out, "%d of %d\n", page.Len(), page.ServerCount)
	return err
}

func (c *commands) form(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, "form <path>"); err != nil {
		return err
	}
	form, err := formio.New(c.ctx, formPath(args[0])).LoadForm(ctx, nil)
	if err != nil {
		return err
	}
	return c.print(form)
}

func (c *commands) submissions(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, "submissions <path> [flags]"); err != nil {
		return err
	}
	lf := newListFlags("submissions")
	if err := lf.fs.Parse(args[1:]); err != nil {
		return err
	}
	q, err := lf.query()
	if err != nil {
		return err
	}
	page, err := formio.New(c.ctx, formPath(args[0])).LoadSubmissions(ctx, q)
	if err != nil {
		return err
	}
	if err := c.print(page.Items); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.out, "%d of %d\n", page.Len(), page.ServerCount)
	return err
}

func (c *commands) submission(ctx context.Context, args []string) error {
	if err := needArgs(args, 2, "submission <path> <id>"); err != nil {
		return err
	}
	sub, err := formio.New(c.ctx, formPath(args[0])+"/submission/"+args[1]).LoadSubmission(ctx, nil)
	if err != nil {
		return err
	}
	return c.print(sub)
}

func (c *commands) submit(ctx context.Context, args []string) error {
	if err := needArgs(args, 2, "submit <path> <file|->"); err != nil {
		return err
	}
	var r io.Reader = c.in
	if args[1] != "-" {
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	var sub models.Submission
	if err := json.NewDecoder(r).Decode(&sub); err != nil {
		return fmt.Errorf("decode submission: %w", err)
	}

	saved, verrs, err := formio.New(c.ctx, formPath(args[0])).Submit(ctx, &sub, formio.SubmitHooks{})
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		for _, v := range verrs {
			fmt.Fprintf(c.out, "%s: %s\n", v.Path, v.Message)
		}
		return fmt.Errorf("submission rejected with %d errors", len(verrs))
	}
	return c.print(saved)
}

func (c *commands) remove(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, "delete <path> [id]"); err != nil {
		return err
	}
	if len(args) == 1 {
		return formio.New(c.ctx, formPath(args[0])).DeleteForm(ctx)
	}
	return formio.New(c.ctx, formPath(args[0])+"/submission/"+args[1]).DeleteSubmission(ctx)
}

func (c *commands) roles(ctx context.Context) error {
	roles, err := formio.New(c.ctx, "").LoadRoles(ctx)
	if err != nil {
		return err
	}
	for _, r := range roles {
		fmt.Fprintf(c.out, "%s\t%s\n", r.ID, r.Title)
	}
	return nil
}
