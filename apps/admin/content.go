package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core/content"
)

var errUnknownField = errors.New("unknown page field")

func (cli *commandLine) loginCmd(args []string) error {
	fs := cli.newFlagSet("login")
	uname := fs.String("username", "", "The staff user's username or email. The password will be prompted next.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if *uname == "" {
		return cli.usage(fs)
	}
	pwd, err := cli.promptPassword("Enter password:")
	if err != nil {
		return err
	}
	token, err := cli.api.Login(context.Background(), *uname, pwd)
	if err != nil {
		return err
	}
	cli.success("logged in to %s", cli.api.BaseURL())
	fmt.Fprintln(cli.out, token)
	return nil
}

func (cli *commandLine) faqCmd(args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()
	faqs := cli.api.FAQs()

	switch args[0] {
	case "list":
		fs := cli.newFlagSet("faq list")
		search := fs.String("search", "", "Only list the FAQs matching this text.")
		if err := cli.parse(fs, args[1:]); err != nil {
			return err
		}
		var (
			items []content.FAQ
			err   error
		)
		if *search != "" {
			items, err = faqs.Search(ctx, *search)
		} else {
			items, err = faqs.List(ctx)
		}
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPUBLISHED\tCATEGORY\tQUESTION")
		for _, f := range items {
			fmt.Fprintf(w, "%s\t%t\t%s\t%s\n", f.ID, f.IsPublished, f.Category, f.Question)
		}
		return w.Flush()

	case "add":
		fs := cli.newFlagSet("faq add")
		question := fs.String("question", "", "The question.")
		answer := fs.String("answer", "", "The answer (Markdown).")
		category := fs.String("category", "", "The category.")
		publish := fs.Bool("publish", false, "Publish the FAQ on the site.")
		if err := cli.parse(fs, args[1:]); err != nil {
			return err
		}
		if *question == "" || *answer == "" {
			return cli.usage(fs)
		}
		ed := faqs.Editor(cli)
		f := content.FAQ{Question: *question, Answer: *answer, Category: *category}
		f.IsPublished = *publish
		created, err := ed.Create(ctx, f)
		if err != nil {
			return err
		}
		fmt.Fprintln(cli.out, created.ID)
		return nil

	case "edit":
		fs := cli.newFlagSet("faq edit")
		id := fs.String("id", "", "The FAQ's ID.")
		question := fs.String("question", "", "The new question.")
		answer := fs.String("answer", "", "The new answer (Markdown).")
		category := fs.String("category", "", "The new category.")
		publish := fs.Bool("publish", false, "Publish (or unpublish with -publish=false) the FAQ.")
		if err := cli.parse(fs, args[1:]); err != nil {
			return err
		}
		if *id == "" || fs.NFlag() < 2 {
			return cli.usage(fs)
		}
		ed := faqs.Editor(cli)
		if err := ed.Load(ctx); err != nil {
			return err
		}
		f, ok := ed.Get(*id)
		if !ok {
			return content.ErrFAQNotFound
		}
		// only the flags actually given are applied
		fs.Visit(func(fl *flag.Flag) {
			switch fl.Name {
			case "question":
				f.Question = *question
			case "answer":
				f.Answer = *answer
			case "category":
				f.Category = *category
			case "publish":
				f.IsPublished = *publish
			}
		})
		_, err := ed.Update(ctx, f)
		return err

	case "rm":
		fs := cli.newFlagSet("faq rm")
		id := fs.String("id", "", "The FAQ's ID.")
		if err := cli.parse(fs, args[1:]); err != nil {
			return err
		}
		if *id == "" {
			return cli.usage(fs)
		}
		ed := faqs.Editor(cli)
		if err := ed.Load(ctx); err != nil {
			return err
		}
		if _, ok := ed.Get(*id); !ok {
			return content.ErrFAQNotFound
		}
		return ed.Delete(ctx, *id)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) pageCmd(args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[0] {
	case "show":
		fs := cli.newFlagSet("page show")
		key := fs.String("key", "", "The page key (about, payout or hero).")
		if err := cli.parse(fs, args[1:]); err != nil {
			return err
		}
		if *key == "" {
			return cli.usage(fs)
		}
		page, err := cli.api.GetPage(ctx, *key)
		if err != nil {
			return err
		}
		return cli.showPage(page)

	case "set":
		fs := cli.newFlagSet("page set")
		key := fs.String("key", "", "The page key (about, payout or hero).")
		field := fs.String("field", "", "The field to set (title, subtitle, body, image_url, video_url, cta_text or cta_link).")
		value := fs.String("value", "", "The new value; empty clears the field.")
		if err := cli.parse(fs, args[1:]); err != nil {
			return err
		}
		if *key == "" || *field == "" {
			return cli.usage(fs)
		}
		var patch content.PagePatch
		if err := setPageField(&patch, *field, *value); err != nil {
			return err
		}
		if _, err := cli.api.PatchPage(ctx, *key, patch); err != nil {
			return err
		}
		cli.success("page %s updated", *key)
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) showPage(page content.Page) error {
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("notty"), glamour.WithWordWrap(80))
	if err != nil {
		return errors.Wrap(err, "creating renderer")
	}
	md := fmt.Sprintf("# %s\n\n", page.Title)
	if page.Subtitle != "" {
		md += fmt.Sprintf("_%s_\n\n", page.Subtitle)
	}
	md += page.Body + "\n"
	out, err := r.Render(md)
	if err != nil {
		return errors.Wrap(err, "rendering page")
	}
	fmt.Fprint(cli.out, out)

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	for _, f := range pageFields {
		if f == "title" || f == "subtitle" || f == "body" {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", f, pageField(page, f))
	}
	if !page.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "updated\t%s by %s\n", page.UpdatedAt.Format("2006-01-02 15:04"), page.UpdatedBy)
	}
	return w.Flush()
}

var pageFields = []string{"title", "subtitle", "body", "image_url", "video_url", "cta_text", "cta_link"}

func pageField(page content.Page, field string) string {
	switch field {
	case "title":
		return page.Title
	case "subtitle":
		return page.Subtitle
	case "body":
		return page.Body
	case "image_url":
		return page.ImageURL
	case "video_url":
		return page.VideoURL
	case "cta_text":
		return page.CTAText
	case "cta_link":
		return page.CTALink
	}
	return ""
}

func setPageField(patch *content.PagePatch, field, value string) error {
	switch field {
	case "title":
		patch.Title = &value
	case "subtitle":
		patch.Subtitle = &value
	case "body":
		patch.Body = &value
	case "image_url":
		patch.ImageURL = &value
	case "video_url":
		patch.VideoURL = &value
	case "cta_text":
		patch.CTAText = &value
	case "cta_link":
		patch.CTALink = &value
	default:
		return errors.Wrap(errUnknownField, field)
	}
	return nil
}
