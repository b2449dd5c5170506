package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/client"
	"github.com/trezcool/sadaka/core/content"
)

// urlFields hold a bare URL; the other page fields are text in which the upload placeholder is substituted.
var urlFields = map[string]bool{"image_url": true, "video_url": true, "cta_link": true}

func (cli *commandLine) uploadCmd(args []string) error {
	fs := cli.newFlagSet("upload")
	path := fs.String("file", "", "The image or video to upload.")
	folder := fs.String("folder", "", "The CDN folder (under the configured root folder).")
	alt := fs.String("alt", "", "The image's alternative text.")
	placeholder := fs.String("placeholder", "", "The text to replace with the file URL (defaults to [[upload:<file name>]]).")
	key := fs.String("page", "", "The page to update with the file URL.")
	field := fs.String("field", "", "The page field to update (required with -page).")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if *path == "" || (*key == "") != (*field == "") {
		return cli.usage(fs)
	}

	file, err := os.Open(*path)
	if err != nil {
		return errors.Wrap(err, "opening file")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer file.Close()

	in := client.UploadInput{
		Filename:    filepath.Base(*path),
		Content:     file,
		Folder:      *folder,
		Alt:         *alt,
		Placeholder: *placeholder,
	}
	ctx := context.Background()
	if *key == "" {
		res, err := cli.api.Upload(ctx, in)
		if err != nil {
			return err
		}
		cli.success("uploaded %s", in.Filename)
		fmt.Fprintln(cli.out, res.Asset.URL)
		fmt.Fprintln(cli.out, res.Snippet)
		return nil
	}
	return cli.uploadToPage(ctx, in, *key, *field)
}

// uploadToPage uploads in then sets its URL in the page field.
func (cli *commandLine) uploadToPage(ctx context.Context, in client.UploadInput, key, field string) error {
	var patch content.PagePatch
	if err := setPageField(&patch, field, ""); err != nil {
		return err
	}
	page, err := cli.api.GetPage(ctx, key)
	if err != nil {
		return err
	}
	if !urlFields[field] {
		text := pageField(page, field)
		in.Text = &text
	}

	res, err := cli.api.Upload(ctx, in)
	if err != nil {
		return err
	}
	value := res.Asset.URL
	if res.Text != nil {
		value = *res.Text
	}
	if err = setPageField(&patch, field, value); err != nil {
		return err
	}
	if _, err = cli.api.PatchPage(ctx, key, patch); err != nil {
		return err
	}

	if in.Text != nil && !res.Replaced {
		cli.success("uploaded %s & appended it to %s.%s", in.Filename, key, field)
	} else {
		cli.success("uploaded %s into %s.%s", in.Filename, key, field)
	}
	fmt.Fprintln(cli.out, res.Asset.URL)
	return nil
}
