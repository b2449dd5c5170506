package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/sadaka/client"
	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/editor"
	"github.com/trezcool/sadaka/core/mailtmpl"
	"github.com/trezcool/sadaka/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")

	successColor = color.New(color.FgGreen)
	failureColor = color.New(color.FgRed, color.Bold)
)

type commandLine struct {
	out        io.Writer
	validate   *validator.Validate
	translator ut.Translator
	api        *client.Client

	// connect opens the database used by local commands & returns its closer.
	connect func() (func() error, error)
	db      *sql.DB
	usrSvc  *user.Service
}

var _ editor.Notifier = (*commandLine)(nil)

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	mailtmpl.InitValidators(validate, translator)
	return validate, translator
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  adduser -username USERNAME -email EMAIL [-name NAME] [-admin] - create a staff user")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME|EMAIL - reset user's password")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, redo, version...)")
	fmt.Fprintln(cli.out, "  login -username USERNAME|EMAIL - get an API token (CLIENT_TOKEN)")
	fmt.Fprintln(cli.out, "  faq list|add|edit|rm [FLAGS] - manage the FAQs")
	fmt.Fprintln(cli.out, "  page show|set -key KEY [FLAGS] - show or edit a page")
	fmt.Fprintln(cli.out, "  upload -file PATH [-folder FOLDER] [-alt ALT] [-page KEY -field FIELD] - upload a media file")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "adduser":
		return cli.local(func() error { return cli.addUserCmd(args[2:]) })
	case "resetpassword":
		return cli.local(func() error { return cli.resetPasswordCmd(args[2:]) })
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.local(func() error { return cli.migrate(args[2:]) })
	case "login":
		return cli.loginCmd(args[2:])
	case "faq":
		return cli.faqCmd(args[2:])
	case "page":
		return cli.pageCmd(args[2:])
	case "upload":
		return cli.uploadCmd(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

// local runs fn once connected to the database.
func (cli *commandLine) local(fn func() error) error {
	if cli.connect != nil {
		closeDB, err := cli.connect()
		if err != nil {
			return err
		}
		defer func() { _ = closeDB() }()
	}
	return fn()
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	return nil
}

func (cli *commandLine) usage(fs *flag.FlagSet) error {
	fs.Usage()
	return errHelp
}

func (cli *commandLine) promptPassword(prompt string) (string, error) {
	fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

// Notify prints editor notices, green on success & red on failure.
func (cli *commandLine) Notify(n editor.Notice) {
	if n.Level == editor.Failure {
		if n.Err != nil {
			cli.failure("%s: %s", n.Message, describeErr(n.Err, cli.translator))
			return
		}
		cli.failure("%s", n.Message)
		return
	}
	cli.success("%s", n.Message)
}

func (cli *commandLine) success(format string, args ...interface{}) {
	_, _ = successColor.Fprintf(cli.out, format+"\n", args...)
}

func (cli *commandLine) failure(format string, args ...interface{}) {
	_, _ = failureColor.Fprintf(cli.out, format+"\n", args...)
}

// describeErr flattens validation errors into "field: message" pairs.
func describeErr(err error, translator ut.Translator) string {
	var msgs []string
	switch cause := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		for _, fe := range cause {
			msgs = append(msgs, fe.Field()+": "+fe.Translate(translator))
		}
	case *core.ValidationError:
		for _, fe := range cause.Fields {
			msgs = append(msgs, fe.Field+": "+fe.Error)
		}
	case *client.APIError:
		if len(cause.Fields) == 0 {
			return cause.Message
		}
		for f, msg := range cause.Fields {
			msgs = append(msgs, f+": "+msg)
		}
	default:
		return err.Error()
	}
	if len(msgs) == 0 {
		return err.Error()
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}
