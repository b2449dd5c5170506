package main

import "context"

func (cli *commandLine) resetPasswordCmd(args []string) error {
	fs := cli.newFlagSet("resetpassword")
	uname := fs.String("username", "", "The user's username or email. The password will be prompted next.")
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
	if pwd == "" {
		return cli.usage(fs)
	}
	if err = cli.resetPassword(*uname, pwd); err != nil {
		return err
	}
	cli.success("password updated")
	return nil
}

func (cli *commandLine) resetPassword(uname, pwd string) error {
	return cli.usrSvc.ResetPasswordDirect(context.Background(), uname, pwd)
}
