package main

import (
	"context"

	"github.com/trezcool/sadaka/core/user"
)

func (cli *commandLine) addUserCmd(args []string) error {
	fs := cli.newFlagSet("adduser")
	uname := fs.String("username", "", "The user's username.")
	email := fs.String("email", "", "The user's email.")
	name := fs.String("name", "", "The user's full name (defaults to the username).")
	isAdmin := fs.Bool("admin", false, "Make the user an admin owner instead of an editor.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if *uname == "" || *email == "" {
		return cli.usage(fs)
	}

	pwd, err := cli.promptPassword("Enter password:")
	if err != nil {
		return err
	}
	if pwd == "" {
		return cli.usage(fs)
	}
	if *name == "" {
		*name = *uname
	}

	usr, err := cli.addUser(*name, *uname, *email, pwd, *isAdmin)
	if err != nil {
		return err
	}
	cli.success("user %s created (%v)", usr.Username, usr.Roles)
	return nil
}

// addUser creates an active staff user.User; existing users are left untouched.
func (cli *commandLine) addUser(name, uname, email, pwd string, isAdmin bool) (user.User, error) {
	nu := user.NewUser{
		Name:            name,
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           []string{user.RoleEditor},
	}
	if isAdmin {
		nu.Roles = []string{user.RoleAdminOwner}
	}
	if err := nu.Validate(cli.validate, cli.usrSvc); err != nil {
		return user.User{}, err
	}
	return cli.usrSvc.Create(context.Background(), nu)
}
