package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/client"
	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/user"
	appfs "github.com/trezcool/sadaka/fs"
	emailsvc "github.com/trezcool/sadaka/services/email"
	logsvc "github.com/trezcool/sadaka/services/logger"
	"github.com/trezcool/sadaka/storage/database"
	sqlxrepos "github.com/trezcool/sadaka/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	validate, translator := newValidator()
	cli := &commandLine{
		out:        os.Stdout,
		validate:   validate,
		translator: translator,
		api:        client.New(conf.Client.BaseURL, conf.Client.Token, &http.Client{Timeout: 30 * time.Second}),
	}

	// the database is only reached by local commands
	cli.connect = func() (func() error, error) {
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err = database.Ping(ctx, db); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "reaching the database")
		}

		user.LoadCommonPasswords(appfs.FS, appfs.CommonPasswordsGZ, logger)
		cli.db = db.DB
		cli.usrSvc = user.NewService(sqlxrepos.NewUserRepository(db), emailsvc.NewConsoleService(conf, logger), conf)
		return db.Close, nil
	}

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			cli.failure("error: %s", describeErr(err, translator))
		}
		os.Exit(1)
	}
}
