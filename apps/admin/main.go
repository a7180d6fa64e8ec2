package main

import (
	"fmt"
	"os"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/payment"
	"github.com/trezcool/escola/core/registration"
	"github.com/trezcool/escola/core/user"
	emailsvc "github.com/trezcool/escola/services/email"
	logsvc "github.com/trezcool/escola/services/logger"
	"github.com/trezcool/escola/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(logsvc.ComponentAdmin, os.Stdout, conf)

	// set up DB; migrations are run explicitly through the migrate command
	repos, err := database.Setup(conf, false)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	usrSvc := user.NewService(repos.User)
	regSvc := registration.NewService(repos.DB(), repos.Registration, usrSvc, emailsvc.NewConsoleService(conf, logger), validate, translator)

	// start CLI
	cli := commandLine{
		usrRepo:  repos.User,
		payments: payment.NewService(repos.Payment, regSvc, conf),
	}
	if repos.SQL != nil {
		cli.db = repos.SQL.DB
	}

	err = cli.run(os.Args)
	if cErr := repos.Close(); cErr != nil {
		logger.Error(fmt.Sprintf("closing database: %v", cErr), cErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		os.Exit(1)
	}
}
