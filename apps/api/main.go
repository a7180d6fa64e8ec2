package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof" // /debug/pprof
	"os"

	echoapi "github.com/trezcool/escola/apps/api/echo"
	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/directory"
	"github.com/trezcool/escola/core/grade"
	"github.com/trezcool/escola/core/payment"
	"github.com/trezcool/escola/core/registration"
	"github.com/trezcool/escola/core/user"
	directorysvc "github.com/trezcool/escola/services/directory"
	emailsvc "github.com/trezcool/escola/services/email"
	logsvc "github.com/trezcool/escola/services/logger"
	schedulersvc "github.com/trezcool/escola/services/scheduler"
	"github.com/trezcool/escola/storage/database"
	inmemdb "github.com/trezcool/escola/storage/database/inmem"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(logsvc.ComponentAPI, os.Stdout, conf)
	dbLogger := logsvc.NewRollbarLogger(logsvc.ComponentDB, os.Stdout, conf)

	// set up DB
	repos, err := database.Setup(conf, true /* migrate */)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	if err = core.ParseEmailTemplates(conf); err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var dir directory.Directory
	if conf.Directory.BaseURL != "" {
		dir = directorysvc.NewClient(conf)
	} else {
		logger.Info("directory: no base URL configured, using the seeded in-memory directory")
		dir = inmemdb.NewSeededDirectory()
	}

	usrSvc := user.NewService(repos.User)
	regSvc := registration.NewService(repos.DB(), repos.Registration, usrSvc, mailSvc, validate, translator)
	paySvc := payment.NewService(repos.Payment, regSvc, conf)
	gradeSvc := grade.NewService(repos.Grade, regSvc)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("db").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Scheduler

	scheduler, err := schedulersvc.New(conf, logsvc.NewRollbarLogger(logsvc.ComponentScheduler, os.Stdout, conf), paySvc)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up scheduler: %v", err), err)
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:            conf,
			Logger:          logger,
			UserSvc:         usrSvc,
			Directory:       dir,
			Credentials:     registration.NewRandomCredentials(),
			RegistrationSvc: regSvc,
			PaymentSvc:      paySvc,
			GradeSvc:        gradeSvc,
			Validate:        validate,
			Translator:      translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
