package main

import (
	"context"
	"fmt"

	"github.com/trezcool/escola/storage/database"
)

var gooseRunFunc = database.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoSQLEngine
	}
	return gooseRunFunc(args[0], cli.db, args[1:]...)
}

func (cli *commandLine) refreshOverdue() error {
	n, err := cli.payments.RefreshOverdue(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("%d payment(s) marked as overdue\n", n)
	return nil
}
