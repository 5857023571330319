/*
Copyright 2024 Klub Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/klub-pratel/klub"
	"github.com/klub-pratel/klub/config"
	"github.com/klub-pratel/klub/database"
	"github.com/klub-pratel/klub/internal/daktela"
	"github.com/klub-pratel/klub/internal/mailer"
	"github.com/klub-pratel/klub/internal/notification"
)

// Klub represents the CLI application, encapsulating the root Cobra command.
type Klub struct {
	cmd *cobra.Command
}

// klubInstance holds the runtime instance and configuration shared by the
// subcommands.
type klubInstance struct {
	klub *klub.Klub
	cnf  *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun sets up the configuration and initializes the Klub instance before
// running any command.
func preRun(app *klubInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig(*configFile)
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newKlub, err := setupKlub(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.klub = newKlub
		app.cnf = cnf

		return nil
	}
}

// setupKlub creates and initializes a new Klub instance based on the
// provided configuration, wiring the mail relay and the CRM client.
func setupKlub(cfg *config.Configuration) (*klub.Klub, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newKlub, err := klub.NewKlub(db)
	if err != nil {
		return nil, fmt.Errorf("error creating klub: %v", err)
	}

	if cfg.SMTP.Host != "" {
		newKlub.SetMailer(mailer.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password))
	}
	if cfg.Daktela.Url != "" {
		newKlub.SetCRMClient(daktela.New(cfg.Daktela.Url, cfg.Daktela.Token))
	}
	return newKlub, nil
}

// NewCLI creates the command-line interface for the Klub application.
func NewCLI() *Klub {
	var configFile string
	k := &klubInstance{}

	var rootCmd = &cobra.Command{
		Use:   "klub",
		Short: "Supporter club back office",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./klub.json", "Configuration file for the back office")
	rootCmd.PersistentPreRunE = preRun(k, &configFile)

	rootCmd.AddCommand(workerCommands(k))
	rootCmd.AddCommand(migrateCommands(k))
	rootCmd.AddCommand(importCommands(k))

	return &Klub{cmd: rootCmd}
}

// executeCLI runs the root command, handling any errors that occur during
// execution.
func (w Klub) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
