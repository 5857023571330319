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
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/klub-pratel/klub/model"
)

// importCommands creates the "import" command: it registers an uploaded
// statement file and enqueues its parsing.
func importCommands(k *klubInstance) *cobra.Command {
	var format string
	var unitID string
	var accountID string

	cmd := &cobra.Command{
		Use:   "import <statement file>",
		Short: "import a bank or donation portal statement",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path, err := filepath.Abs(args[0])
			if err != nil {
				log.Fatal(err)
			}

			stmt, err := k.klub.ImportAccountStatement(context.Background(),
				model.StatementType(format), path, unitID, accountID)
			if err != nil {
				log.Fatal(err)
			}
			fmt.Printf("Statement %s queued for parsing.\n", stmt.StatementID)
		},
	}

	cmd.Flags().StringVar(&format, "format", string(model.StatementAccount), "statement format tag")
	cmd.Flags().StringVar(&unitID, "unit", "", "administrative unit ID")
	cmd.Flags().StringVar(&accountID, "account", "", "money account ID for headerless formats")
	if err := cmd.MarkFlagRequired("unit"); err != nil {
		log.Println(err)
	}

	return cmd
}
