package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jengzang/patroliq-backend-go/internal/repository"
	"github.com/jengzang/patroliq-backend-go/internal/service"
)

var importReplace bool

var importCmd = &cobra.Command{
	Use:   "import <crimes.csv>",
	Short: "Import the cleaned crime CSV into the incident table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, db, err := setup(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		svc := service.NewImportService(repository.NewIncidentRepository(db), nil)
		n, err := svc.Import(ctx, f, importReplace)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "imported %d incidents from %s\n", n, args[0])
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "delete existing incidents first")
}
