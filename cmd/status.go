package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report table row counts and purchase volume",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close()

		counts, err := st.Counts(ctx)
		if err != nil {
			return eris.Wrap(err, "read counts")
		}

		p := message.NewPrinter(language.English)
		p.Fprintf(cmd.OutOrStdout(), "staging:   %d rows\n", counts.Staging)
		p.Fprintf(cmd.OutOrStdout(), "customers: %d rows\n", counts.Customers)
		p.Fprintf(cmd.OutOrStdout(), "products:  %d rows\n", counts.Products)
		p.Fprintf(cmd.OutOrStdout(), "purchases: %d rows ($%.2f total)\n", counts.Purchases, counts.PurchaseVolume)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
