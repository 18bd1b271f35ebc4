package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// branchesCmd は店舗一覧の取得コマンド。管理者トークンが必要。
func branchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "branches",
		Short: "List all branches",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := callAPI(http.MethodGet, "/feature/branch/all", nil, http.StatusOK)
			if err != nil {
				return err
			}

			if output == "json" {
				fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return nil
			}
			var result struct {
				Branches []struct {
					ID      string `json:"id"`
					Name    string `json:"name"`
					Address string `json:"address"`
				} `json:"branches"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tADDRESS")
			for _, b := range result.Branches {
				fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, b.Name, b.Address)
			}
			return w.Flush()
		},
	}
}
