package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

// encryptCmd は平文を暗号化するコマンド。管理者トークンが必要。
func encryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt <plaintext>",
		Short: "Encrypt a value with the service key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := callAPI(http.MethodPost, "/crypto/enc", map[string]string{"plaintext": args[0]}, http.StatusOK)
			if err != nil {
				return err
			}
			return printField(cmd, body, "encrypted")
		},
	}
}

// decryptCmd は暗号文を復号するコマンド。管理者トークンが必要。
func decryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt <ciphertext>",
		Short: "Decrypt a value with the service key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := callAPI(http.MethodPost, "/crypto/dec", map[string]string{"encrypted": args[0]}, http.StatusOK)
			if err != nil {
				return err
			}
			return printField(cmd, body, "decrypted")
		},
	}
}

func printField(cmd *cobra.Command, body []byte, field string) error {
	if output == "json" {
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	}
	var result map[string]string
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result[field])
	return nil
}
