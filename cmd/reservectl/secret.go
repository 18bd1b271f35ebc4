package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"reservation-service/internal/infra"
)

// secretEncrypter はsecret wrapが使うKMSクライアント。
type secretEncrypter interface {
	infra.Encrypter
	Close() error
}

// encrypterFactory はKMSキー名からsecretEncrypterを生成する。
type encrypterFactory func(ctx context.Context, keyName string) (secretEncrypter, error)

func openKMSEncrypter(ctx context.Context, keyName string) (secretEncrypter, error) {
	client, err := infra.NewKMSClient(ctx, keyName)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// newSecretCmd はKMSでシークレットを扱うコマンドを生成する。
func newSecretCmd(open encrypterFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage KMS-wrapped secrets",
	}
	cmd.AddCommand(secretWrapCmd(open))
	return cmd
}

// secretWrapCmd はシークレットをKMSで暗号化し、サーバーの環境変数に設定できる形で出力する。
func secretWrapCmd(open encrypterFactory) *cobra.Command {
	var (
		keyName string
		value   string
	)

	cmd := &cobra.Command{
		Use:   "wrap <NAME>",
		Short: "Encrypt a secret with Cloud KMS for use with KMS_KEY_NAME",
		Long: "Encrypt a secret with Cloud KMS and print NAME=<base64 ciphertext>.\n" +
			"NAME is one of " + strings.Join(infra.SecretNames, ", ") + ".\n" +
			"The value is read from --value or, if omitted, from stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.ToUpper(args[0])
			if !infra.IsSecretName(name) {
				return fmt.Errorf("unknown secret %q (expected one of %s)", args[0], strings.Join(infra.SecretNames, ", "))
			}
			if keyName == "" {
				keyName = os.Getenv("KMS_KEY_NAME")
			}
			if keyName == "" {
				return fmt.Errorf("--kms-key is required (or set KMS_KEY_NAME)")
			}

			plaintext := value
			if plaintext == "" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading secret from stdin: %w", err)
				}
				plaintext = strings.TrimRight(string(raw), "\r\n")
			}
			if plaintext == "" {
				return fmt.Errorf("secret value is empty")
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			client, err := open(ctx, keyName)
			if err != nil {
				return fmt.Errorf("failed to init KMS client: %w", err)
			}
			defer client.Close()

			wrapped, err := infra.WrapSecret(ctx, client, []byte(plaintext))
			if err != nil {
				return err
			}

			if output == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"name":       name,
					"ciphertext": wrapped,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", name, wrapped)
			return nil
		},
	}

	cmd.Flags().StringVar(&keyName, "kms-key", "", "KMS key name (or set KMS_KEY_NAME)")
	cmd.Flags().StringVar(&value, "value", "", "Secret value (read from stdin if omitted)")
	return cmd
}
