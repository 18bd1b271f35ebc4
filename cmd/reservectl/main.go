// Package main はCLIツールのエントリポイント。
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	apiURL    string
	authToken string
	output    string
	timeout   time.Duration
)

// HTTPクライアント
var httpClient *http.Client

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reservectl",
		Short: "Reservation Service CLI",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if apiURL == "" {
				apiURL = os.Getenv("RESERVECTL_API_URL")
			}
			if authToken == "" {
				authToken = os.Getenv("RESERVECTL_TOKEN")
			}
			httpClient = &http.Client{Timeout: timeout}
		},
	}

	// グローバルフラグ
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API endpoint URL (or set RESERVECTL_API_URL)")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "Bearer token (or set RESERVECTL_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&output, "output", "text", "Output format: text, json")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	// サブコマンド登録
	rootCmd.AddCommand(registerCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(encryptCmd())
	rootCmd.AddCommand(decryptCmd())
	rootCmd.AddCommand(branchesCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newSecretCmd(openKMSEncrypter))
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// versionCmd はバージョン情報を表示する。
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reservectl version %s\n", version)
		},
	}
}

// callAPI はAPIを呼び出し、期待したステータスでなければエラーを返す。
func callAPI(method, path string, payload interface{}, wantStatus int) ([]byte, error) {
	if apiURL == "" {
		return nil, fmt.Errorf("--api-url is required (or set RESERVECTL_API_URL)")
	}

	var reqBody io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, apiURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		return nil, handleErrorResponse(resp.StatusCode, body)
	}
	return body, nil
}

func handleErrorResponse(statusCode int, body []byte) error {
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&errResp); err == nil && errResp.Message != "" {
		return fmt.Errorf("Error: %s", errResp.Message)
	}
	return fmt.Errorf("Error: server returned status %d", statusCode)
}

// areaPath は管理者か顧客かに応じたAPIのパスを返す。
func areaPath(admin bool, suffix string) string {
	if admin {
		return "/admin" + suffix
	}
	return "/area/member" + suffix
}
