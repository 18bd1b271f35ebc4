package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

// registerCmd はユーザー登録コマンド。
func registerCmd() *cobra.Command {
	var admin bool
	var req struct {
		Username  string `json:"username"`
		Password  string `json:"password"`
		Email     string `json:"email"`
		FirstName string `json:"first_name,omitempty"`
		LastName  string `json:"last_name,omitempty"`
	}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a customer or administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := callAPI(http.MethodPost, areaPath(admin, "/register"), req, http.StatusCreated)
			if err != nil {
				return err
			}

			if output == "json" {
				fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return nil
			}
			var result struct {
				Credential struct {
					Username string `json:"username"`
					Role     string `json:"role"`
				} `json:"credential"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %q (role: %s)\n", result.Credential.Username, result.Credential.Role)
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "Register an administrator")
	cmd.Flags().StringVar(&req.Username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (required)")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "Last name")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	cmd.MarkFlagRequired("email")
	return cmd
}

// loginCmd はログインしてトークンを表示するコマンド。
func loginCmd() *cobra.Command {
	var admin bool
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print the issued token",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := callAPI(http.MethodPost, areaPath(admin, "/login"), req, http.StatusOK)
			if err != nil {
				return err
			}

			if output == "json" {
				fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return nil
			}
			var result struct {
				Token string `json:"token"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Token)
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "Log in as an administrator")
	cmd.Flags().StringVar(&req.Username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (required)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

// whoamiCmd はトークンに対応するユーザーを表示するコマンド。
func whoamiCmd() *cobra.Command {
	var admin bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the user bound to the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if authToken == "" {
				return fmt.Errorf("--token is required (or set RESERVECTL_TOKEN)")
			}
			body, err := callAPI(http.MethodGet, areaPath(admin, "/me"), nil, http.StatusOK)
			if err != nil {
				return err
			}

			if output == "json" {
				fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return nil
			}
			var result struct {
				ID       string `json:"id"`
				Username string `json:"username"`
				Role     string `json:"role"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, id: %s)\n", result.Username, result.Role, result.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "Query the administrator area")
	return cmd
}
