package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/farrow9/user-api/cmd/cli/config"
)

// InitAuth registers the signup, login, and logout commands on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(signupCmd(), loginCmd(), logoutCmd())
}

func signupCmd() *cobra.Command {
	var userID, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" || password == "" {
				return fmt.Errorf("--user and --password are required")
			}
			if err := postJSON("/api/signup", map[string]string{"user_id": userID, "password": password}, nil); err != nil {
				return fmt.Errorf("signup failed: %w", err)
			}
			fmt.Println("Account created. You can now login.")
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user_id to register")
	cmd.Flags().StringVar(&password, "password", "", "password for the new account")
	return cmd
}

func loginCmd() *cobra.Command {
	var userID, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store a token for subsequent commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" || password == "" {
				return fmt.Errorf("--user and --password are required")
			}

			var out struct {
				Token string `json:"token"`
			}
			if err := postJSON("/api/login", map[string]string{"user_id": userID, "password": password}, &out); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if out.Token == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}
			if err := config.SaveToken(out.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Println("Login successful. Token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user_id to authenticate as")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the locally stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ClearToken(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func postJSON(path string, payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := http.Post(config.APIURL()+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	if out != nil {
		return json.Unmarshal(body, out)
	}
	return nil
}
