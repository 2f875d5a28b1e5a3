package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/farrow9/user-api/cmd/cli/config"
	"github.com/farrow9/user-api/cmd/cli/output"
)

// InitUsers registers the users command group on the root command.
func InitUsers(rootCmd *cobra.Command) {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user records (requires login)",
	}

	usersCmd.AddCommand(
		listUsersCmd(),
		getUserCmd(),
		createUserCmd(),
		updateUserCmd(),
		deleteUserCmd(),
	)

	rootCmd.AddCommand(usersCmd)
}

// ==========================
// LIST
// ==========================
func listUsersCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all user records",
		Run: func(cmd *cobra.Command, args []string) {
			var records []map[string]any
			if err := call("GET", "/api/users", nil, &records); err != nil {
				fmt.Println(err)
				return
			}

			if asJSON {
				b, _ := json.MarshalIndent(records, "", "  ")
				fmt.Println(string(b))
				return
			}

			rows := make([][]interface{}, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []interface{}{
					str(rec["_id"]), str(rec["user_id"]), str(rec["createdAt"]), str(rec["updatedAt"]),
				})
			}
			output.RenderTable([]string{"ID", "USER_ID", "CREATED", "UPDATED"}, rows)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON instead of a table")
	return cmd
}

// ==========================
// GET
// ==========================
func getUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one user record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var record map[string]any
			if err := call("GET", "/api/users/"+args[0], nil, &record); err != nil {
				return err
			}
			b, _ := json.MarshalIndent(record, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}
}

// ==========================
// CREATE
// ==========================
func createUserCmd() *cobra.Command {
	var fields string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user record from a JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload map[string]any
			if err := json.Unmarshal([]byte(fields), &payload); err != nil {
				return fmt.Errorf("--data must be a JSON object: %w", err)
			}
			var record map[string]any
			if err := call("POST", "/api/users", payload, &record); err != nil {
				return err
			}
			b, _ := json.MarshalIndent(record, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}

	cmd.Flags().StringVar(&fields, "data", "{}", "record fields as a JSON object")
	return cmd
}

// ==========================
// UPDATE
// ==========================
func updateUserCmd() *cobra.Command {
	var fields string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Merge fields into a user record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload map[string]any
			if err := json.Unmarshal([]byte(fields), &payload); err != nil {
				return fmt.Errorf("--data must be a JSON object: %w", err)
			}
			var record map[string]any
			if err := call("PUT", "/api/users/"+args[0], payload, &record); err != nil {
				return err
			}
			b, _ := json.MarshalIndent(record, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}

	cmd.Flags().StringVar(&fields, "data", "{}", "fields to merge as a JSON object")
	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := call("DELETE", "/api/users/"+args[0], nil, nil); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
}

// call performs an authenticated request against the API.
func call(method, path string, payload any, out any) error {
	token, err := config.LoadToken()
	if err != nil {
		return fmt.Errorf("please login first")
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, config.APIURL()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(data))
	}
	if out != nil && len(data) > 0 {
		return json.Unmarshal(data, out)
	}
	return nil
}

func str(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
