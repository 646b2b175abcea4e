package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"yatube/internal/apperr"
	"yatube/internal/auth"
	"yatube/internal/models"
)

var (
	// group add flags
	groupTitle       string
	groupSlug        string
	groupDescription string

	// user add flags
	userName     string
	userEmail    string
	userPassword string
)

// groupCmd manages groups, which the API only exposes read-only.
var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage groups",
}

var groupAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a group",
	Long: `Create a group posts can be filed under.

Examples:
  server group add --title "Cats" --slug cats --description "All about cats"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := models.Group{
			Title:       strings.TrimSpace(groupTitle),
			Slug:        strings.TrimSpace(groupSlug),
			Description: groupDescription,
		}
		if g.Title == "" || g.Slug == "" {
			return errors.New("--title and --slug are required")
		}
		st, err := openPostgres(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		err = st.CreateGroup(cmd.Context(), &g)
		if errors.Is(err, apperr.ErrDuplicate) {
			return fmt.Errorf("a group with slug %q already exists", g.Slug)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "group %d (%s) created\n", g.ID, g.Slug)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user",
	Long: `Create a user account.

Examples:
  server user add --username alice --email alice@example.com --password s3cret!`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openPostgres(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		u, err := auth.Register(cmd.Context(), st, userEmail, userName, userPassword)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %d (%s) created\n", u.ID, u.Username)
		return nil
	},
}

func init() {
	groupAddCmd.Flags().StringVar(&groupTitle, "title", "", "Group title")
	groupAddCmd.Flags().StringVar(&groupSlug, "slug", "", "Unique slug")
	groupAddCmd.Flags().StringVar(&groupDescription, "description", "", "Description")
	groupCmd.AddCommand(groupAddCmd)

	userAddCmd.Flags().StringVar(&userName, "username", "", "Username")
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "Email")
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "Password")
	userCmd.AddCommand(userAddCmd)

	rootCmd.AddCommand(groupCmd, userCmd)
}
