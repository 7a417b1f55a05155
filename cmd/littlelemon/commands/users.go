package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashfaq-akash/LittleLemonApi/internal/services/account"
)

var (
	// Users flags
	userName      string
	userEmail     string
	userPassword  string
	userSuperuser bool
	userGroups    []string
)

// usersCmd groups the account administration commands
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
	Long: `Manage user accounts directly in the database.

Subcommands:
  create  - Create a user, optionally a superuser or a group member
  delete  - Delete a user with their cart and orders`,
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Long: `Create a user account.

Examples:
  littlelemon users create --username admin --password secret --superuser
  littlelemon users create --username adrian --password secret --group manager
  littlelemon users create --username luigi --password secret --group "delivery crew"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUsersCreate(cmd)
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a user",
	Long: `Delete a user. Their cart and orders are removed and orders they were
delivering become unassigned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUsersDelete(cmd)
	},
}

func init() {
	usersCmd.PersistentFlags().StringVar(&userName, "username", "", "Username (required)")
	_ = usersCmd.MarkPersistentFlagRequired("username")

	usersCreateCmd.Flags().StringVar(&userEmail, "email", "", "Email address")
	usersCreateCmd.Flags().StringVar(&userPassword, "password", "", "Password (required)")
	usersCreateCmd.Flags().BoolVar(&userSuperuser, "superuser", false, "Grant superuser rights")
	usersCreateCmd.Flags().StringSliceVar(&userGroups, "group", nil, "Group to join: manager or delivery-crew (repeatable)")
	_ = usersCreateCmd.MarkFlagRequired("password")

	usersCmd.AddCommand(usersCreateCmd, usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
}

func accountService(ctx context.Context) (*account.Service, func(), error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	st, closeStore, err := openStore(ctx, cfg, log, false)
	if err != nil {
		return nil, nil, err
	}
	return account.NewService(st, log), closeStore, nil
}

func runUsersCreate(cmd *cobra.Command) error {
	svc, closeStore, err := accountService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	u, err := svc.CreateUser(cmd.Context(), account.UserInput{
		Username:  userName,
		Email:     userEmail,
		Password:  userPassword,
		Superuser: userSuperuser,
		Groups:    userGroups,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d)\n", u.Username, u.ID)
	return nil
}

func runUsersDelete(cmd *cobra.Command) error {
	svc, closeStore, err := accountService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	if err := svc.DeleteUser(cmd.Context(), userName); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", userName)
	return nil
}
