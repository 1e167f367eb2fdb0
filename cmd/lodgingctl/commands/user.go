package commands

import (
	"github.com/spf13/cobra"

	"github.com/hbnb/lodging-core/internal/domain/entities"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(userCreateCmd(), userGetCmd(), userDeleteCmd())
	return cmd
}

func userCreateCmd() *cobra.Command {
	var in entities.UserInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := appCtx.Facade.CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "plaintext password")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	cmd.Flags().BoolVar(&in.IsAdmin, "admin", false, "grant administrator rights")
	return cmd
}

func userGetCmd() *cobra.Command {
	var byEmail bool
	cmd := &cobra.Command{
		Use:   "get [id|email]",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				user *entities.PublicUser
				err  error
			)
			if byEmail {
				user, err = appCtx.Facade.GetUserByEmail(cmd.Context(), args[0])
			} else {
				user, err = appCtx.Facade.GetUser(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
	cmd.Flags().BoolVar(&byEmail, "email", false, "look the user up by email")
	return cmd
}

func userDeleteCmd() *cobra.Command {
	var cascade bool
	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a user",
		Long:  "Delete a user. Without --cascade, users who still own places or authored reviews are refused.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cascade {
				return committed(appCtx.Facade.DeleteUserCascade(cmd.Context(), args[0]))
			}
			return appCtx.Facade.DeleteUser(cmd.Context(), args[0])
		},
	}
	cmd.Flags().BoolVar(&cascade, "cascade", false, "also delete owned places and authored reviews")
	return cmd
}
