package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Freeeeeet/skillmatch/internal/app"
	"github.com/Freeeeeet/skillmatch/internal/model"
	"github.com/spf13/cobra"
)

// NewUserCommand создаёт команду user с подкомандами delete и role.
// Обе проходят через охрану последнего администратора.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App) error {
				if err := a.Engine.DeleteUser(ctx, userID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user %d deleted\n", userID)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "role <user-id> <admin|tutor|learner>",
		Short: "Change the role of a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			role, ok := model.ParseRole(args[1])
			if !ok {
				return fmt.Errorf("invalid role %q: must be admin, tutor or learner", args[1])
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App) error {
				user, err := a.Engine.ChangeRole(ctx, userID, role)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user %d is now %s\n", user.ID, user.Role)
				return nil
			})
		},
	})

	return cmd
}

func parseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}
