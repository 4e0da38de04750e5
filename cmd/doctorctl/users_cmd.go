package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"doctor-registry/internal/domain"
	"doctor-registry/internal/users"

	"github.com/spf13/cobra"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User management (admin)",
	}
	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersAddCmd())
	cmd.AddCommand(newUsersDeleteCmd())
	cmd.AddCommand(newUsersResetPasswordCmd())
	return cmd
}

// withUsers 构造 users.Service 并执行 fn
func withUsers(cmd *cobra.Command, fn func(ctx context.Context, svc *users.Service) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, users.NewService(a.api, a.actor, a.logger))
}

func parseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, withCode(exitUsage, fmt.Errorf("invalid user id %q", s))
	}
	return id, nil
}

func newUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users, one JSON object per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, func(ctx context.Context, svc *users.Service) error {
				list, err := svc.List(ctx)
				if err != nil {
					return withCode(usersCode(err), err)
				}
				for i := range list {
					if err := writeJSONLine(cmd.OutOrStdout(), &list[i]); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newUsersAddCmd() *cobra.Command {
	var u domain.NewUser

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user; the password is read from stdin when --password is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			if u.Password == "" {
				pw, err := promptSecret(cmd.ErrOrStderr(), bufio.NewReader(cmd.InOrStdin()), "Password: ")
				if err != nil {
					return withCode(exitIO, err)
				}
				u.Password = pw
			}
			return withUsers(cmd, func(ctx context.Context, svc *users.Service) error {
				created, err := svc.Create(ctx, u)
				if err != nil {
					return withCode(usersCode(err), err)
				}
				return writeJSONLine(cmd.OutOrStdout(), created)
			})
		},
	}

	cmd.Flags().StringVar(&u.Username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&u.Password, "password", "", "Initial password")
	cmd.Flags().StringVar(&u.Role, "role", domain.RoleUser, "Role: user or admin")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newUsersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user (not your own account)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withUsers(cmd, func(ctx context.Context, svc *users.Service) error {
				u, err := svc.Delete(ctx, id)
				if err != nil {
					return withCode(usersCode(err), err)
				}
				return writeJSONLine(cmd.OutOrStdout(), map[string]any{"deleted": u.ID, "username": u.Username})
			})
		},
	}
}

func newUsersResetPasswordCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "reset-password <id>",
		Short: "Set a temporary password for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			if password == "" {
				password, err = promptSecret(cmd.ErrOrStderr(), bufio.NewReader(cmd.InOrStdin()), "Temporary password: ")
				if err != nil {
					return withCode(exitIO, err)
				}
			}
			return withUsers(cmd, func(ctx context.Context, svc *users.Service) error {
				if err := svc.ResetPassword(ctx, id, password); err != nil {
					return withCode(usersCode(err), err)
				}
				return writeJSONLine(cmd.OutOrStdout(), map[string]any{"reset": id})
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Temporary password")
	return cmd
}

func newPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change your own password (read twice from stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, func(ctx context.Context, svc *users.Service) error {
				in := bufio.NewReader(cmd.InOrStdin())
				return runPasswd(ctx, cmd.ErrOrStderr(), in, svc)
			})
		},
	}
}

func runPasswd(ctx context.Context, prompt io.Writer, in *bufio.Reader, svc *users.Service) error {
	pw, err := promptSecret(prompt, in, "New password: ")
	if err != nil {
		return withCode(exitIO, err)
	}
	confirm, err := promptSecret(prompt, in, "Confirm new password: ")
	if err != nil {
		return withCode(exitIO, err)
	}
	if err := svc.ChangeOwnPassword(ctx, pw, confirm); err != nil {
		return withCode(usersCode(err), err)
	}
	fmt.Fprintln(prompt, "Password changed. Log in again with the new password.")
	return nil
}

func promptSecret(prompt io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(prompt, label)
	return readLine(in)
}
