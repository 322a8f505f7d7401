// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/scaffold/internal/dao"
	"golang.org/x/term"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage application users",
	}
	cmd.AddCommand(newUserAddCmd(), newUserListCmd(), newUserDeleteCmd(),
		newUserStatusCmd("enable", dao.StatusActive), newUserStatusCmd("disable", dao.StatusDisabled))
	return cmd
}

// readPassword prompts on a terminal without echo; otherwise it reads one
// line from the command's input.
func readPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newUserAddCmd() *cobra.Command {
	var u dao.SysUser
	var password string
	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user",
		Long: `Creates a user. Without --password the password is prompted for on a
terminal, or read from the first line of stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u.Username = args[0]
			u.Password = password
			if u.Password == "" {
				pw, err := readPassword(cmd)
				if err != nil {
					return err
				}
				u.Password = pw
			}
			users, err := dao.NewSysUserDao(cmd.Context())
			if err != nil {
				return err
			}
			created, err := users.Create(u)
			if err != nil {
				_ = users.Rollback()
				return err
			}
			if err := users.Commit(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "user %s created (id %d)\n", created.Username, created.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password (prefer the prompt; flags end up in shell history)")
	cmd.Flags().StringVar(&u.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&u.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&u.RoleID, "role", dao.DefaultRole, "Role id (admin, user)")
	cmd.Flags().StringVar(&u.Avatar, "avatar", "", "Avatar URL")
	return cmd
}

func newUserListCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := dao.NewSysUserDao(cmd.Context())
			if err != nil {
				return err
			}
			list, err := users.GetAllUsers()
			if err != nil {
				return err
			}
			columns := []string{"id", "username", "email", "phone", "role_id", "status", "avatar"}
			records := make([][]any, 0, len(list))
			for _, u := range list {
				records = append(records, []any{u.ID, u.Username, u.Email, u.Phone, u.RoleID, u.Status, u.Avatar})
			}
			return renderRecords(cmd.OutOrStdout(), format, columns, records)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or yaml")
	return cmd
}

func newUserDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := dao.NewSysUserDao(cmd.Context())
			if err != nil {
				return err
			}
			if err := users.Delete(args[0]); err != nil {
				return fmt.Errorf("delete %s: %w", args[0], err)
			}
			if err := users.Commit(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "user %s deleted\n", args[0])
			return err
		},
	}
}

func newUserStatusCmd(verb string, status int) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <username>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := dao.NewSysUserDao(cmd.Context())
			if err != nil {
				return err
			}
			if err := users.SetStatus(args[0], status); err != nil {
				return fmt.Errorf("%s %s: %w", verb, args[0], err)
			}
			if err := users.Commit(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "user %s %sd\n", args[0], verb)
			return err
		},
	}
}
