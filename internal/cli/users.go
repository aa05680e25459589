package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/repository"
	"github.com/dedirosandiaj/problem-log-new/internal/service"
)

// NewUsersCommand groups account administration.
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage console accounts",
	}

	var email, name string
	seed := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create a Super Admin account",
		Long:  `Create a Super Admin with every permission. The password is read from the terminal without echo, or from stdin when piped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd.OutOrStdout(), cmd.InOrStdin())
			if err != nil {
				return err
			}

			rt, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer rt.close()
			if err := rt.requireDatabase(); err != nil {
				return err
			}

			activity := service.NewActivityService(repository.NewActivityRepository(rt.redis.Client), rt.logger, nil)
			users := service.NewUserService(rt.cfg.Auth, repository.NewUserRepository(rt.pg.PoolHandle()), activity)
			user, err := users.Create(cmd.Context(), systemActor, service.UserInput{
				Name:        name,
				Email:       email,
				Password:    password,
				Role:        domain.RoleSuperAdmin,
				Permissions: domain.AllPermissions,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s <%s> (%s)\n", user.Name, user.Email, user.ID)
			return nil
		},
	}
	seed.Flags().StringVar(&email, "email", "", "Login email (required)")
	seed.Flags().StringVar(&name, "name", "Administrator", "Display name")
	_ = seed.MarkFlagRequired("email")

	cmd.AddCommand(seed)
	return cmd
}

// readPassword prompts twice on a terminal. Piped input supplies one line.
func readPassword(out io.Writer, in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, "Password: ")
		first, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		fmt.Fprint(out, "Repeat password: ")
		second, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		if string(first) != string(second) {
			return "", errors.New("passwords do not match")
		}
		return string(first), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("empty password")
	}
	return password, nil
}
