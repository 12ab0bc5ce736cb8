package admin

import (
	"fmt"
	"io"
	"time"

	"github.com/Antoney20/archives/internal/server/auth"
	"github.com/spf13/cobra"
)

type options struct {
	server  string
	secret  string
	subject string
	ttl     time.Duration
}

// NewRootCommand builds the archives-admin command tree.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "archives-admin",
		Short:         "Manage apps of an archives server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.server, "server", "http://127.0.0.1:8000", "server base URL")
	pf.StringVar(&opts.secret, "secret", "", "admin JWT secret (prompted when empty)")
	pf.StringVar(&opts.subject, "subject", "archives-admin", "subject recorded in the admin token")
	pf.DurationVar(&opts.ttl, "ttl", time.Hour, "admin token lifetime")

	mint := func(cmd *cobra.Command) (string, error) {
		secret := opts.secret
		if secret == "" {
			s, err := GetSecret(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return "", fmt.Errorf("read secret: %w", err)
			}
			secret = s
		}
		if secret == "" {
			return "", fmt.Errorf("secret key is required")
		}
		return auth.GenerateAdminToken(opts.subject, []byte(secret), opts.ttl)
	}
	client := func(cmd *cobra.Command) (*Client, error) {
		tok, err := mint(cmd)
		if err != nil {
			return nil, err
		}
		return NewClient(opts.server, tok), nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "token",
			Short: "Print a signed admin token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				tok, err := mint(cmd)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tok)
				return nil
			},
		},
		&cobra.Command{
			Use:   "register <name>",
			Short: "Register an app and print its token",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := client(cmd)
				if err != nil {
					return err
				}
				res, err := c.Register(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "app:   %s\ntoken: %s\n", res.App, res.Token)
				return nil
			},
		},
		&cobra.Command{
			Use:   "revoke <name>",
			Short: "Issue a new token for an app, invalidating the old one",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := client(cmd)
				if err != nil {
					return err
				}
				res, err := c.Revoke(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "app:   %s\ntoken: %s\n", res.App, res.Token)
				return nil
			},
		},
		&cobra.Command{
			Use:   "toggle <name>",
			Short: "Activate or deactivate an app",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := client(cmd)
				if err != nil {
					return err
				}
				res, err := c.Toggle(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "app: %s active: %t\n", res.App, res.IsActive)
				return nil
			},
		},
		&cobra.Command{
			Use:   "apps",
			Short: "List registered apps",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				c, err := client(cmd)
				if err != nil {
					return err
				}
				res, err := c.List(cmd.Context())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				for _, a := range res.Apps {
					state := "active"
					if !a.IsActive {
						state = "inactive"
					}
					fmt.Fprintf(w, "%-30s %-8s %s\n", a.Name, state, a.CreatedAt.Format(time.RFC3339))
				}
				fmt.Fprintf(w, "%d app(s)\n", res.Count)
				return nil
			},
		},
	)

	return root
}
