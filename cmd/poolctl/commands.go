package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/leemorgale/sms-chat/internal/config"
	"github.com/leemorgale/sms-chat/internal/db"
	"github.com/leemorgale/sms-chat/internal/services"
	"github.com/leemorgale/sms-chat/pkg/logger"
	"github.com/leemorgale/sms-chat/pkg/middleware"

	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every subcommand
type options struct {
	configPath string
	driver     string
	dsn        string
	logLevel   string
}

// newRootCmd builds the poolctl command tree
func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "poolctl",
		Short: "Manage the SMS chat phone number pool",
		Long: `poolctl administers the pool of provider numbers that are bound to
chat groups. It talks to the same database as the server.

Examples:
  poolctl register +15552220001 --sid PN0123
  poolctl list
  poolctl status <id> INACTIVE
  poolctl hash-admin-key s3cret`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "absolute path to a JSON or YAML config file")
	root.PersistentFlags().StringVar(&opts.driver, "driver", "", "database driver override (sqlite3 or pgx)")
	root.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "database DSN override")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(
		newRegisterCmd(opts),
		newListCmd(opts),
		newAvailableCmd(opts),
		newReleaseCmd(opts),
		newStatusCmd(opts),
		newDeleteCmd(opts),
		newHashAdminKeyCmd(),
	)
	return root
}

// withPool opens the configured database and runs fn against the pool service
func withPool(opts *options, fn func(*services.PhonePoolService) error) error {
	if err := logger.InitConsole(opts.logLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.driver != "" {
		cfg.Database.Driver = opts.driver
	}
	if opts.dsn != "" {
		cfg.Database.DSN = opts.dsn
	}

	database, err := db.NewDatabase(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	return fn(services.NewPhonePoolService(db.NewPhoneRepository(database)))
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRegisterCmd(opts *options) *cobra.Command {
	var sid string
	cmd := &cobra.Command{
		Use:   "register <phone-number>",
		Short: "Add an E.164 number to the pool as AVAILABLE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(opts, func(pool *services.PhonePoolService) error {
				var providerSID *string
				if sid != "" {
					providerSID = &sid
				}
				phone, err := pool.RegisterNumber(cmd.Context(), args[0], providerSID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), phone)
			})
		},
	}
	cmd.Flags().StringVar(&sid, "sid", "", "provider identifier for the number")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every pool number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(opts, func(pool *services.PhonePoolService) error {
				phones, err := pool.ListNumbers(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), phones)
			})
		},
	}
}

func newAvailableCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "available",
		Short: "List numbers that can be bound to a new group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(opts, func(pool *services.PhonePoolService) error {
				phones, err := pool.ListAvailable(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), phones)
			})
		},
	}
}

func newReleaseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "release <id>",
		Short: "Unbind a number from its group and make it AVAILABLE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(opts, func(pool *services.PhonePoolService) error {
				phone, err := pool.Release(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), phone)
			})
		},
	}
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <AVAILABLE|ASSIGNED|INACTIVE>",
		Short: "Change a number's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(opts, func(pool *services.PhonePoolService) error {
				phone, err := pool.SetStatus(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), phone)
			})
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a number that is not bound to a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(opts, func(pool *services.PhonePoolService) error {
				if err := pool.DeleteNumber(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return err
			})
		},
	}
}

func newHashAdminKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-admin-key <key>",
		Short: "Print the bcrypt hash to store in admin.key_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := middleware.HashAdminKey(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
