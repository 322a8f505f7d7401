// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/toeirei/scaffold/internal/config"
	"github.com/toeirei/scaffold/internal/db"
	"github.com/toeirei/scaffold/internal/logging"
	"github.com/toeirei/scaffold/internal/schema"
	"github.com/toeirei/scaffold/ui/web"
)

// proxyFrom returns the application proxy of the command's scope.
func proxyFrom(cmd *cobra.Command) (db.Proxy, error) {
	return db.FromContext(cmd.Context(), config.DBGlobalName)
}

func newInitDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the application tables and seed data",
		Long: `Applies the DDL and then the DML bootstrap script of the configured
backend. Scripts already recorded in schema_migrations are skipped. The
embedded scripts can be replaced with database.ddl_path / database.dml_path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := proxyFrom(cmd)
			if err != nil {
				return err
			}
			applied, err := schema.Init(p, schema.Sources{
				DDLPath: appConfig.Database.DDLPath,
				DMLPath: appConfig.Database.DMLPath,
			})
			if err != nil {
				return err
			}
			logging.Debugf("cli: init-db applied %v", applied)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "database initialized successfully.")
			return err
		},
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			srv, err := web.New(appConfig, storageFactory, processScope)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().String("server.addr", config.DefaultAddr, "Listen address")
	cmd.Flags().String("database.scope", config.ScopeProcess, "Storage scope: process or request")
	return cmd
}

func newExecCmd() *cobra.Command {
	var format string
	var params []string
	cmd := &cobra.Command{
		Use:   "exec <statement> [args...]",
		Short: "Execute one SQL statement",
		Long: `Executes a single statement. Extra arguments bind to '?' placeholders in
order; --param name=value binds :name, @name or $name. Result rows are
printed as a table, json or yaml. In manual transaction mode the statement is
committed before the command exits.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			callArgs := make([]any, 0, len(args)-1+len(params))
			for _, a := range args[1:] {
				callArgs = append(callArgs, a)
			}
			for _, kv := range params {
				name, value, ok := strings.Cut(kv, "=")
				if !ok || name == "" {
					return fmt.Errorf("invalid --param %q (want name=value)", kv)
				}
				callArgs = append(callArgs, sql.Named(name, value))
			}

			p, err := proxyFrom(cmd)
			if err != nil {
				return err
			}
			rows, err := p.Execute(args[0], callArgs...)
			if err != nil {
				return err
			}
			if err := p.Commit(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			columns := rows.Columns()
			if len(columns) == 0 {
				_, err := fmt.Fprintf(out, "%d row(s) affected\n", rows.RowsAffected())
				return err
			}
			var records [][]any
			for r := range rows.All() {
				records = append(records, r.Values())
			}
			return renderRecords(out, format, columns, records)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or yaml")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Named parameter name=value (repeatable)")
	return cmd
}

func newScriptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "script <file|->",
		Short: "Apply a SQL script atomically",
		Long: `Runs every statement of the file (or stdin for "-") in one transaction.
If a statement fails, nothing of the script is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				body []byte
				err  error
			)
			if args[0] == "-" {
				body, err = io.ReadAll(cmd.InOrStdin())
			} else {
				body, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}
			p, err := proxyFrom(cmd)
			if err != nil {
				return err
			}
			if err := p.ExecuteScript(string(body)); err != nil {
				return err
			}
			if err := p.Commit(); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "script applied.")
			return err
		},
	}
}

func newMaintainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "db-maintain",
		Short: "Run database maintenance (VACUUM/OPTIMIZE) for the configured DB",
		Long:  `Runs engine-specific maintenance tasks (VACUUM, OPTIMIZE TABLE, PRAGMA optimize).`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := proxyFrom(cmd)
			if err != nil {
				return err
			}
			if err := db.Maintain(p); err != nil {
				return fmt.Errorf("maintenance failed: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Maintenance completed successfully")
			return err
		},
	}
}
