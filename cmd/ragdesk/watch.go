package main

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hyperjump/ragdesk/internal/cli"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage the drop folders of a running server",
	}
	cmd.PersistentFlags().String("server", "http://localhost:8080", "server URL")

	add := &cobra.Command{
		Use:   "add <path>",
		Short: "Watch a directory and ingest its existing files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			noSync, _ := cmd.Flags().GetBool("no-sync")
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if err := watchClient(cmd).AddWatchDirectory(path, !noSync); err != nil {
				return fmt.Errorf("add failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added: %s\n", path)
			return nil
		},
	}
	add.Flags().Bool("no-sync", false, "do not ingest files already in the directory")

	remove := &cobra.Command{
		Use:   "remove <path>",
		Short: "Stop watching a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if err := watchClient(cmd).RemoveWatchDirectory(path); err != nil {
				return fmt.Errorf("remove failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed: %s\n", path)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List watched directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dirs, err := watchClient(cmd).WatchDirectories()
			if err != nil {
				return fmt.Errorf("list failed: %w", err)
			}
			for _, d := range dirs {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}

	cmd.AddCommand(add, remove, list)
	return cmd
}

func watchClient(cmd *cobra.Command) *cli.Client {
	url, _ := cmd.Flags().GetString("server")
	return cli.NewClient(url, nil)
}

// splitAddr parses host:port. An empty host keeps listening on every interface.
func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port in %q", addr)
	}
	return host, port, nil
}
