package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"postfeed/app/config"
	"postfeed/app/repositories"
)

const backupDir = "data/backups"

func newCacheCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Maintain the badger cache directory",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	badgerPath := func() (string, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return "", err
		}
		return cfg.Cache.BadgerPath, nil
	}

	cmd.AddCommand(newCacheCleanCmd(badgerPath), newCacheBackupCmd(badgerPath), newCacheRestoreCmd(badgerPath))
	return cmd
}

func newCacheCleanCmd(badgerPath func() (string, error)) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Drop every cached entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := badgerPath()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, "Cache is already clean (does not exist)")
				return nil
			}
			if !yes && !confirm(cmd.InOrStdin(), out, "Are you sure you want to clean the cache? This cannot be undone. [y/N] ") {
				fmt.Fprintln(out, "Operation cancelled")
				return nil
			}

			store, err := repositories.NewBadgerStore(path)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			if err := store.Clear(); err != nil {
				return fmt.Errorf("clean cache: %w", err)
			}
			fmt.Fprintln(out, "Cache cleaned successfully")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newCacheBackupCmd(badgerPath func() (string, error)) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a backup of the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := badgerPath()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, "No cache exists to backup")
				return nil
			}

			if output == "" {
				output = filepath.Join(backupDir, fmt.Sprintf("backup_%d.db", time.Now().Unix()))
			}
			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				return fmt.Errorf("create backup directory: %w", err)
			}

			store, err := repositories.NewBadgerStore(path)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create backup file: %w", err)
			}
			defer f.Close()

			if err := store.Backup(f); err != nil {
				return fmt.Errorf("backup cache: %w", err)
			}
			fmt.Fprintf(out, "Cache backed up successfully to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "backup file (default data/backups/backup_<unix>.db)")
	return cmd
}

func newCacheRestoreCmd(badgerPath func() (string, error)) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the cache with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backupFile := args[0]
			path, err := badgerPath()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := os.Stat(backupFile); os.IsNotExist(err) {
				return fmt.Errorf("backup file does not exist: %s", backupFile)
			}

			if _, err := os.Stat(path); err == nil {
				if !yes && !confirm(cmd.InOrStdin(), out, "Existing cache found. Do you want to replace it? [y/N] ") {
					fmt.Fprintln(out, "Operation cancelled")
					return nil
				}
				if err := os.RemoveAll(path); err != nil {
					return fmt.Errorf("remove existing cache: %w", err)
				}
			}

			store, err := repositories.NewBadgerStore(path)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			f, err := os.Open(backupFile)
			if err != nil {
				return fmt.Errorf("open backup file: %w", err)
			}
			defer f.Close()

			if err := store.Restore(f); err != nil {
				return fmt.Errorf("restore cache: %w", err)
			}
			fmt.Fprintln(out, "Cache restored successfully")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y"
}
