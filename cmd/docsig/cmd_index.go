package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/docsig/index"
)

func newIndexCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the persistent documentation index",
	}

	cmd.AddCommand(newIndexBuildCmd(a))
	cmd.AddCommand(newIndexLsCmd(a))

	return cmd
}

func newIndexBuildCmd(a *app) *cobra.Command {
	var idx indexFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Scan the source roots into the index store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := idx.apply(cmd, a.cfg); err != nil {
				return err
			}
			if a.cfg.IndexPath() == "" {
				return fmt.Errorf("no index directory: set index.path or pass --index")
			}

			b, closeIndex, err := openIndex(cmd.Context(), a.cfg, nil)
			if err != nil {
				return err
			}
			defer closeIndex()

			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d classes from %d files into %s\n",
				len(b.Index.Classes()), len(b.Index.Files()), a.cfg.IndexPath())
			return nil
		},
	}

	idx.register(cmd)
	return cmd
}

func newIndexLsCmd(a *app) *cobra.Command {
	var idx indexFlags

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List the source files held in the index store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := idx.apply(cmd, a.cfg); err != nil {
				return err
			}
			if a.cfg.IndexPath() == "" {
				return fmt.Errorf("no index directory: set index.path or pass --index")
			}

			store, err := index.OpenStore(a.cfg.IndexPath())
			if err != nil {
				return err
			}
			defer store.Close()

			paths, err := store.Paths()
			if err != nil {
				return err
			}
			for _, path := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	idx.register(cmd)
	return cmd
}
