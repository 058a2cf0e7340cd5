package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dosewise/pillcache"
)

var deleteCmd = &cobra.Command{
	Use:   "delete TENANT RECORD",
	Short: "Delete a record from the store",
	Args:  cobra.ExactArgs(2),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Delete(ctx, args[0], args[1]); err != nil {
		if errors.Is(err, pillcache.ErrNotFound) {
			return fmt.Errorf("record %s/%s not found", args[0], args[1])
		}
		return err
	}
	fmt.Printf("Deleted %s/%s\n", args[0], args[1])
	return nil
}
