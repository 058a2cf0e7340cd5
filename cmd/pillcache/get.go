package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dosewise/pillcache"
)

var getCmd = &cobra.Command{
	Use:   "get TENANT RECORD",
	Short: "Read a record through the cache",
	Args:  cobra.ExactArgs(2),
	RunE:  runGet,
}

var (
	outputJSON bool
	showTiming bool
)

func init() {
	getCmd.Flags().BoolVar(&outputJSON, "json", false, "output the record as JSON")
	getCmd.Flags().BoolVar(&showTiming, "timing", false, "show read timing")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	start := time.Now()
	rec, err := client.Get(ctx, args[0], args[1])
	if err != nil {
		if errors.Is(err, pillcache.ErrNotFound) {
			return fmt.Errorf("record %s/%s not found", args[0], args[1])
		}
		return err
	}
	elapsed := time.Since(start)

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	fmt.Printf("Tenant:  %s\n", rec.TenantID)
	fmt.Printf("Record:  %s\n", rec.ID)
	fmt.Printf("Kind:    %s\n", rec.Kind)
	fmt.Printf("Updated: %s\n", rec.UpdatedAt.Format(time.RFC3339))
	fmt.Printf("Body:    %s\n", rec.Body)
	if showTiming {
		fmt.Printf("Time:    %s\n", elapsed)
	}
	return nil
}
