package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dosewise/pillcache"
	"github.com/dosewise/pillcache/internal/store/diskstore"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics about the local record store",
	Long: `Display statistics about the disk-backed record store including:
- Number of tenants
- Number of record documents
- Total size on disk`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		return fmt.Errorf("data directory %q does not exist; run 'pillcache put' first", dataDir)
	}

	c, err := pillcache.CodecByName(codecName)
	if err != nil {
		return err
	}
	st, err := diskstore.New(dataDir, c)
	if err != nil {
		return fmt.Errorf("opening data directory: %w", err)
	}
	defer st.Close()

	usage, err := st.Usage()
	if err != nil {
		return fmt.Errorf("scanning data directory: %w", err)
	}

	if usage.Records == 0 {
		fmt.Println("No records found in data directory.")
		return nil
	}

	fmt.Printf("Data directory: %s\n", dataDir)
	fmt.Printf("Codec:          %s\n", codecName)
	fmt.Printf("Tenants:        %d\n", usage.Tenants)
	fmt.Printf("Records:        %d\n", usage.Records)
	fmt.Printf("Total size:     %s\n", formatBytes(usage.Bytes))

	return nil
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
