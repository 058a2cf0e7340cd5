package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dosewise/pillcache"
	"github.com/dosewise/pillcache/internal/record"
)

var putCmd = &cobra.Command{
	Use:   "put TENANT RECORD",
	Short: "Write a record to the store",
	Long: `Write a record document to the store. The body is read from --file,
or from standard input when --file is "-".

Examples:
  pillcache put user-1 rem-morning --kind reminder --file reminder.json
  echo '{"name":"aspirin"}' | pillcache put user-1 med-aspirin --kind medication --file -`,
	Args: cobra.ExactArgs(2),
	RunE: runPut,
}

var (
	putKind string
	putFile string
)

func init() {
	putCmd.Flags().StringVar(&putKind, "kind", string(record.KindReminder), "record kind: reminder, adherence, medication or profile")
	putCmd.Flags().StringVarP(&putFile, "file", "f", "-", "file holding the JSON body")
	rootCmd.AddCommand(putCmd)
}

func runPut(cmd *cobra.Command, args []string) error {
	kind, err := record.ParseKind(putKind)
	if err != nil {
		return err
	}

	body, err := readBody(cmd.InOrStdin(), putFile)
	if err != nil {
		return err
	}
	if !json.Valid(body) {
		return fmt.Errorf("body is not valid JSON")
	}

	ctx := cmd.Context()
	client, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	rec := pillcache.Record{
		TenantID:  args[0],
		ID:        args[1],
		Kind:      kind,
		UpdatedAt: time.Now().UTC(),
		Body:      body,
	}
	if err := client.Put(ctx, rec); err != nil {
		return err
	}

	fmt.Printf("Stored %s/%s (%s, %d bytes)\n", rec.TenantID, rec.ID, rec.Kind, len(body))
	return nil
}

func readBody(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		body, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return body, nil
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}
