package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Index a document into the selected scope",
	Long: `Ingest reads extracted document text, segments it into overlapping
chunks, and indexes them under the selected scope.

Examples:
  # Index for a whole company
  docscope ingest --company acme report.txt

  # Index for one team
  docscope ingest --company acme --team platform runbook.txt

  # Read from stdin
  cat extracted.txt | docscope ingest --company acme -`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	ns, err := resolveNamespace()
	if err != nil {
		return err
	}

	var (
		text   []byte
		source string
	)
	if args[0] == "-" {
		text, err = io.ReadAll(cmd.InOrStdin())
		source = "stdin"
	} else {
		text, err = os.ReadFile(args[0])
		source = filepath.Base(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	groupID, err := a.pipeline.Ingest(cmd.Context(), ns, string(text), source)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %s into %s (document group %s)\n", source, ns, groupID)
	return nil
}
