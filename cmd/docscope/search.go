package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Retrieve the chunks most relevant to a query",
	Long: `Search queries the selected scope's index and prints the most
relevant chunks with their scores and provenance.

Example:
  docscope search --company acme --project apollo "launch checklist"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ns, err := resolveNamespace()
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.retriever.Retrieve(cmd.Context(), ns, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(out, "no matches in %s\n", ns)
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(out, "%d. [%.3f] source=%s document=%s\n%s\n\n",
			i+1, r.Score, r.Metadata["source"], r.Metadata["group_id"], r.Text)
	}
	return nil
}
