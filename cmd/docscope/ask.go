package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fulcrumlabs/docscope/internal/chat"
)

var interactive bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question answered only from the scope's documents",
	Long: `Ask retrieves relevant chunks from the selected scope and asks the
generation model to answer only from them. When the documents cannot
answer the question, the model replies with a fixed not-found phrase.

Examples:
  docscope ask --company acme "When is the launch?"

  # Multi-turn session; history is kept for the session only
  docscope ask --company acme --interactive`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "start a multi-turn session")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ns, err := resolveNamespace()
	if err != nil {
		return err
	}
	if !interactive && len(args) == 0 {
		return fmt.Errorf("a question is required unless --interactive is set")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	orch, err := a.orchestrator()
	if err != nil {
		return err
	}

	if !interactive {
		answer, err := orch.Answer(cmd.Context(), ns, args[0], nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	}

	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	var history []chat.Turn

	fmt.Fprintf(out, "asking %s (empty line to quit)\n", ns)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			break
		}

		answer, err := orch.Answer(cmd.Context(), ns, question, history)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, answer)

		history = append(history,
			chat.Turn{Role: chat.RoleUser, Content: question},
			chat.Turn{Role: chat.RoleAssistant, Content: answer},
		)
	}
	return scanner.Err()
}
