// Package main implements the docscope CLI for indexing documents and
// asking questions scoped to a company, team, or project.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fulcrumlabs/docscope/internal/namespace"
)

var (
	// configPath is the YAML config file; empty means the default path.
	configPath string

	// namespace selection flags, shared by all subcommands
	companyID string
	teamID    string
	projectID string

	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docscope",
	Short: "Scoped document indexing and retrieval",
	Long: `docscope indexes documents into isolated company, team, and project
scopes and answers questions grounded only in the documents of one scope.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/docscope/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&companyID, "company", "", "company identifier (required)")
	rootCmd.PersistentFlags().StringVar(&teamID, "team", "", "team identifier (scopes to a team)")
	rootCmd.PersistentFlags().StringVar(&projectID, "project", "", "project identifier (scopes to a project)")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(askCmd)
}

// resolveNamespace builds the most specific namespace the flags allow:
// project wins over team, team over company.
func resolveNamespace() (namespace.Namespace, error) {
	var ns namespace.Namespace
	switch {
	case projectID != "":
		ns = namespace.Project(companyID, projectID)
	case teamID != "":
		ns = namespace.Team(companyID, teamID)
	default:
		ns = namespace.Company(companyID)
	}
	if err := ns.Validate(); err != nil {
		return namespace.Namespace{}, fmt.Errorf("namespace: %w", err)
	}
	return ns, nil
}
