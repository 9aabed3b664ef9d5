package clustergen

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var LoadTablesCmd = &cobra.Command{
	Use:   "load-tables",
	Short: "Parse the interpretation and assignment tables and report their sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(Config)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "videos: %d\nclusters: %d\nassignments: %d\n",
			session.VideoCount(), len(session.Clusters()), session.AssignmentCount())
		return nil
	},
}

// openSession creates a session and loads the configured tables into it. The assignment
// table is optional; a failure to parse it is logged and leaves the session usable.
func openSession(settings Settings) (*Session, error) {
	if settings.Interpretation == "" {
		return nil, fmt.Errorf("no interpretation table configured (use --interpretation)")
	}

	session := NewSession()
	table, err := LoadTable(settings.Interpretation)
	if err != nil {
		logger.Error("❌ Failed to load interpretation table", zap.String("path", settings.Interpretation), zap.Error(err))
		return nil, err
	}
	if err := session.LoadInterpretation(table); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", settings.Interpretation, err)
	}

	if settings.Assignments != "" {
		assignments, err := LoadTable(settings.Assignments)
		if err != nil {
			logger.Error("❌ Failed to load assignment table", zap.String("path", settings.Assignments), zap.Error(err))
		} else {
			session.LoadAssignments(assignments)
		}
	}
	return session, nil
}
