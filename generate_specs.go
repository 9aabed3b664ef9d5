package clustergen

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// GenerateOptions carries the per-cluster choices given on the command line
type GenerateOptions struct {
	Approaches        []string // ID=APPROACH
	Tokens            []string // ID=TOKEN, repeatable per cluster
	AcceptSuggestions bool
}

var generateOpts GenerateOptions

var GenerateSpecsCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build generation specs for clusters with a chosen approach and export them",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(Config)
		if err != nil {
			return err
		}
		_, err = GenerateSpecs(session, generateOpts, Config)
		return err
	},
}

func init() {
	flags := GenerateSpecsCmd.Flags()
	flags.StringArrayVar(&generateOpts.Approaches, "approach", nil, "Approach for a cluster as ID=APPROACH (text-driven, image-conditioned, motion-focused)")
	flags.StringArrayVar(&generateOpts.Tokens, "token", nil, "Trend token for a cluster as ID=TOKEN (at most 3 per cluster)")
	flags.BoolVar(&generateOpts.AcceptSuggestions, "accept-suggestions", false, "Use the suggested approach for clusters without an explicit --approach")
}

// GenerateSpecs applies the choices in opts to the session, builds a spec for every
// cluster that has an approach and writes the export. It returns the path of the JSON
// document.
func GenerateSpecs(session *Session, opts GenerateOptions, settings Settings) (string, error) {
	if err := applyChoices(session, opts); err != nil {
		return "", err
	}

	built := 0
	for _, stats := range session.Clusters() {
		if _, ok := session.ApproachFor(stats.Cluster); !ok {
			logger.Debug("Skipping cluster without an approach", zap.Stringer("cluster", stats.Cluster))
			continue
		}
		if _, err := session.Generate(stats.Cluster); err != nil {
			return "", err
		}
		built++
	}
	if built == 0 {
		logger.Warn("⚠️  No cluster has an approach; exporting an empty document (use --approach or --accept-suggestions)")
	}

	specs := session.Specs()
	path, err := WriteSpecs(settings.OutputDir, specs)
	if err != nil {
		return "", err
	}
	if settings.ExportDB != "" {
		if err := ExportSpecsSQLite(settings.ExportDB, specs); err != nil {
			return "", err
		}
	}
	logger.Info("✅ Generation complete", zap.String("session", session.ID()), zap.Int("built", built))
	return path, nil
}

func applyChoices(session *Session, opts GenerateOptions) error {
	for _, arg := range opts.Approaches {
		id, value, err := parseClusterArg(arg)
		if err != nil {
			return err
		}
		approach, err := ParseApproach(value)
		if err != nil {
			return err
		}
		if err := session.SetApproach(id, approach); err != nil {
			return err
		}
	}

	for _, arg := range opts.Tokens {
		id, value, err := parseClusterArg(arg)
		if err != nil {
			return err
		}
		if _, ok := session.Cluster(id); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCluster, id)
		}
		before := session.Tokens(id)
		if after := session.AddToken(id, value); len(after) == len(before) {
			logger.Warn("⚠️  Trend token ignored", zap.Stringer("cluster", id), zap.String("token", value))
		}
	}

	if opts.AcceptSuggestions {
		for _, stats := range session.Clusters() {
			if _, ok := session.ApproachFor(stats.Cluster); ok {
				continue
			}
			approach, err := session.AcceptSuggestion(stats.Cluster)
			if err != nil {
				return err
			}
			logger.Info("💡 Accepted suggested approach",
				zap.Stringer("cluster", stats.Cluster),
				zap.String("approach", string(approach)))
		}
	}
	return nil
}

// parseClusterArg splits an ID=VALUE argument
func parseClusterArg(arg string) (ClusterID, string, error) {
	rawID, value, found := strings.Cut(arg, "=")
	if !found {
		return ClusterID{}, "", fmt.Errorf("expected ID=VALUE, got %q", arg)
	}
	id, ok := ParseClusterID(rawID)
	if !ok {
		return ClusterID{}, "", fmt.Errorf("missing cluster id in %q", arg)
	}
	return id, value, nil
}

// ReadSpecs loads generation_specs.json from dir. A missing file yields an empty map.
func ReadSpecs(dir string) (map[ClusterID]GenerationSpec, error) {
	data, err := os.ReadFile(filepath.Join(dir, ExportFileName))
	if errors.Is(err, os.ErrNotExist) {
		return map[ClusterID]GenerationSpec{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read specs file: %w", err)
	}
	specs := map[ClusterID]GenerationSpec{}
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to parse specs file: %w", err)
	}
	return specs, nil
}
