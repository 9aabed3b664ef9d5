package clustergen

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// Approach is the generation strategy assigned to a cluster
type Approach string

const (
	ApproachTextDriven       Approach = "text-driven"
	ApproachImageConditioned Approach = "image-conditioned"
	ApproachMotionFocused    Approach = "motion-focused"
)

var ErrUnknownApproach = errors.New("unknown approach")

// Approaches lists every supported approach
func Approaches() []Approach {
	return []Approach{ApproachTextDriven, ApproachImageConditioned, ApproachMotionFocused}
}

// ParseApproach validates an approach name
func ParseApproach(s string) (Approach, error) {
	a := Approach(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownApproach, s)
	}
	return a, nil
}

// Valid reports whether a is one of the supported approaches
func (a Approach) Valid() bool {
	switch a {
	case ApproachTextDriven, ApproachImageConditioned, ApproachMotionFocused:
		return true
	}
	return false
}

// Confidence grades an approach suggestion
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ApproachSuggestion is an advisory recommendation for one cluster
type ApproachSuggestion struct {
	Approach   Approach   `json:"approach"`
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason"`
}

type approachRule struct {
	match      func(RadarScores) bool
	suggestion ApproachSuggestion
}

// approachRules are evaluated in order; the first match wins
var approachRules = []approachRule{
	{
		match: func(r RadarScores) bool { return r.Motion > 60 && r.CutRate > 60 },
		suggestion: ApproachSuggestion{
			Approach:   ApproachMotionFocused,
			Confidence: ConfidenceHigh,
			Reason:     "High motion + fast cuts = movement-driven content",
		},
	},
	{
		match: func(r RadarScores) bool { return r.VisualDensity > 70 },
		suggestion: ApproachSuggestion{
			Approach:   ApproachImageConditioned,
			Confidence: ConfidenceHigh,
			Reason:     "Strong visual composition and density",
		},
	},
	{
		match: func(r RadarScores) bool { return r.VisualDensity > 50 && r.Motion < 40 },
		suggestion: ApproachSuggestion{
			Approach:   ApproachImageConditioned,
			Confidence: ConfidenceMedium,
			Reason:     "Visual-focused with minimal movement",
		},
	},
	{
		match: func(r RadarScores) bool { return r.Motion > 70 },
		suggestion: ApproachSuggestion{
			Approach:   ApproachMotionFocused,
			Confidence: ConfidenceMedium,
			Reason:     "Significant camera/subject movement",
		},
	},
	{
		match: func(r RadarScores) bool { return r.AudioVariance > 70 || r.AudioVolume > 70 },
		suggestion: ApproachSuggestion{
			Approach:   ApproachTextDriven,
			Confidence: ConfidenceMedium,
			Reason:     "Distinctive audio characteristics suggest narrative/thematic content",
		},
	},
}

var defaultSuggestion = ApproachSuggestion{
	Approach:   ApproachTextDriven,
	Confidence: ConfidenceLow,
	Reason:     "Balanced metrics - best suited for conceptual/thematic generation",
}

// SuggestApproach classifies a cluster from its normalized radar scores
func SuggestApproach(r RadarScores) ApproachSuggestion {
	for _, rule := range approachRules {
		if rule.match(r) {
			return rule.suggestion
		}
	}
	return defaultSuggestion
}

// SuggestAll classifies every cluster against the full cluster set
func SuggestAll(all []ClusterStats) map[ClusterID]ApproachSuggestion {
	radar := NormalizeRadar(all)
	suggestions := make(map[ClusterID]ApproachSuggestion, len(radar))
	for id, scores := range radar {
		suggestions[id] = SuggestApproach(scores)
	}
	return suggestions
}

// ClusterInsight bundles the derived, non-persisted view of one cluster
type ClusterInsight struct {
	Cluster         ClusterID          `json:"cluster"`
	Count           int                `json:"count"`
	Characteristics string             `json:"characteristics"`
	Radar           []RadarPoint       `json:"radar"`
	Suggestion      ApproachSuggestion `json:"suggestion"`
}

// Insights derives characteristics, radar points and a suggestion for every cluster
func Insights(all []ClusterStats) []ClusterInsight {
	radar := NormalizeRadar(all)
	insights := make([]ClusterInsight, 0, len(all))
	for _, s := range all {
		scores := radar[s.Cluster]
		insights = append(insights, ClusterInsight{
			Cluster:         s.Cluster,
			Count:           s.Count,
			Characteristics: Characteristics(s),
			Radar:           scores.Points(),
			Suggestion:      SuggestApproach(scores),
		})
	}
	return insights
}

var SuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest a generation approach for each cluster",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(Config)
		if err != nil {
			return err
		}
		return writeInsights(cmd.OutOrStdout(), Insights(session.Clusters()))
	},
}

func writeInsights(w io.Writer, insights []ClusterInsight) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(insights); err != nil {
		return fmt.Errorf("failed to encode suggestions: %w", err)
	}
	return nil
}
