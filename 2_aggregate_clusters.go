package clustergen

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sosodev/duration"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// ClusterStats holds descriptive statistics for one cluster
type ClusterStats struct {
	Cluster          ClusterID      `json:"cluster"`
	Count            int            `json:"count"`
	AvgMotion        float64        `json:"avg_motion"`
	MinMotion        float64        `json:"min_motion"`
	MaxMotion        float64        `json:"max_motion"`
	AvgCutRate       float64        `json:"avg_cut_rate"`
	MinCutRate       float64        `json:"min_cut_rate"`
	MaxCutRate       float64        `json:"max_cut_rate"`
	AvgAudioRMSMean  float64        `json:"avg_audio_rms_mean"`
	AvgAudioRMSStd   float64        `json:"avg_audio_rms_std"`
	AvgVisualDensity float64        `json:"avg_visual_density"`
	MinVisualDensity float64        `json:"min_visual_density"`
	MaxVisualDensity float64        `json:"max_visual_density"`
	AvgDurationSec   *float64       `json:"avg_duration_sec,omitempty"`
	Missing          map[string]int `json:"missing,omitempty"` // rows lacking a metric, counted as 0 in the averages
	Videos           []VideoRecord  `json:"videos"`
}

var metricFields = []string{
	FieldMotion,
	FieldCutRate,
	FieldAudioRMSMean,
	FieldAudioRMSStd,
	FieldVisualDensity,
}

var clustersJSON bool

var ClustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "Aggregate per-cluster statistics from the interpretation table",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(Config)
		if err != nil {
			return err
		}
		if clustersJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(session.Clusters()); err != nil {
				return fmt.Errorf("failed to encode clusters: %w", err)
			}
			return nil
		}
		return PrintClusters(cmd.OutOrStdout(), session)
	},
}

func init() {
	ClustersCmd.Flags().BoolVar(&clustersJSON, "json", false, "Print cluster statistics as JSON")
}

type clusterAccumulator struct {
	id        ClusterID
	rows      []VideoRecord
	values    map[string][]float64
	missing   map[string]int
	durations []float64
}

func newClusterAccumulator(id ClusterID) *clusterAccumulator {
	return &clusterAccumulator{
		id:      id,
		values:  make(map[string][]float64, len(metricFields)),
		missing: make(map[string]int),
	}
}

func (a *clusterAccumulator) add(row VideoRecord) {
	a.rows = append(a.rows, row)
	for _, field := range metricFields {
		if !row.Has(field) {
			a.missing[field]++
		}
		a.values[field] = append(a.values[field], row.Float(field))
	}
	if v, ok := row[FieldDuration]; ok {
		if secs, ok := durationSeconds(v); ok {
			a.durations = append(a.durations, secs)
		}
	}
}

func (a *clusterAccumulator) toStats() ClusterStats {
	motion := a.values[FieldMotion]
	cutRate := a.values[FieldCutRate]
	density := a.values[FieldVisualDensity]

	stats := ClusterStats{
		Cluster:          a.id,
		Count:            len(a.rows),
		AvgMotion:        mean(motion),
		MinMotion:        floats.Min(motion),
		MaxMotion:        floats.Max(motion),
		AvgCutRate:       mean(cutRate),
		MinCutRate:       floats.Min(cutRate),
		MaxCutRate:       floats.Max(cutRate),
		AvgAudioRMSMean:  mean(a.values[FieldAudioRMSMean]),
		AvgAudioRMSStd:   mean(a.values[FieldAudioRMSStd]),
		AvgVisualDensity: mean(density),
		MinVisualDensity: floats.Min(density),
		MaxVisualDensity: floats.Max(density),
		Videos:           a.rows,
	}
	if len(a.durations) > 0 {
		avg := mean(a.durations)
		stats.AvgDurationSec = &avg
	}
	if len(a.missing) > 0 {
		stats.Missing = a.missing
	}
	return stats
}

// AggregateClusters groups rows by cluster id and computes per-cluster statistics,
// sorted ascending by id. A metric missing on a row contributes 0.
func AggregateClusters(rows []VideoRecord) []ClusterStats {
	groups := make(map[ClusterID]*clusterAccumulator)
	var ids []ClusterID
	skipped := 0

	for _, row := range rows {
		id, ok := row.ClusterID()
		if !ok {
			skipped++
			continue
		}
		acc, exists := groups[id]
		if !exists {
			acc = newClusterAccumulator(id)
			groups[id] = acc
			ids = append(ids, id)
		}
		acc.add(row)
	}
	if skipped > 0 {
		logger.Warn("⚠️  Skipped rows without a cluster id", zap.Int("rows", skipped))
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	stats := make([]ClusterStats, 0, len(ids))
	for _, id := range ids {
		stats = append(stats, groups[id].toStats())
	}
	logger.Info("📊 Aggregated clusters", zap.Int("rows", len(rows)), zap.Int("clusters", len(stats)))
	return stats
}

// mean sums in row order so results match a plain left-to-right accumulation
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// durationSeconds reads a duration cell given as seconds or as ISO-8601 (PT1M5S)
func durationSeconds(v Value) (float64, bool) {
	if v.Numeric {
		return v.Number, true
	}
	s := strings.TrimSpace(v.Raw)
	if s == "" {
		return 0, false
	}
	d, err := duration.Parse(s)
	if err != nil {
		return 0, false
	}
	return d.ToTimeDuration().Seconds(), true
}
