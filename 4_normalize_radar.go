package clustergen

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Radar metric names, in display order
const (
	MetricMotion        = "Motion"
	MetricCutRate       = "Cut Rate"
	MetricVisualDensity = "Visual Density"
	MetricAudioVolume   = "Audio Volume"
	MetricAudioVariance = "Audio Variance"
)

// degenerateScore is used for a metric that has the same value in every cluster
const degenerateScore = 50.0

// RadarPoint is one metric of a cluster scaled to [0,100] against all loaded clusters
type RadarPoint struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

// RadarScores holds the five normalized metrics of one cluster
type RadarScores struct {
	Motion        float64 `json:"motion"`
	CutRate       float64 `json:"cut_rate"`
	VisualDensity float64 `json:"visual_density"`
	AudioVolume   float64 `json:"audio_volume"`
	AudioVariance float64 `json:"audio_variance"`
}

// Points returns the scores as radar points in display order
func (r RadarScores) Points() []RadarPoint {
	return []RadarPoint{
		{Metric: MetricMotion, Value: r.Motion},
		{Metric: MetricCutRate, Value: r.CutRate},
		{Metric: MetricVisualDensity, Value: r.VisualDensity},
		{Metric: MetricAudioVolume, Value: r.AudioVolume},
		{Metric: MetricAudioVariance, Value: r.AudioVariance},
	}
}

var radarColumns = []func(ClusterStats) float64{
	func(s ClusterStats) float64 { return s.AvgMotion },
	func(s ClusterStats) float64 { return s.AvgCutRate },
	func(s ClusterStats) float64 { return s.AvgVisualDensity },
	func(s ClusterStats) float64 { return s.AvgAudioRMSMean },
	func(s ClusterStats) float64 { return s.AvgAudioRMSStd },
}

// NormalizeRadar min-max scales every radar metric across all clusters.
// It must be recomputed whenever the cluster set changes.
func NormalizeRadar(all []ClusterStats) map[ClusterID]RadarScores {
	scores := make(map[ClusterID]RadarScores, len(all))
	if len(all) == 0 {
		return scores
	}

	raw := mat.NewDense(len(all), len(radarColumns), nil)
	for i, s := range all {
		for j, value := range radarColumns {
			raw.Set(i, j, value(s))
		}
	}

	normalized := mat.NewDense(len(all), len(radarColumns), nil)
	col := make([]float64, len(all))
	for j := range radarColumns {
		mat.Col(col, j, raw)
		lo, hi := floats.Min(col), floats.Max(col)
		for i, v := range col {
			normalized.Set(i, j, scale(v, lo, hi))
		}
	}

	for i, s := range all {
		row := normalized.RawRowView(i)
		scores[s.Cluster] = RadarScores{
			Motion:        row[0],
			CutRate:       row[1],
			VisualDensity: row[2],
			AudioVolume:   row[3],
			AudioVariance: row[4],
		}
	}
	return scores
}

// RadarPoints returns target's five radar points relative to all. It returns nil when
// all is empty or does not contain target.
func RadarPoints(all []ClusterStats, target ClusterStats) []RadarPoint {
	scores, ok := NormalizeRadar(all)[target.Cluster]
	if !ok {
		return nil
	}
	return scores.Points()
}

func scale(v, lo, hi float64) float64 {
	if hi == lo {
		return degenerateScore
	}
	return (v - lo) / (hi - lo) * 100
}
