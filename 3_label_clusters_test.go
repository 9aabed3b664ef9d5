package clustergen

import (
	"slices"
	"testing"
)

func TestCharacteristicTags(t *testing.T) {
	tests := []struct {
		name  string
		stats ClusterStats
		want  []string
	}{
		{
			name:  "middle band",
			stats: ClusterStats{AvgMotion: 0.3, AvgCutRate: 40, AvgVisualDensity: 0.45, AvgAudioRMSMean: 0.3},
			want:  []string{"Medium Motion", "Medium Pacing"},
		},
		{
			name:  "high everything",
			stats: ClusterStats{AvgMotion: 0.8, AvgCutRate: 150, AvgVisualDensity: 0.7, AvgAudioRMSMean: 0.6},
			want:  []string{"High Motion", "Fast Cuts", "Visually Dense", "Loud Audio"},
		},
		{
			name:  "low everything",
			stats: ClusterStats{AvgMotion: 0.1, AvgCutRate: 10, AvgVisualDensity: 0.1, AvgAudioRMSMean: 0.1},
			want:  []string{"Low Motion", "Slow Cuts", "Visually Simple", "Quiet Audio"},
		},
		{
			name:  "boundaries are exclusive",
			stats: ClusterStats{AvgMotion: 0.5, AvgCutRate: 120, AvgVisualDensity: 0.6, AvgAudioRMSMean: 0.5},
			want:  []string{"Medium Motion", "Medium Pacing"},
		},
		{
			name:  "lower boundaries",
			stats: ClusterStats{AvgMotion: 0.2, AvgCutRate: 30, AvgVisualDensity: 0.3, AvgAudioRMSMean: 0.2},
			want:  []string{"Medium Motion", "Medium Pacing"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CharacteristicTags(tt.stats); !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCharacteristics(t *testing.T) {
	got := Characteristics(ClusterStats{AvgMotion: 0.8, AvgCutRate: 10})
	if want := "High Motion • Slow Cuts • Visually Simple • Quiet Audio"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
