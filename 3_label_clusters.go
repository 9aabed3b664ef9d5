package clustergen

import "strings"

// CharacteristicSeparator joins characteristic tags for display
const CharacteristicSeparator = " • "

// CharacteristicTags describes a cluster with fixed thresholds. Motion and pacing always
// produce a tag; density and audio stay silent in their middle band.
func CharacteristicTags(s ClusterStats) []string {
	tags := make([]string, 0, 4)

	switch {
	case s.AvgMotion > 0.5:
		tags = append(tags, "High Motion")
	case s.AvgMotion < 0.2:
		tags = append(tags, "Low Motion")
	default:
		tags = append(tags, "Medium Motion")
	}

	switch {
	case s.AvgCutRate > 120:
		tags = append(tags, "Fast Cuts")
	case s.AvgCutRate < 30:
		tags = append(tags, "Slow Cuts")
	default:
		tags = append(tags, "Medium Pacing")
	}

	switch {
	case s.AvgVisualDensity > 0.6:
		tags = append(tags, "Visually Dense")
	case s.AvgVisualDensity < 0.3:
		tags = append(tags, "Visually Simple")
	}

	switch {
	case s.AvgAudioRMSMean > 0.5:
		tags = append(tags, "Loud Audio")
	case s.AvgAudioRMSMean < 0.2:
		tags = append(tags, "Quiet Audio")
	}

	return tags
}

// Characteristics returns the display string for a cluster's tags
func Characteristics(s ClusterStats) string {
	return strings.Join(CharacteristicTags(s), CharacteristicSeparator)
}
