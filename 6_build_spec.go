package clustergen

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrApproachRequired   = errors.New("an approach must be chosen before building a spec")
	ErrInvalidSpecRequest = errors.New("invalid spec request")
)

// VariationStrategy tells the generator which input to vary between samples
type VariationStrategy string

const (
	VarySeedImage        VariationStrategy = "vary_seed_image"
	VaryMotionParameters VariationStrategy = "vary_motion_parameters"
	VaryTextPrompt       VariationStrategy = "vary_text_prompt"
)

const (
	trendTokenUsageNote = "Trend tokens are style modifiers layered on top of the cluster profile. " +
		"They adjust look and feel but never override the measured visual, motion or audio targets."
	trendTokenApplicationStrategy = "Append the tokens to the base prompt in the listed order. " +
		"When generating variations, rotate the emphasis between tokens instead of dropping any."
)

var approachNotes = map[Approach]string{
	ApproachTextDriven: "Describe the cluster's theme in a rich text prompt and let the model choose the visuals. " +
		"Use the pacing and audio profile to set tone and rhythm.",
	ApproachImageConditioned: "Condition generation on a representative keyframe from the cluster. " +
		"Preserve its composition and visual density while animating lightly.",
	ApproachMotionFocused: "Drive generation from camera and subject movement. " +
		"Match the measured motion intensity and cut rhythm before refining appearance.",
}

var variationStrategies = map[Approach]VariationStrategy{
	ApproachImageConditioned: VarySeedImage,
	ApproachMotionFocused:    VaryMotionParameters,
	ApproachTextDriven:       VaryTextPrompt,
}

// GenerationSpec describes how synthetic content for one cluster should be produced
type GenerationSpec struct {
	ClusterID         ClusterID         `json:"cluster_id" jsonschema:"description=Cluster identifier"`
	Approach          Approach          `json:"approach" jsonschema:"enum=text-driven,enum=image-conditioned,enum=motion-focused"`
	VideoCount        int               `json:"video_count" jsonschema:"description=Number of source videos in the cluster"`
	VisualProfile     VisualProfile     `json:"visual_profile"`
	MotionProfile     MotionProfile     `json:"motion_profile"`
	PacingProfile     PacingProfile     `json:"pacing_profile"`
	AudioProfile      AudioProfile      `json:"audio_profile"`
	TrendTokens       TrendTokenBlock   `json:"trend_tokens"`
	VariationStrategy VariationStrategy `json:"variation_strategy" jsonschema:"enum=vary_seed_image,enum=vary_motion_parameters,enum=vary_text_prompt"`
	GenerationHints   GenerationHints   `json:"generation_hints"`
}

type VisualProfile struct {
	VisualComplexity string  `json:"visual_complexity" jsonschema:"enum=high,enum=medium,enum=low"`
	DetailLevel      string  `json:"detail_level" jsonschema:"enum=detailed,enum=simplified"`
	AvgVisualDensity float64 `json:"avg_visual_density"`
}

type MotionProfile struct {
	CameraMovement  string  `json:"camera_movement" jsonschema:"enum=dynamic,enum=moderate,enum=static"`
	MotionIntensity int     `json:"motion_intensity" jsonschema:"description=Average motion on a 0-10 scale"`
	MotionRange     string  `json:"motion_range" jsonschema:"description=Minimum and maximum motion in the cluster"`
	AvgMotion       float64 `json:"avg_motion"`
}

type PacingProfile struct {
	Pacing        string `json:"pacing" jsonschema:"enum=fast,enum=medium,enum=slow"`
	CutsPerMinute int    `json:"cuts_per_minute"`
	CutRateRange  string `json:"cut_rate_range"`
}

type AudioProfile struct {
	VolumeLevel  string  `json:"volume_level" jsonschema:"enum=high,enum=medium,enum=low"`
	DynamicRange string  `json:"dynamic_range" jsonschema:"enum=high,enum=medium,enum=low"`
	AvgRMS       float64 `json:"avg_rms"`
	RMSVariation float64 `json:"rms_variation"`
}

type TrendTokenBlock struct {
	Enabled             bool     `json:"enabled"`
	Tokens              []string `json:"tokens" jsonschema:"maxItems=3"`
	UsageNote           string   `json:"usage_note"`
	ApplicationStrategy string   `json:"application_strategy"`
}

type GenerationHints struct {
	Approach Approach `json:"approach"`
	Note     string   `json:"note"`
}

type specRequest struct {
	Approach Approach `validate:"required,oneof=text-driven image-conditioned motion-focused"`
	Tokens   []string `validate:"max=3,unique,dive,required"`
}

// BuildSpec derives a GenerationSpec from cluster statistics, an approach and up to three
// trend tokens. The result depends only on its inputs.
func BuildSpec(stats ClusterStats, approach Approach, tokens TrendTokens) (GenerationSpec, error) {
	if approach == "" {
		return GenerationSpec{}, ErrApproachRequired
	}
	tokens = NewTrendTokens(tokens...)
	if err := validate.Struct(specRequest{Approach: approach, Tokens: tokens}); err != nil {
		return GenerationSpec{}, fmt.Errorf("%w: %v", ErrInvalidSpecRequest, err)
	}

	return GenerationSpec{
		ClusterID:  stats.Cluster,
		Approach:   approach,
		VideoCount: stats.Count,
		VisualProfile: VisualProfile{
			VisualComplexity: tier(stats.AvgVisualDensity, 0.6, 0.3, "high", "medium", "low"),
			DetailLevel:      pick(stats.AvgVisualDensity > 0.5, "detailed", "simplified"),
			AvgVisualDensity: round3(stats.AvgVisualDensity),
		},
		MotionProfile: MotionProfile{
			CameraMovement:  tier(stats.AvgMotion, 0.6, 0.3, "dynamic", "moderate", "static"),
			MotionIntensity: roundInt(stats.AvgMotion * 10),
			MotionRange:     fmt.Sprintf("%.2f-%.2f", stats.MinMotion, stats.MaxMotion),
			AvgMotion:       round3(stats.AvgMotion),
		},
		PacingProfile: PacingProfile{
			Pacing:        tier(stats.AvgCutRate, 120, 60, "fast", "medium", "slow"),
			CutsPerMinute: roundInt(stats.AvgCutRate),
			CutRateRange:  fmt.Sprintf("%d-%d", roundInt(stats.MinCutRate), roundInt(stats.MaxCutRate)),
		},
		AudioProfile: AudioProfile{
			VolumeLevel:  tier(stats.AvgAudioRMSMean, 0.5, 0.25, "high", "medium", "low"),
			DynamicRange: tier(stats.AvgAudioRMSStd, 0.3, 0.15, "high", "medium", "low"),
			AvgRMS:       round3(stats.AvgAudioRMSMean),
			RMSVariation: round3(stats.AvgAudioRMSStd),
		},
		TrendTokens: TrendTokenBlock{
			Enabled:             len(tokens) > 0,
			Tokens:              []string(tokens),
			UsageNote:           trendTokenUsageNote,
			ApplicationStrategy: trendTokenApplicationStrategy,
		},
		VariationStrategy: variationStrategies[approach],
		GenerationHints: GenerationHints{
			Approach: approach,
			Note:     approachNotes[approach],
		},
	}, nil
}

// tier maps v to high when v > hi, mid when v > lo, and low otherwise
func tier(v, hi, lo float64, high, mid, low string) string {
	switch {
	case v > hi:
		return high
	case v > lo:
		return mid
	}
	return low
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

// roundInt rounds halves up, e.g. 2.5 -> 3 and -2.5 -> -2
func roundInt(v float64) int {
	return int(math.Floor(v + 0.5))
}

func round3(v float64) float64 {
	return math.Floor(v*1000+0.5) / 1000
}
