package imagegen

import (
	"dreamtown/internal/domain/jsoncfg"
)

// SelectParameters returns the diffusion parameters for a mode. Literal modes
// use fixed values; styled mode looks up style × lighting, falling back to the
// photorealistic row and the natural-light column, then applies the safety
// tweaks. Creative mode has no parameters and yields the zero value.
func SelectParameters(mode jsoncfg.Mode, style jsoncfg.Style, lighting jsoncfg.Lighting) Parameters {
	switch mode {
	case jsoncfg.ModeCreative:
		return Parameters{}
	case jsoncfg.ModeStyled:
		row, ok := parameterTable[style]
		if !ok {
			row = parameterTable[DefaultStyle]
		}
		p, ok := row[lighting]
		if !ok {
			p = row[DefaultLighting]
		}
		return ApplySafetyTweaks(p, lighting)
	default:
		p, ok := fixedParameters[mode]
		if !ok {
			p = fixedParameters[jsoncfg.ModeFaithful]
		}
		return clampRanges(p)
	}
}

// ApplySafetyTweaks clamps to the vendor ranges, then caps guidance for
// backlit scenes and steps for dramatic lighting. Every step is a cap or a
// floor, so applying it twice equals applying it once.
func ApplySafetyTweaks(p Parameters, lighting jsoncfg.Lighting) Parameters {
	p = clampRanges(p)
	switch lighting {
	case jsoncfg.LightingBacklit:
		if p.Guidance > BacklitGuidanceCap {
			p.Guidance = BacklitGuidanceCap
		}
	case jsoncfg.LightingDramatic:
		if p.Steps > DramaticStepCeiling {
			p.Steps = DramaticStepCeiling
		}
	}
	return p
}

func clampRanges(p Parameters) Parameters {
	if p.Strength < 0 {
		p.Strength = 0
	}
	if p.Strength > 1 {
		p.Strength = 1
	}
	if p.Steps < MinSteps {
		p.Steps = MinSteps
	}
	if p.Guidance <= 0 {
		p.Guidance = fixedParameters[jsoncfg.ModeFaithful].Guidance
	}
	return p
}

// SelectNegativePrompt returns the exclusion list for a style family,
// falling back to the photorealistic list.
func SelectNegativePrompt(style jsoncfg.Style) string {
	if neg, ok := negativePrompts[style]; ok {
		return neg
	}
	return negativePrompts[DefaultStyle]
}
