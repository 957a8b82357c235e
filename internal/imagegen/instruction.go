package imagegen

import (
	"strings"

	"dreamtown/internal/domain/jsoncfg"
)

// BuildPrompt assembles the prompt for one attempt. In the literal modes the
// segments are, in order: scene anchor, modification scope, building
// instruction, style tags, crowd clause and the supplementary text. The
// supplementary text is the auto-prompt completion when AutoPrompt is set and
// expanded is non-blank, the visitor's free text otherwise. Creative mode
// ignores the scaffold and uses its own template.
func BuildPrompt(opts jsoncfg.GenerationOptions, expanded string) string {
	opts.Normalize()
	if opts.Mode == jsoncfg.ModeCreative {
		return buildCreativePrompt(opts.FreeText)
	}
	supplementary := opts.FreeText
	if opts.AutoPrompt && strings.TrimSpace(expanded) != "" {
		supplementary = expanded
	}
	return joinSegments([]string{
		sceneAnchor,
		modificationScope,
		buildingSegment(opts),
		tagSegment(opts),
		crowdClause,
	}, supplementary)
}

func buildCreativePrompt(freeText string) string {
	request := ""
	if text := strings.TrimSpace(freeText); text != "" {
		request = "User request: " + text
	}
	return joinSegments([]string{creativeTemplate}, request)
}

// buildingSegment returns the templated instruction, or the visitor's own
// description untranslated for BuildingOther.
func buildingSegment(opts jsoncfg.GenerationOptions) string {
	if opts.Building == jsoncfg.BuildingOther {
		return opts.OtherBuilding
	}
	return buildingInstructions[opts.Building]
}

func tagSegment(opts jsoncfg.GenerationOptions) string {
	if opts.Mode != jsoncfg.ModeStyled {
		if tags, ok := modeTags[opts.Mode]; ok {
			return tags
		}
		return modeTags[jsoncfg.ModeFaithful]
	}
	style, ok := styleTags[opts.Style]
	if !ok {
		style = styleTags[DefaultStyle]
	}
	lighting, ok := lightingTags[opts.Lighting]
	if !ok {
		lighting = lightingTags[DefaultLighting]
	}
	return joinTags(style, lighting, compositionTags[opts.Composition])
}

func joinTags(tags ...string) string {
	kept := tags[:0]
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, ", ")
}

// joinSegments drops blank segments and strips trailing commas from the
// scaffold so that no two separators ever touch. The visitor's text goes last
// and is kept verbatim apart from surrounding whitespace.
func joinSegments(segments []string, supplementary string) string {
	kept := make([]string, 0, len(segments)+1)
	for _, s := range segments {
		s = strings.TrimSpace(s)
		s = strings.TrimRight(s, ",、")
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		kept = append(kept, s)
	}
	if text := strings.TrimSpace(supplementary); text != "" {
		kept = append(kept, text)
	}
	return strings.Join(kept, Separator)
}
