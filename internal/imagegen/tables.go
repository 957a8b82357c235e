package imagegen

import (
	"fmt"

	"dreamtown/internal/domain/jsoncfg"
)

// Separator joins prompt segments.
const Separator = ",\n"

const (
	CrowdMinimum = 20
	CrowdMaximum = 40
)

const sceneAnchor = "A photograph of the existing station-front plaza and rotary, " +
	"with every surrounding building, road, tree, sign and the sky left exactly as in the original photo"

const modificationScope = "Only the central area of the plaza is changed; " +
	"everything outside the central area stays unchanged"

var crowdClause = fmt.Sprintf("The plaza is lively and full of people: at least %d people (%d to %d people) "+
	"walking, sitting and enjoying the space, families and friends clearly visible; "+
	"never an empty, deserted or lifeless scene", CrowdMinimum, CrowdMinimum, CrowdMaximum)

var buildingInstructions = map[jsoncfg.Building]string{
	jsoncfg.BuildingFountain: "Remove the flower bed in the center and build a large circular stone fountain " +
		"with tiered water jets and a shallow basin where children can play",
	jsoncfg.BuildingCarousel: "Remove the flower bed in the center and install a colorful vintage carousel " +
		"with ornate horses, warm lights and a striped canopy",
	jsoncfg.BuildingCafe: "Remove the flower bed in the center and construct a small open-air cafe pavilion " +
		"with a glass roof, wooden terrace, outdoor tables and parasols",
}

// fixed style/lighting/composition tags of the literal modes
var modeTags = map[jsoncfg.Mode]string{
	jsoncfg.ModeFaithful:   "photorealistic, high detail, natural daylight, eye-level wide shot, consistent perspective with the original photo",
	jsoncfg.ModeModernized: "photorealistic, modern architecture, clean lines, bright daylight, eye-level wide shot, consistent perspective with the original photo",
}

var styleTags = map[jsoncfg.Style]string{
	jsoncfg.StylePhotorealistic: "photorealistic, high detail, sharp focus, realistic textures",
	jsoncfg.StyleAnime:          "anime style, cel shading, vivid colors, clean line art",
	jsoncfg.StyleWatercolor:     "watercolor painting, soft washes, paper texture, gentle color bleeding",
}

var lightingTags = map[jsoncfg.Lighting]string{
	jsoncfg.LightingNatural:  "natural daylight, soft shadows",
	jsoncfg.LightingBacklit:  "backlit, rim lighting, glowing edges, sun behind the scene",
	jsoncfg.LightingDramatic: "dramatic lighting, strong contrast, deep shadows",
	jsoncfg.LightingSunset:   "golden hour sunset light, warm tones, long shadows",
	jsoncfg.LightingNight:    "night scene, warm street lights, illuminated installation",
}

var compositionTags = map[jsoncfg.Composition]string{
	jsoncfg.CompositionEyeLevel:  "eye-level view",
	jsoncfg.CompositionAerial:    "high-angle aerial view",
	jsoncfg.CompositionWideAngle: "wide-angle view",
}

var fixedParameters = map[jsoncfg.Mode]Parameters{
	jsoncfg.ModeFaithful:   {Strength: 0.60, Steps: 50, Guidance: 7.5},
	jsoncfg.ModeModernized: {Strength: 0.80, Steps: 50, Guidance: 8.0},
}

// parameterTable is indexed by style row then lighting column.
var parameterTable = map[jsoncfg.Style]map[jsoncfg.Lighting]Parameters{
	jsoncfg.StylePhotorealistic: {
		jsoncfg.LightingNatural:  {Strength: 0.75, Steps: 40, Guidance: 7.5},
		jsoncfg.LightingBacklit:  {Strength: 0.75, Steps: 40, Guidance: 8.5},
		jsoncfg.LightingDramatic: {Strength: 0.80, Steps: 45, Guidance: 9.0},
		jsoncfg.LightingSunset:   {Strength: 0.75, Steps: 40, Guidance: 7.5},
		jsoncfg.LightingNight:    {Strength: 0.80, Steps: 45, Guidance: 8.0},
	},
	jsoncfg.StyleAnime: {
		jsoncfg.LightingNatural:  {Strength: 0.85, Steps: 35, Guidance: 9.0},
		jsoncfg.LightingBacklit:  {Strength: 0.85, Steps: 35, Guidance: 10.0},
		jsoncfg.LightingDramatic: {Strength: 0.90, Steps: 45, Guidance: 10.5},
		jsoncfg.LightingSunset:   {Strength: 0.85, Steps: 35, Guidance: 9.0},
		jsoncfg.LightingNight:    {Strength: 0.90, Steps: 40, Guidance: 9.5},
	},
	jsoncfg.StyleWatercolor: {
		jsoncfg.LightingNatural:  {Strength: 0.85, Steps: 35, Guidance: 8.0},
		jsoncfg.LightingBacklit:  {Strength: 0.85, Steps: 35, Guidance: 9.0},
		jsoncfg.LightingDramatic: {Strength: 0.90, Steps: 45, Guidance: 9.0},
		jsoncfg.LightingSunset:   {Strength: 0.85, Steps: 35, Guidance: 8.0},
		jsoncfg.LightingNight:    {Strength: 0.90, Steps: 38, Guidance: 8.5},
	},
}

const (
	DefaultStyle    = jsoncfg.StylePhotorealistic
	DefaultLighting = jsoncfg.LightingNatural
)

const (
	BacklitGuidanceCap  = 7.0
	DramaticStepCeiling = 40
	MinSteps            = 25
)

const baseNegative = "deformed, distorted anatomy, extra limbs, bad hands, mutated faces, " +
	"watermark, text, signature, logo, overexposed, underexposed, blown highlights, blurry, low quality"

var negativePrompts = map[jsoncfg.Style]string{
	jsoncfg.StylePhotorealistic: "cartoon, anime, illustration, painting, 3d render, " + baseNegative,
	jsoncfg.StyleAnime:          "photograph, photorealistic skin, 3d render, muddy colors, " + baseNegative,
	jsoncfg.StyleWatercolor:     "photograph, 3d render, harsh digital edges, flat vector art, " + baseNegative,
}

const creativeTemplate = `Keep the entire background of this photo exactly as it is: the station building, the rotary, the roads, the trees, the signs and the sky must not change in shape, color or position.
Replace only the central area of the plaza with a single creative, imaginative, non-literal art installation that interprets the request below freely, as a surprising landmark rather than an ordinary building.
Keep the scene calm and uncluttered: minimize human presence, at most a few small distant figures, no crowds, nobody standing in front of the installation.
Photorealistic rendering, natural daylight, the installation blends into the real lighting and perspective of the photo.`

// AutoPromptInstruction is the system instruction given to the
// text-completion collaborator when auto-prompt is enabled.
var AutoPromptInstruction = fmt.Sprintf(`You are an inpainting prompt generator for a photo of a real station-front plaza.
The visitor describes, in Japanese, what they would like to see in the center of the plaza. Rewrite it as an English image-editing instruction.

Rules:
1. The first line must be exactly: "Remove the flower bed in the center of the plaza."
2. Use imperative construction verbs only (build, install, construct, place, plant, add). Never describe the existing surroundings and never ask to change anything outside the center.
3. Describe one coherent installation with concrete materials, colors and scale relative to people.
4. Always include a population line with explicit numbers: "Show at least %d people (%d to %d people) using and enjoying the space."
5. Never produce an empty, deserted or lifeless scene.
6. End with a section that starts with "Negative constraints:" listing what must not appear (text, watermarks, distorted people, changes to surrounding buildings).
7. Output plain text only, no markdown, no quotes, no explanations.`, CrowdMinimum, CrowdMinimum, CrowdMaximum)
