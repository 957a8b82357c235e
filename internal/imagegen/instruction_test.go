package imagegen

import (
	"fmt"
	"strings"
	"testing"

	"dreamtown/internal/domain/jsoncfg"
)

func TestBuildPromptFountainScenario(t *testing.T) {
	opts := jsoncfg.GenerationOptions{
		FreeText: "親子で遊べる噴水広場",
		Mode:     jsoncfg.ModeFaithful,
		Building: jsoncfg.BuildingFountain,
	}

	got := BuildPrompt(opts, "")

	if !strings.HasPrefix(got, sceneAnchor) {
		t.Fatalf("prompt does not start with scene anchor: %s", got)
	}
	if !strings.Contains(got, buildingInstructions[jsoncfg.BuildingFountain]) {
		t.Fatalf("prompt missing fountain instruction: %s", got)
	}
	if !strings.Contains(got, fmt.Sprintf("at least %d people", CrowdMinimum)) {
		t.Fatalf("prompt missing crowd minimum: %s", got)
	}
	if !strings.HasSuffix(got, "親子で遊べる噴水広場") {
		t.Fatalf("prompt does not end with free text: %s", got)
	}
}

func TestBuildPromptContainsBuildingInstructionVerbatim(t *testing.T) {
	for _, mode := range []jsoncfg.Mode{jsoncfg.ModeFaithful, jsoncfg.ModeModernized, jsoncfg.ModeStyled} {
		for building, instruction := range buildingInstructions {
			opts := jsoncfg.GenerationOptions{Mode: mode, Building: building, Style: jsoncfg.StyleAnime}
			got := BuildPrompt(opts, "")
			if !strings.Contains(got, instruction) {
				t.Fatalf("mode %s building %s: prompt missing instruction\n%s", mode, building, got)
			}
		}
	}
}

func TestBuildPromptOtherBuildingSubstitutes(t *testing.T) {
	opts := jsoncfg.GenerationOptions{
		Mode:          jsoncfg.ModeFaithful,
		Building:      jsoncfg.BuildingOther,
		OtherBuilding: "ミニ動物園",
	}

	got := BuildPrompt(opts, "")

	if !strings.Contains(got, "ミニ動物園") {
		t.Fatalf("prompt missing other building text: %s", got)
	}
	for building, instruction := range buildingInstructions {
		if strings.Contains(got, instruction) {
			t.Fatalf("prompt unexpectedly contains %s instruction: %s", building, got)
		}
	}
}

func TestBuildPromptDropsBlankSegments(t *testing.T) {
	cases := []jsoncfg.GenerationOptions{
		{Mode: jsoncfg.ModeFaithful, Building: jsoncfg.BuildingCafe},
		{Mode: jsoncfg.ModeFaithful, Building: jsoncfg.BuildingCafe, FreeText: "   "},
		{Mode: jsoncfg.ModeStyled, Building: jsoncfg.BuildingCarousel, Style: "unknown", Lighting: "unknown"},
		{Mode: jsoncfg.ModeModernized, Building: jsoncfg.BuildingOther, OtherBuilding: "屋台村,", FreeText: "夜市,"},
		{Mode: jsoncfg.ModeCreative, FreeText: "空に浮かぶ島"},
	}
	for i, opts := range cases {
		got := BuildPrompt(opts, "")
		if got == "" {
			t.Fatalf("case %d: empty prompt", i)
		}
		if strings.Contains(got, Separator+Separator) || strings.Contains(got, ","+Separator) {
			t.Fatalf("case %d: consecutive separators in %q", i, got)
		}
		if strings.HasSuffix(got, Separator) || strings.HasPrefix(got, Separator) {
			t.Fatalf("case %d: dangling separator in %q", i, got)
		}
	}
}

func TestBuildPromptAutoPromptKeepsScaffold(t *testing.T) {
	expanded := "Remove the flower bed in the center of the plaza.\nBuild a petting zoo."
	opts := jsoncfg.GenerationOptions{
		Mode:       jsoncfg.ModeFaithful,
		Building:   jsoncfg.BuildingCarousel,
		FreeText:   "動物とふれあえる場所",
		AutoPrompt: true,
	}

	got := BuildPrompt(opts, expanded)

	for _, want := range []string{sceneAnchor, modificationScope, buildingInstructions[jsoncfg.BuildingCarousel], crowdClause} {
		if !strings.Contains(got, want) {
			t.Fatalf("auto prompt lost scaffold segment %q:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, "Build a petting zoo.") {
		t.Fatalf("auto prompt should end with the completion: %s", got)
	}
	if strings.Contains(got, "動物とふれあえる場所") {
		t.Fatalf("completion should replace the raw free text: %s", got)
	}
}

func TestBuildPromptCreativeIgnoresBuilding(t *testing.T) {
	opts := jsoncfg.GenerationOptions{
		Mode:       jsoncfg.ModeCreative,
		Building:   jsoncfg.BuildingFountain,
		FreeText:   "光る巨大なたんぽぽ",
		AutoPrompt: true,
	}

	got := BuildPrompt(opts, "should be ignored")

	if !strings.HasPrefix(got, creativeTemplate) {
		t.Fatalf("creative prompt should start with template: %s", got)
	}
	if !strings.HasSuffix(got, "User request: 光る巨大なたんぽぽ") {
		t.Fatalf("creative prompt should end with user request: %s", got)
	}
	for _, unwanted := range []string{buildingInstructions[jsoncfg.BuildingFountain], crowdClause, "should be ignored"} {
		if strings.Contains(got, unwanted) {
			t.Fatalf("creative prompt contains %q: %s", unwanted, got)
		}
	}
}

func TestBuildPromptStyledUsesLookupTags(t *testing.T) {
	opts := jsoncfg.GenerationOptions{
		Mode:        jsoncfg.ModeStyled,
		Building:    jsoncfg.BuildingCafe,
		Style:       "水彩",
		Lighting:    "夕暮れ",
		Composition: "俯瞰",
	}
	got := BuildPrompt(opts, "")
	for _, want := range []string{
		styleTags[jsoncfg.StyleWatercolor],
		lightingTags[jsoncfg.LightingSunset],
		compositionTags[jsoncfg.CompositionAerial],
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("styled prompt missing %q: %s", want, got)
		}
	}

	fallback := BuildPrompt(jsoncfg.GenerationOptions{Mode: jsoncfg.ModeStyled, Style: "oil", Lighting: "neon"}, "")
	if !strings.Contains(fallback, styleTags[DefaultStyle]+", "+lightingTags[DefaultLighting]) {
		t.Fatalf("styled prompt should fall back to default tags: %s", fallback)
	}
}

func TestAssembleCreativeIgnoresOtherBuilding(t *testing.T) {
	opts := jsoncfg.GenerationOptions{
		Mode:     jsoncfg.ModeCreative,
		Building: jsoncfg.BuildingOther,
		FreeText: "空に浮かぶ庭",
	}

	req, err := Assemble(opts, "")
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if req.Target != TargetDirect {
		t.Fatalf("target = %s, want %s", req.Target, TargetDirect)
	}
	if !strings.HasSuffix(req.Prompt, "User request: 空に浮かぶ庭") {
		t.Fatalf("creative prompt should end with user request: %s", req.Prompt)
	}
}

func TestBuildPromptKeepsFreeTextVerbatim(t *testing.T) {
	tests := []struct {
		name     string
		freeText string
	}{
		{name: "trailing ideographic comma", freeText: "噴水と、ベンチ、"},
		{name: "trailing ascii comma", freeText: "bench,"},
		{name: "full width letters", freeText: "ＬＥＤで光る広場"},
		{name: "half width katakana", freeText: "ｶﾌｪテラス"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := jsoncfg.GenerationOptions{
				Mode:     jsoncfg.ModeFaithful,
				Building: jsoncfg.BuildingFountain,
				FreeText: tc.freeText,
			}
			got := BuildPrompt(opts, "")
			if !strings.HasSuffix(got, Separator+tc.freeText) {
				t.Fatalf("prompt does not end with the literal free text %q:\n%s", tc.freeText, got)
			}
		})
	}
}
