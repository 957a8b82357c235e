package imagegen

import (
	"errors"
	"testing"

	"dreamtown/internal/domain"
	"dreamtown/internal/domain/jsoncfg"
)

func TestSelectParametersFixedModes(t *testing.T) {
	if got := SelectParameters(jsoncfg.ModeFaithful, "", ""); got != fixedParameters[jsoncfg.ModeFaithful] {
		t.Fatalf("faithful = %+v", got)
	}
	if got := SelectParameters(jsoncfg.ModeModernized, jsoncfg.StyleAnime, jsoncfg.LightingBacklit); got != fixedParameters[jsoncfg.ModeModernized] {
		t.Fatalf("modernized should ignore style/lighting, got %+v", got)
	}
	if got := SelectParameters(jsoncfg.ModeCreative, "", ""); !got.IsZero() {
		t.Fatalf("creative = %+v, want zero", got)
	}
}

func TestSelectParametersFallbacks(t *testing.T) {
	want := SelectParameters(jsoncfg.ModeStyled, jsoncfg.StylePhotorealistic, jsoncfg.LightingNatural)
	if got := SelectParameters(jsoncfg.ModeStyled, "oil painting", jsoncfg.LightingNatural); got != want {
		t.Fatalf("unknown style = %+v, want %+v", got, want)
	}
	if got := SelectParameters(jsoncfg.ModeStyled, jsoncfg.StylePhotorealistic, "neon"); got != want {
		t.Fatalf("unknown lighting = %+v, want %+v", got, want)
	}
	anime := SelectParameters(jsoncfg.ModeStyled, jsoncfg.StyleAnime, "neon")
	if anime != parameterTable[jsoncfg.StyleAnime][jsoncfg.LightingNatural] {
		t.Fatalf("unknown lighting should use natural column of anime row, got %+v", anime)
	}
}

func TestSelectParametersBacklitCapsGuidance(t *testing.T) {
	for style := range parameterTable {
		got := SelectParameters(jsoncfg.ModeStyled, style, jsoncfg.LightingBacklit)
		if got.Guidance > BacklitGuidanceCap {
			t.Fatalf("style %s backlit guidance = %v, want <= %v", style, got.Guidance, BacklitGuidanceCap)
		}
	}
	tweaked := ApplySafetyTweaks(Parameters{Strength: 0.5, Steps: 30, Guidance: 42}, jsoncfg.LightingBacklit)
	if tweaked.Guidance != BacklitGuidanceCap {
		t.Fatalf("guidance = %v, want %v", tweaked.Guidance, BacklitGuidanceCap)
	}
}

func TestSelectParametersDramaticReducesSteps(t *testing.T) {
	got := SelectParameters(jsoncfg.ModeStyled, jsoncfg.StylePhotorealistic, jsoncfg.LightingDramatic)
	table := parameterTable[jsoncfg.StylePhotorealistic][jsoncfg.LightingDramatic]
	if got.Steps != table.Steps-5 {
		t.Fatalf("dramatic steps = %d, want %d", got.Steps, table.Steps-5)
	}
	floored := ApplySafetyTweaks(Parameters{Strength: 0.5, Steps: 3, Guidance: 7}, jsoncfg.LightingDramatic)
	if floored.Steps != MinSteps {
		t.Fatalf("steps floor = %d, want %d", floored.Steps, MinSteps)
	}
}

func TestApplySafetyTweaksIdempotent(t *testing.T) {
	inputs := []Parameters{
		{Strength: 0.75, Steps: 45, Guidance: 9.0},
		{Strength: 1.4, Steps: 10, Guidance: 12},
		{Strength: -0.2, Steps: 80, Guidance: 0},
	}
	lightings := []jsoncfg.Lighting{
		jsoncfg.LightingNatural, jsoncfg.LightingBacklit, jsoncfg.LightingDramatic,
		jsoncfg.LightingSunset, jsoncfg.LightingNight, "unknown",
	}
	for _, p := range inputs {
		for _, l := range lightings {
			once := ApplySafetyTweaks(p, l)
			twice := ApplySafetyTweaks(once, l)
			if once != twice {
				t.Fatalf("tweak not idempotent for %+v/%s: %+v vs %+v", p, l, once, twice)
			}
			if once.Strength < 0 || once.Strength > 1 || once.Steps <= 0 || once.Guidance <= 0 {
				t.Fatalf("out of range parameters %+v", once)
			}
		}
	}
}

func TestSelectNegativePromptFallback(t *testing.T) {
	if got := SelectNegativePrompt("unknown"); got != negativePrompts[jsoncfg.StylePhotorealistic] {
		t.Fatalf("fallback negative = %q", got)
	}
	if SelectNegativePrompt(jsoncfg.StyleAnime) == SelectNegativePrompt(jsoncfg.StylePhotorealistic) {
		t.Fatal("anime negative prompt should differ from photorealistic")
	}
}

func TestAssemble(t *testing.T) {
	t.Run("inpaint", func(t *testing.T) {
		req, err := Assemble(jsoncfg.GenerationOptions{Mode: "スタイル", Building: "噴水", Style: "アニメ", Lighting: "逆光"}, "")
		if err != nil {
			t.Fatalf("Assemble returned error: %v", err)
		}
		if req.Target != TargetInpaint {
			t.Fatalf("Target = %s, want inpaint", req.Target)
		}
		if req.NegativePrompt != negativePrompts[jsoncfg.StyleAnime] {
			t.Fatalf("NegativePrompt = %q", req.NegativePrompt)
		}
		if req.Parameters.Guidance != BacklitGuidanceCap {
			t.Fatalf("Guidance = %v, want %v", req.Parameters.Guidance, BacklitGuidanceCap)
		}
		if req.PhotoID != jsoncfg.DefaultPhotoID {
			t.Fatalf("PhotoID = %q", req.PhotoID)
		}
	})

	t.Run("creative forces direct target", func(t *testing.T) {
		req, err := Assemble(jsoncfg.GenerationOptions{Mode: jsoncfg.ModeCreative, FreeText: "虹の橋", AutoPrompt: true}, "")
		if err != nil {
			t.Fatalf("Assemble returned error: %v", err)
		}
		if req.Target != TargetDirect || !req.Parameters.IsZero() || req.NegativePrompt != "" {
			t.Fatalf("unexpected creative request %+v", req)
		}
	})

	t.Run("auto prompt without completion", func(t *testing.T) {
		_, err := Assemble(jsoncfg.GenerationOptions{FreeText: "噴水", AutoPrompt: true}, "  ")
		if !errors.Is(err, domain.ErrPromptGeneration) {
			t.Fatalf("err = %v, want ErrPromptGeneration", err)
		}
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := Assemble(jsoncfg.GenerationOptions{Building: jsoncfg.BuildingOther}, "")
		if !errors.Is(err, domain.ErrInvalidOptions) {
			t.Fatalf("err = %v, want ErrInvalidOptions", err)
		}
	})
}
