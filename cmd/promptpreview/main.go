package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"dreamtown/internal/domain/jsoncfg"
	"dreamtown/internal/generation"
	"dreamtown/internal/infra"
)

func main() {
	var (
		modeFlag        string
		buildingFlag    string
		otherFlag       string
		textFlag        string
		styleFlag       string
		lightingFlag    string
		compositionFlag string
		photoFlag       string
		localeFlag      string
		autoFlag        bool
		jsonFlag        bool
	)
	flag.StringVar(&modeFlag, "mode", string(jsoncfg.ModeFaithful), "faithful, modernized, styled or creative")
	flag.StringVar(&buildingFlag, "building", string(jsoncfg.BuildingFountain), "fountain, carousel, cafe or other")
	flag.StringVar(&otherFlag, "other", "", "free-text building when -building=other")
	flag.StringVar(&textFlag, "text", "", "visitor free text")
	flag.StringVar(&styleFlag, "style", "", "style for styled mode")
	flag.StringVar(&lightingFlag, "lighting", "", "lighting for styled mode")
	flag.StringVar(&compositionFlag, "composition", "", "composition for styled mode")
	flag.StringVar(&photoFlag, "photo", jsoncfg.DefaultPhotoID, "base photo id")
	flag.StringVar(&localeFlag, "locale", "ja", "visitor locale passed to the expander")
	flag.BoolVar(&autoFlag, "auto", false, "expand -text with the configured PROMPT_PROVIDER")
	flag.BoolVar(&jsonFlag, "json", false, "print the preview as JSON")
	flag.Parse()

	opts := jsoncfg.GenerationOptions{
		PhotoID:       photoFlag,
		FreeText:      textFlag,
		Mode:          jsoncfg.Mode(modeFlag),
		Building:      jsoncfg.Building(buildingFlag),
		OtherBuilding: otherFlag,
		Style:         jsoncfg.Style(styleFlag),
		Lighting:      jsoncfg.Lighting(lightingFlag),
		Composition:   jsoncfg.Composition(compositionFlag),
		AutoPrompt:    autoFlag,
	}
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	expanded := ""
	if opts.AutoPrompt {
		_ = godotenv.Load()
		cfg, err := infra.LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		logger := infra.NewLogger("cli").With().Str("cmd", "promptpreview").Str("provider", cfg.PromptProvider).Logger()
		expander, err := infra.NewExpander(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "prompt provider: %v\n", err)
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		res, err := expander.Expand(ctx, generation.ExpandRequestFor(opts, localeFlag))
		cancel()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		expanded = strings.TrimSpace(res.Text)
		if expanded == "" {
			fmt.Fprintln(os.Stderr, "prompt generation failed: empty completion")
			os.Exit(1)
		}
	}

	preview, err := generation.BuildPreview(opts, expanded)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(preview)
		return
	}
	fmt.Printf("target: %s\nmode: %s\n\n%s\n", preview.Target, preview.Mode, preview.Prompt)
	if preview.NegativePrompt != "" {
		fmt.Printf("\nnegative: %s\n", preview.NegativePrompt)
	}
	if p := preview.Parameters; p != nil {
		fmt.Printf("\nstrength=%g steps=%d guidance=%g\n", p.Strength, p.Steps, p.Guidance)
	}
}
