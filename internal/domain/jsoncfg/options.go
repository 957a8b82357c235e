package jsoncfg

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"dreamtown/internal/domain"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/width"
)

// Mode selects how the assembler phrases the prompt and which image
// collaborator serves the request.
type Mode string

const (
	ModeFaithful   Mode = "faithful"
	ModeModernized Mode = "modernized"
	ModeStyled     Mode = "styled"
	ModeCreative   Mode = "creative"
)

// Building is the installation placed in the editable center of the photo.
type Building string

const (
	BuildingFountain Building = "fountain"
	BuildingCarousel Building = "carousel"
	BuildingCafe     Building = "cafe"
	BuildingOther    Building = "other"
)

type Style string

const (
	StylePhotorealistic Style = "photorealistic"
	StyleAnime          Style = "anime"
	StyleWatercolor     Style = "watercolor"
)

type Lighting string

const (
	LightingNatural  Lighting = "natural"
	LightingBacklit  Lighting = "backlit"
	LightingDramatic Lighting = "dramatic"
	LightingSunset   Lighting = "sunset"
	LightingNight    Lighting = "night"
)

type Composition string

const (
	CompositionEyeLevel  Composition = "eye_level"
	CompositionAerial    Composition = "aerial"
	CompositionWideAngle Composition = "wide_angle"
)

const (
	// MaxFreeTextRunes caps the visitor's free-form description.
	MaxFreeTextRunes = 100
	// MaxOtherBuildingRunes caps the free-text building used with BuildingOther.
	MaxOtherBuildingRunes = 30
	// DefaultPhotoID is the base photo used when the visitor did not pick one.
	DefaultPhotoID = "plaza"
)

// GenerationOptions captures the visitor's choices for one generation attempt.
type GenerationOptions struct {
	PhotoID       string      `json:"photo_id" validate:"max=64"`
	FreeText      string      `json:"free_text" validate:"max=100"`
	Mode          Mode        `json:"mode" validate:"oneof=faithful modernized styled creative"`
	Building      Building    `json:"building" validate:"oneof=fountain carousel cafe other"`
	OtherBuilding string      `json:"other_building,omitempty" validate:"required_if=Building other,max=30"`
	Style         Style       `json:"style,omitempty"`
	Lighting      Lighting    `json:"lighting,omitempty"`
	Composition   Composition `json:"composition,omitempty"`
	AutoPrompt    bool        `json:"auto_prompt"`
}

var modeAliases = map[string]Mode{
	"faithful":       ModeFaithful,
	"literal":        ModeFaithful,
	"忠実":             ModeFaithful,
	"そのまま":           ModeFaithful,
	"modernized":     ModeModernized,
	"modern":         ModeModernized,
	"モダン":            ModeModernized,
	"styled":         ModeStyled,
	"style":          ModeStyled,
	"スタイル":           ModeStyled,
	"creative":       ModeCreative,
	"image_centered": ModeCreative,
	"クリエイティブ":        ModeCreative,
	"画像中心":           ModeCreative,
}

var buildingAliases = map[string]Building{
	"fountain": BuildingFountain,
	"噴水":       BuildingFountain,
	"carousel": BuildingCarousel,
	"メリーゴーランド": BuildingCarousel,
	"回転木馬":     BuildingCarousel,
	"cafe":     BuildingCafe,
	"café":     BuildingCafe,
	"カフェ":      BuildingCafe,
	"other":    BuildingOther,
	"その他":      BuildingOther,
}

var styleAliases = map[string]Style{
	"photorealistic": StylePhotorealistic,
	"realistic":      StylePhotorealistic,
	"写実的":            StylePhotorealistic,
	"リアル":            StylePhotorealistic,
	"anime":          StyleAnime,
	"アニメ":            StyleAnime,
	"アニメ調":           StyleAnime,
	"watercolor":     StyleWatercolor,
	"水彩":             StyleWatercolor,
	"水彩画":            StyleWatercolor,
}

var lightingAliases = map[string]Lighting{
	"natural":   LightingNatural,
	"自然光":       LightingNatural,
	"backlit":   LightingBacklit,
	"rim":       LightingBacklit,
	"逆光":        LightingBacklit,
	"dramatic":  LightingDramatic,
	"ドラマチック":    LightingDramatic,
	"ドラマチックな照明": LightingDramatic,
	"sunset":    LightingSunset,
	"夕焼け":       LightingSunset,
	"夕暮れ":       LightingSunset,
	"night":     LightingNight,
	"夜":         LightingNight,
	"夜景":        LightingNight,
}

var compositionAliases = map[string]Composition{
	"eye_level":  CompositionEyeLevel,
	"目線":         CompositionEyeLevel,
	"アイレベル":      CompositionEyeLevel,
	"aerial":     CompositionAerial,
	"俯瞰":         CompositionAerial,
	"wide_angle": CompositionWideAngle,
	"wide":       CompositionWideAngle,
	"広角":         CompositionWideAngle,
}

func aliasKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(width.Fold.String(raw)))
	key = strings.ReplaceAll(key, "-", "_")
	return strings.ReplaceAll(key, " ", "_")
}

// ParseMode resolves canonical names and the kiosk's Japanese labels.
func ParseMode(raw string) (Mode, bool) {
	m, ok := modeAliases[aliasKey(raw)]
	return m, ok
}

func ParseBuilding(raw string) (Building, bool) {
	b, ok := buildingAliases[aliasKey(raw)]
	return b, ok
}

func ParseStyle(raw string) (Style, bool) {
	s, ok := styleAliases[aliasKey(raw)]
	return s, ok
}

func ParseLighting(raw string) (Lighting, bool) {
	l, ok := lightingAliases[aliasKey(raw)]
	return l, ok
}

func ParseComposition(raw string) (Composition, bool) {
	c, ok := compositionAliases[aliasKey(raw)]
	return c, ok
}

// FoldText trims the input and folds full-width ASCII. It is for short labels
// such as the display name; free text is stored as typed.
func FoldText(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}

// Normalize canonicalizes enum spellings and applies defaults. Creative mode
// always clears AutoPrompt and resets the building, neither of which its
// template uses.
// Unknown style, lighting or composition values are kept as-is so the
// assembler's fallback rows apply.
func (o *GenerationOptions) Normalize() {
	if o == nil {
		return
	}
	o.PhotoID = strings.TrimSpace(o.PhotoID)
	if o.PhotoID == "" {
		o.PhotoID = DefaultPhotoID
	}
	o.FreeText = strings.TrimSpace(o.FreeText)
	o.OtherBuilding = strings.TrimSpace(o.OtherBuilding)

	if m, ok := ParseMode(string(o.Mode)); ok {
		o.Mode = m
	} else if strings.TrimSpace(string(o.Mode)) == "" {
		o.Mode = ModeFaithful
	}
	if b, ok := ParseBuilding(string(o.Building)); ok {
		o.Building = b
	} else if strings.TrimSpace(string(o.Building)) == "" {
		o.Building = BuildingFountain
	}
	if s, ok := ParseStyle(string(o.Style)); ok {
		o.Style = s
	}
	if l, ok := ParseLighting(string(o.Lighting)); ok {
		o.Lighting = l
	}
	if c, ok := ParseComposition(string(o.Composition)); ok {
		o.Composition = c
	}
	if o.Building != BuildingOther {
		o.OtherBuilding = ""
	}
	if o.Mode == ModeCreative {
		o.AutoPrompt = false
		o.Building = BuildingFountain
		o.OtherBuilding = ""
	}
}

// AutoPromptLocked reports whether the auto-prompt toggle must be rendered
// unchecked and disabled.
func (o GenerationOptions) AutoPromptLocked() bool {
	return o.Mode == ModeCreative
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate ensures the options satisfy the form contract. It expects
// normalized input.
func (o GenerationOptions) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidOptions, describeValidation(err))
	}
	if o.Mode == ModeCreative && o.AutoPrompt {
		return fmt.Errorf("%w: auto_prompt is unavailable in creative mode", domain.ErrInvalidOptions)
	}
	if strings.TrimSpace(o.FreeText) == "" {
		switch {
		case o.Mode == ModeCreative:
			return fmt.Errorf("%w: free_text is required in creative mode", domain.ErrInvalidOptions)
		case o.AutoPrompt:
			return fmt.Errorf("%w: free_text is required when auto_prompt is enabled", domain.ErrInvalidOptions)
		}
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "required_if":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
