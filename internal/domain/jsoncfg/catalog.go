package jsoncfg

import (
	"fmt"
	"strings"
)

// NamedOption is one selectable entry of the options form.
type NamedOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var modeLabels = map[Mode]string{
	ModeFaithful:   "忠実に再現",
	ModeModernized: "モダンに再構成",
	ModeStyled:     "スタイルを選ぶ",
	ModeCreative:   "画像中心（クリエイティブ）",
}

var buildingLabels = map[Building]string{
	BuildingFountain: "噴水",
	BuildingCarousel: "メリーゴーランド",
	BuildingCafe:     "カフェ",
	BuildingOther:    "その他",
}

var styleLabels = map[Style]string{
	StylePhotorealistic: "写実的",
	StyleAnime:          "アニメ調",
	StyleWatercolor:     "水彩画",
}

var lightingLabels = map[Lighting]string{
	LightingNatural:  "自然光",
	LightingBacklit:  "逆光",
	LightingDramatic: "ドラマチック",
	LightingSunset:   "夕暮れ",
	LightingNight:    "夜景",
}

var compositionLabels = map[Composition]string{
	CompositionEyeLevel:  "目線の高さ",
	CompositionAerial:    "俯瞰",
	CompositionWideAngle: "広角",
}

func (m Mode) Label() string        { return labelOr(modeLabels[m], string(m)) }
func (b Building) Label() string    { return labelOr(buildingLabels[b], string(b)) }
func (s Style) Label() string       { return labelOr(styleLabels[s], string(s)) }
func (l Lighting) Label() string    { return labelOr(lightingLabels[l], string(l)) }
func (c Composition) Label() string { return labelOr(compositionLabels[c], string(c)) }

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}

func Modes() []NamedOption {
	return named([]Mode{ModeFaithful, ModeModernized, ModeStyled, ModeCreative})
}

func Buildings() []NamedOption {
	return named([]Building{BuildingFountain, BuildingCarousel, BuildingCafe, BuildingOther})
}

func Styles() []NamedOption {
	return named([]Style{StylePhotorealistic, StyleAnime, StyleWatercolor})
}

func Lightings() []NamedOption {
	return named([]Lighting{LightingNatural, LightingBacklit, LightingDramatic, LightingSunset, LightingNight})
}

func Compositions() []NamedOption {
	return named([]Composition{CompositionEyeLevel, CompositionAerial, CompositionWideAngle})
}

type labeled interface {
	~string
	Label() string
}

func named[T labeled](keys []T) []NamedOption {
	out := make([]NamedOption, 0, len(keys))
	for _, k := range keys {
		out = append(out, NamedOption{Key: string(k), Label: k.Label()})
	}
	return out
}

// BuildingLabel is the installation as shown to the visitor, including the
// free-text description for BuildingOther.
func (o GenerationOptions) BuildingLabel() string {
	if o.Building == BuildingOther && strings.TrimSpace(o.OtherBuilding) != "" {
		return fmt.Sprintf("%s（%s）", o.Building.Label(), o.OtherBuilding)
	}
	return o.Building.Label()
}

// Summary renders the confirmation-screen lines. The email body reuses them.
func (o GenerationOptions) Summary(displayName string) []string {
	var lines []string
	if name := strings.TrimSpace(displayName); name != "" {
		lines = append(lines, "お名前: "+name)
	}
	lines = append(lines, "モード: "+o.Mode.Label())
	if o.Mode != ModeCreative {
		lines = append(lines, "設置するもの: "+o.BuildingLabel())
	}
	if o.Mode == ModeStyled {
		lines = append(lines, fmt.Sprintf("スタイル: %s / 照明: %s / 構図: %s",
			optionalLabel(o.Style), optionalLabel(o.Lighting), optionalLabel(o.Composition)))
	}
	auto := "なし"
	if o.AutoPrompt {
		auto = "あり"
	}
	lines = append(lines, "自動プロンプト: "+auto)
	text := strings.TrimSpace(o.FreeText)
	if text == "" {
		text = "（なし）"
	}
	lines = append(lines, "ご要望: "+text)
	return lines
}

func optionalLabel[T labeled](v T) string {
	if strings.TrimSpace(string(v)) == "" {
		return "-"
	}
	return v.Label()
}
