package handlers

import (
	"net/http"

	"dreamtown/internal/domain/jsoncfg"
	"dreamtown/internal/session"
)

type catalogResponse struct {
	Modes        []jsoncfg.NamedOption `json:"modes"`
	Buildings    []jsoncfg.NamedOption `json:"buildings"`
	Styles       []jsoncfg.NamedOption `json:"styles"`
	Lightings    []jsoncfg.NamedOption `json:"lightings"`
	Compositions []jsoncfg.NamedOption `json:"compositions"`
	Photos       []string              `json:"photos"`
	Limits       catalogLimits         `json:"limits"`
}

type catalogLimits struct {
	FreeText      int `json:"free_text"`
	OtherBuilding int `json:"other_building"`
	DisplayName   int `json:"display_name"`
}

// Catalog lists every choice the options screen renders.
func (a *App) Catalog(w http.ResponseWriter, r *http.Request) {
	photos := []string{}
	if a.Photos != nil {
		ids, err := a.Photos.PhotoIDs(r.Context())
		if err != nil {
			a.Logger.Error().Err(err).Msg("list base photos")
			a.error(w, http.StatusInternalServerError, "internal", "failed to list photos")
			return
		}
		photos = append(photos, ids...)
	}
	a.json(w, http.StatusOK, catalogResponse{
		Modes:        jsoncfg.Modes(),
		Buildings:    jsoncfg.Buildings(),
		Styles:       jsoncfg.Styles(),
		Lightings:    jsoncfg.Lightings(),
		Compositions: jsoncfg.Compositions(),
		Photos:       photos,
		Limits: catalogLimits{
			FreeText:      jsoncfg.MaxFreeTextRunes,
			OtherBuilding: jsoncfg.MaxOtherBuildingRunes,
			DisplayName:   session.MaxDisplayNameRunes,
		},
	})
}
