package restapi

import (
	"cmp"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"otpviewer.org/internal/app"
	"otpviewer.org/internal/models"
	"otpviewer.org/internal/store"
)

const maxFavoriteBody = 4096

type favoriteStopRequest struct {
	Name string   `json:"name" validate:"max=200"`
	Code string   `json:"code" validate:"max=64"`
	Lat  *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon  *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
}

func (api *RestAPI) favoritesEnabled(w http.ResponseWriter, r *http.Request) bool {
	if api.Store == nil {
		api.sendError(w, r, http.StatusNotFound, "favorite stops are disabled")
		return false
	}
	return true
}

func (api *RestAPI) listFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	if !api.favoritesEnabled(w, r) {
		return
	}
	favorites, err := api.Store.ListFavorites(r.Context(), app.APIKey(r))
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewListResponse(favorites, models.NewEmptyReferences(), false, api.apiClock()))
}

// addFavoriteHandler bookmarks a stop. Name, code and location default to
// what the transit index knows about the stop.
func (api *RestAPI) addFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	if !api.favoritesEnabled(w, r) {
		return
	}
	stopID, ok := api.requireID(w, r)
	if !ok {
		return
	}

	var req favoriteStopRequest
	if r.Body != nil {
		err := json.NewDecoder(io.LimitReader(r.Body, maxFavoriteBody)).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			api.validationErrorResponse(w, r, map[string][]string{"body": {"must be a JSON object"}})
			return
		}
	}
	if err := api.validate.Struct(req); err != nil {
		api.validationErrorResponse(w, r, fieldErrors(err))
		return
	}

	fav := store.FavoriteStop{StopID: stopID, Name: req.Name, Code: req.Code}
	if known, found := api.Index.Stop(stopID); found {
		fav.Name = cmp.Or(fav.Name, known.Name)
		fav.Code = cmp.Or(fav.Code, known.Code)
		fav.Lat, fav.Lon = known.Lat, known.Lon
	}
	if req.Lat != nil {
		fav.Lat = *req.Lat
	}
	if req.Lon != nil {
		fav.Lon = *req.Lon
	}
	if err := api.validate.Struct(fav); err != nil {
		api.validationErrorResponse(w, r, fieldErrors(err))
		return
	}

	saved, err := api.Store.AddFavorite(r.Context(), app.APIKey(r), fav)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(saved, models.NewEmptyReferences(), api.apiClock()))
}

func (api *RestAPI) removeFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	if !api.favoritesEnabled(w, r) {
		return
	}
	stopID, ok := api.requireID(w, r)
	if !ok {
		return
	}

	removed, err := api.Store.RemoveFavorite(r.Context(), app.APIKey(r), stopID)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	if !removed {
		api.sendNotFound(w, r)
		return
	}
	api.sendResponse(w, r, models.NewOKResponse(nil, api.apiClock()))
}

func fieldErrors(err error) map[string][]string {
	out := map[string][]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["body"] = []string{err.Error()}
		return out
	}
	for _, fe := range verrs {
		out[fe.Field()] = append(out[fe.Field()], "failed on the '"+fe.Tag()+"' rule")
	}
	return out
}
