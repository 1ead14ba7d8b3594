package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/clamcard/internal/domain"
)

// pathUUID binds the {name} path parameter as a UUID.
func pathUUID(r *http.Request, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, fmt.Errorf("invalid %s: must be a UUID", name)
	}
	return id, nil
}

// pagination binds the optional page and limit query parameters.
func pagination(r *http.Request) (domain.PaginationParams, error) {
	var page, limit *int
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		return domain.PaginationParams{}, errors.New("invalid page: must be an integer")
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		return domain.PaginationParams{}, errors.New("invalid limit: must be an integer")
	}
	return domain.NewPaginationParams(page, limit), nil
}

// decodeBody decodes the JSON request body into dst. It writes the error
// response itself and returns false when the body is unusable.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge, "request body too large")
			return false
		}
		requestError(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func toPagination(p domain.PaginationParams, total int64) Pagination {
	return Pagination{Page: p.Page, Limit: p.Limit, Total: int(total)}
}
