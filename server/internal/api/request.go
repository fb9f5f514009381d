package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/obsidianstack/pokedex/pkg/types"
)

// maxBodyBytes bounds POST and PATCH request bodies.
const maxBodyBytes = 2 << 20

// Pagination holds the page-size policy for GET /pokemon.
type Pagination struct {
	DefaultLimit int
	MaxLimit     int // 0 = unbounded
}

// parse reads page (default 1) and limit (default DefaultLimit) from q.
//
// The query is decoded as a whole: if either parameter is present but not a
// valid integer, or page < 1, or limit < 0, both fall back to their defaults.
func (p Pagination) parse(q url.Values) (page, limit int) {
	page, limit = 1, p.DefaultLimit

	pv, pok, perr := intParam(q, "page")
	lv, lok, lerr := intParam(q, "limit")
	if perr != nil || lerr != nil || (pok && pv < 1) || (lok && lv < 0) {
		return page, p.clamp(limit)
	}
	if pok {
		page = pv
	}
	if lok {
		limit = lv
	}
	return page, p.clamp(limit)
}

func (p Pagination) clamp(limit int) int {
	if p.MaxLimit > 0 && limit > p.MaxLimit {
		return p.MaxLimit
	}
	return limit
}

// intParam returns the integer value of key, whether it was present, and
// any parse error. A key given with an empty value ("page=") is present and
// fails to parse.
func intParam(q url.Values, key string) (int, bool, error) {
	if !q.Has(key) {
		return 0, false, nil
	}
	n, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}

// pathID decodes the {id} path segment as a non-negative int32. On failure
// it writes a 400 and returns false.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.PathValue("id")
	n, err := strconv.ParseUint(raw, 10, 31)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, fmt.Sprintf("invalid pokemon id %q", raw))
		return 0, false
	}
	return int(n), true
}

// decodeJSON decodes the request body into v. On failure it writes the
// matching 4xx and returns false:
//
//	415  Content-Type is not JSON
//	413  body exceeds maxBodyBytes
//	422  well-formed JSON with a value of the wrong type
//	400  anything else (syntax error, empty body)
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if !isJSON(r.Header.Get("Content-Type")) {
		jsonErr(w, http.StatusUnsupportedMediaType, "expected request with Content-Type: application/json")
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &maxErr):
		jsonErr(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.As(err, &typeErr):
		jsonErr(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid value for field %q", typeErr.Field))
	default:
		jsonErr(w, http.StatusBadRequest, "malformed JSON body")
	}
	return false
}

// decodePatch decodes a POST or PATCH body. A number outside the int32 range
// is answered like any other ill-typed value, with a 422.
func decodePatch(w http.ResponseWriter, r *http.Request) (types.PokemonPatch, bool) {
	var body types.PokemonPatch
	if !decodeJSON(w, r, &body) {
		return body, false
	}
	if body.Number.Set && !types.ValidNumber(body.Number.Value) {
		jsonErr(w, http.StatusUnprocessableEntity, `invalid value for field "number"`)
		return body, false
	}
	return body, true
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func joinFields(names []string) string {
	return strings.Join(names, ", ")
}
