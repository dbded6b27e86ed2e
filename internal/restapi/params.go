package restapi

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

const maxIDLength = 256

var validIDRegex = regexp.MustCompile(`^[\p{L}\p{N}_.:\- ]+$`)

// extractID returns the {id} path value without a trailing ".json".
func extractID(r *http.Request) string {
	return strings.TrimSuffix(r.PathValue("id"), ".json")
}

func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("id exceeds %d characters", maxIDLength)
	}
	if !validIDRegex.MatchString(id) {
		return fmt.Errorf("id contains invalid characters")
	}
	return nil
}

// requireID extracts and validates the path id, answering 400 when invalid.
func (api *RestAPI) requireID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := extractID(r)
	if err := validateID(id); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"id": {err.Error()}})
		return "", false
	}
	return id, true
}

// queryParams accumulates parse errors per field so a handler can report
// them all at once.
type queryParams struct {
	r      *http.Request
	errors map[string][]string
}

func newQueryParams(r *http.Request) *queryParams {
	return &queryParams{r: r, errors: map[string][]string{}}
}

func (q *queryParams) fail(field, msg string) {
	q.errors[field] = append(q.errors[field], msg)
}

func (q *queryParams) has(name string) bool {
	return q.r.URL.Query().Get(name) != ""
}

func (q *queryParams) float(name string, required bool, min, max float64) float64 {
	raw := q.r.URL.Query().Get(name)
	if raw == "" {
		if required {
			q.fail(name, "is required")
		}
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		q.fail(name, "must be a number")
		return 0
	}
	if v < min || v > max {
		q.fail(name, fmt.Sprintf("must be between %g and %g", min, max))
	}
	return v
}

func (q *queryParams) int(name string, def, min, max int) int {
	raw := q.r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		q.fail(name, "must be an integer")
		return def
	}
	if v < min || v > max {
		q.fail(name, fmt.Sprintf("must be between %d and %d", min, max))
	}
	return v
}

func (q *queryParams) latLon() (float64, float64) {
	return q.float("lat", true, -90, 90), q.float("lon", true, -180, 180)
}

func (q *queryParams) valid() bool { return len(q.errors) == 0 }
