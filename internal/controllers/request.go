package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/gorilla/mux"

	"github.com/roombook/backend/internal/apperror"
)

const maxBodyBytes = 1 << 20

// keySet is the list of keys a request body or query string may carry.
type keySet struct {
	names []string
	set   mapset.Set
}

func allowedKeys(names ...string) keySet {
	set := mapset.NewThreadUnsafeSet()
	for _, n := range names {
		set.Add(n)
	}
	return keySet{names: names, set: set}
}

func (k keySet) unknown(keys []string) []string {
	var out []string
	for _, key := range keys {
		if !k.set.Contains(key) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func (k keySet) String() string {
	return strings.Join(k.names, ", ")
}

// decodeBody reads a JSON object into dst, rejecting keys outside allowed.
func decodeBody(r *http.Request, allowed keySet, dst interface{}) error {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&raw); err != nil {
		return apperror.Wrap(apperror.KindValidation, "Invalid request body", err)
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	if invalid := allowed.unknown(keys); len(invalid) > 0 {
		return apperror.Validation(fmt.Sprintf("Invalid keys in body: %s. Allowed keys: %s.", strings.Join(invalid, ", "), allowed))
	}

	// raw came from valid JSON, so re-encoding cannot fail
	b, _ := json.Marshal(raw)
	if err := json.Unmarshal(b, dst); err != nil {
		return apperror.Wrap(apperror.KindValidation, "Validation error on request body.", err)
	}
	return nil
}

func checkQuery(q url.Values, allowed keySet) error {
	keys := make([]string, 0, len(q))
	for key := range q {
		keys = append(keys, key)
	}
	if invalid := allowed.unknown(keys); len(invalid) > 0 {
		return apperror.Validation(fmt.Sprintf("Invalid query parameters: %s. Allowed: %s.", strings.Join(invalid, ", "), allowed))
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	if raw == "" {
		return 0, apperror.Validation("Path parameter id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("Path parameter id must be a positive integer")
	}
	return id, nil
}

// queryInt returns def when the parameter is absent.
func queryInt(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation("limit and offset must be valid numbers.")
	}
	return v, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTimestamp accepts RFC 3339 timestamps and the date-only ISO 8601 form.
// Values without a zone are taken as UTC.
func parseTimestamp(field, raw string) (t time.Time, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		err = apperror.Validation(field + " is required")
		return
	}
	for _, layout := range timeLayouts {
		if t, err = time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return
		}
	}
	err = apperror.Validation(field + " must be a valid ISO 8601 date")
	return
}
