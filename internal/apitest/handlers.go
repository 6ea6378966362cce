package apitest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/pribylovaa/skilltrack/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode разбирает тело запроса; при ошибке пишет 422 в формате FastAPI.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		validationError(w, "body", err.Error())
		return false
	}

	return true
}

func validationError(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []apierrors.FieldError{{Loc: []any{"body", field}, Msg: msg, Type: "value_error"}},
	})
}

// missingQuery отвечает 422 на отсутствующий обязательный query-параметр.
func missingQuery(w http.ResponseWriter, name string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []apierrors.FieldError{{Loc: []any{"query", name}, Msg: "field required", Type: "value_error.missing"}},
	})
}

func detail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	apierrors.WriteDetail(w, r, status, msg)
}

// pathID читает {id} из пути; при ошибке пишет 422.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		validationError(w, "id", "value is not a valid integer")
		return 0, false
	}

	return id, true
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}

	return v
}

// pageParams возвращает page/page_size с ограничениями backend.
func pageParams(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	page := queryInt(r, "page", 1)
	size := queryInt(r, "page_size", 20)
	if page < 1 || size < 1 || size > 100 {
		validationError(w, "page_size", "ensure this value is less than or equal to 100")
		return 0, 0, false
	}

	return page, size, true
}

// paginate режет items на страницу и возвращает её, total и число страниц.
func paginate[T any](items []T, page, size int) ([]T, int, int) {
	total := len(items)
	pages := (total + size - 1) / size

	from := (page - 1) * size
	if from > total {
		from = total
	}
	to := from + size
	if to > total {
		to = total
	}

	out := make([]T, 0, to-from)
	out = append(out, items[from:to]...)

	return out, total, pages
}

func strptr(s string) *string { return &s }
