package editorapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcptoolkit/forge/internal/errs"
	"github.com/mcptoolkit/forge/pkg/catalog"
	"github.com/mcptoolkit/forge/pkg/profile"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a §7 status code and the `{"error": ...}`
// body shape §6.5 requires for every non-success response.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// statusFor maps an error from any component onto its §7 HTTP status.
// Components raise their own concrete error types rather than errs.Error
// directly (catalog.ConflictError, profile.NotFoundError, ...), so this
// uses errors.As against each known type rather than a bare type switch,
// which would miss an error wrapped with %w.
func statusFor(err error) int {
	var e *errs.Error
	if errors.As(err, &e) {
		if status := e.Status(); status != 0 {
			return status
		}
		return http.StatusInternalServerError
	}

	var conflict *catalog.ConflictError
	if errors.As(err, &conflict) {
		return http.StatusConflict
	}
	var catalogNotFound *catalog.NotFoundError
	if errors.As(err, &catalogNotFound) {
		return http.StatusNotFound
	}
	var catalogValidation *catalog.ValidationError
	if errors.As(err, &catalogValidation) {
		return http.StatusBadRequest
	}
	var profileNotFound *profile.NotFoundError
	if errors.As(err, &profileNotFound) {
		return http.StatusNotFound
	}
	var duplicate *profile.DuplicateNameError
	if errors.As(err, &duplicate) {
		return http.StatusConflict
	}
	var portInUse *profile.PortInUseError
	if errors.As(err, &portInUse) {
		return http.StatusConflict
	}
	var protected *profile.ProtectedError
	if errors.As(err, &protected) {
		return http.StatusForbidden
	}
	var profileValidation *profile.ValidationError
	if errors.As(err, &profileValidation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
