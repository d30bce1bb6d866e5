package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/backoffice/internal/domain/apperr"
)

// statusFor maps a service error to its HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	var (
		validationErr *apperr.ValidationError
		invalidArg    *apperr.InvalidArgumentError
		customerNF    *apperr.CustomerNotFoundError
		productNF     *apperr.ProductNotFoundError
		notFound      *apperr.NotFoundError
		duplicate     *apperr.DuplicateEmailError
		integrity     *apperr.ReferentialIntegrityError
		tooLarge      *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadBody),
		errors.As(err, &validationErr),
		errors.As(err, &invalidArg):
		return http.StatusBadRequest
	case errors.As(err, &customerNF), errors.As(err, &productNF):
		return http.StatusUnprocessableEntity
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &duplicate), errors.As(err, &integrity):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"code","message","violations"}. Internal errors
// are logged and replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		message = "internal server error"
	}

	var violations []string
	if vErr := (*apperr.ValidationError)(nil); errors.As(err, &vErr) {
		violations = vErr.Violations
	}

	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(message) })
			if len(violations) > 0 {
				e.Field("violations", func(e *jx.Encoder) {
					e.Arr(func(e *jx.Encoder) {
						for _, v := range violations {
							e.Str(v)
						}
					})
				})
			}
		})
	})
}

// pathID parses the {id} URL parameter as a positive integer.
func pathID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &apperr.InvalidArgumentError{Argument: "id", Reason: "must be a positive integer"}
	}
	return id, nil
}
