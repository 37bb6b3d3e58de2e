// Package registration handles the public event registration form.
package registration

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aanand-mishra/chapter-api/internal/storage"
	"github.com/aanand-mishra/chapter-api/internal/types"
	"github.com/aanand-mishra/chapter-api/internal/utils/request"
	"github.com/aanand-mishra/chapter-api/internal/utils/response"
)

const (
	msgMissingFields = "All registration fields are required."
	msgRegistered    = "Registration successful!"
	msgFailed        = "Failed to register."
)

// Register handles POST /api/register.
//
// Request body (JSON), every field required:
//
//	{ "eventId": "…", "name": "…", "email": "…", "mobile": "…",
//	  "college": "…", "rollnumber": "…" }
//
// Values are stored as sent; null, false, "" and 0 count as missing.
// The stored record gets a generated registrationId and a millisecond
// timestamp. Whether eventId names an existing event is not checked.
//
// Responses: 201 "Registration successful!", 400 missing fields or
// malformed JSON, 500 store failure.
func Register(store storage.Storage, c storage.Collection, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reg types.Registration

		err := request.DecodeJSON(r, &reg)
		if err != nil && !errors.Is(err, request.ErrEmptyBody) {
			log.Debug("malformed registration body", zap.Error(err))
			response.WriteText(w, http.StatusBadRequest, response.MsgInvalidBody)
			return
		}

		if err := request.Validate(reg); err != nil {
			log.Debug("registration rejected",
				zap.Strings("missing", request.FailedFields(err)))
			response.WriteText(w, http.StatusBadRequest, msgMissingFields)
			return
		}

		id := uuid.NewString()
		rec := types.Record{
			types.AttrRegistrationID: id,
			"eventId":                reg.EventID,
			"name":                   reg.Name,
			"email":                  reg.Email,
			"mobile":                 reg.Mobile,
			"college":                reg.College,
			"rollnumber":             reg.RollNumber,
			types.AttrTimestamp:      time.Now().UnixMilli(),
		}

		if err := store.PutItem(r.Context(), c, rec); err != nil {
			log.Error("error storing registration",
				zap.String("registration_id", id),
				zap.Error(err))
			response.WriteText(w, http.StatusInternalServerError, msgFailed)
			return
		}

		log.Info("registration stored",
			zap.String("registration_id", id),
			zap.Any("event_id", reg.EventID))
		response.WriteText(w, http.StatusCreated, msgRegistered)
	}
}
