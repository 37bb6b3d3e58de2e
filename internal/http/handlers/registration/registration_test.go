package registration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aanand-mishra/chapter-api/internal/http/handlers/registration"
	"github.com/aanand-mishra/chapter-api/internal/storage"
	"github.com/aanand-mishra/chapter-api/internal/storage/memory"
	"github.com/aanand-mishra/chapter-api/internal/testutil"
)

var registrations = storage.NewCatalog("ieee-").Registrations

const validBody = `{
	"eventId": "evt-1",
	"name": "Ada Lovelace",
	"email": "ada@example.org",
	"mobile": 9876543210,
	"college": "Analytical College",
	"rollnumber": "CS-042"
}`

func TestRegister_Success(t *testing.T) {
	store := memory.New()
	rec := httptest.NewRecorder()
	before := time.Now().UnixMilli()

	registration.Register(store, registrations, zap.NewNop())(rec, testutil.NewJSONRequest(http.MethodPost, "/api/register", validBody))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Registration successful!", rec.Body.String())

	records, err := store.FetchAll(context.Background(), registrations)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Len(t, got.String("registrationId"), 36)
	assert.Equal(t, "evt-1", got.String("eventId"))
	assert.Equal(t, "Ada Lovelace", got.String("name"))
	assert.Equal(t, "ada@example.org", got.String("email"))
	assert.Equal(t, json.Number("9876543210"), got["mobile"], "numbers are stored as sent")
	assert.Equal(t, "Analytical College", got.String("college"))
	assert.Equal(t, "CS-042", got.String("rollnumber"))

	ts, ok := got["timestamp"].(int64)
	require.True(t, ok, "timestamp should be milliseconds as int64")
	assert.GreaterOrEqual(t, ts, before)
	assert.LessOrEqual(t, ts, time.Now().UnixMilli())
}

func TestRegister_EachFieldRequired(t *testing.T) {
	fields := []string{"eventId", "name", "email", "mobile", "college", "rollnumber"}

	for _, missing := range fields {
		t.Run(missing, func(t *testing.T) {
			body := map[string]string{
				"eventId": "evt-1", "name": "Ada", "email": "ada@example.org",
				"mobile": "1", "college": "AC", "rollnumber": "7",
			}
			delete(body, missing)

			store := memory.New()
			rec := httptest.NewRecorder()
			registration.Register(store, registrations, zap.NewNop())(rec, testutil.NewJSONRequest(http.MethodPost, "/api/register", toJSON(t, body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "All registration fields are required.", rec.Body.String())

			records, _ := store.FetchAll(context.Background(), registrations)
			assert.Empty(t, records)
		})
	}
}

func TestRegister_EmptyValuesCountAsMissing(t *testing.T) {
	bodies := map[string]string{
		"empty string": `{"eventId":"","name":"a","email":"b","mobile":"c","college":"d","rollnumber":"e"}`,
		"null":         `{"eventId":"x","name":null,"email":"b","mobile":"c","college":"d","rollnumber":"e"}`,
		"zero":         `{"eventId":"x","name":"a","email":"b","mobile":0,"college":"d","rollnumber":"e"}`,
		"false":        `{"eventId":"x","name":"a","email":false,"mobile":"c","college":"d","rollnumber":"e"}`,
		"empty body":   ``,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			registration.Register(memory.New(), registrations, zap.NewNop())(rec, testutil.NewJSONRequest(http.MethodPost, "/api/register", body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRegister_MalformedJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	registration.Register(memory.New(), registrations, zap.NewNop())(rec, testutil.NewJSONRequest(http.MethodPost, "/api/register", `{"eventId":`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Invalid request body.", rec.Body.String())
}

func TestRegister_ObjectAndArrayValuesAreStored(t *testing.T) {
	store := memory.New()
	rec := httptest.NewRecorder()
	body := `{"eventId":{"id":"e1"},"name":"Ada","email":"ada@example.org","mobile":"1","college":["AC"],"rollnumber":{}}`

	registration.Register(store, registrations, zap.NewNop())(rec, testutil.NewJSONRequest(http.MethodPost, "/api/register", body))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	records, err := store.FetchAll(context.Background(), registrations)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, map[string]any{"id": "e1"}, records[0]["eventId"])
	assert.Equal(t, []any{"AC"}, records[0]["college"])
	assert.Equal(t, map[string]any{}, records[0]["rollnumber"])
}

func TestRegister_StoreFailure(t *testing.T) {
	store := &testutil.FailingStore{}
	rec := httptest.NewRecorder()

	registration.Register(store, registrations, zap.NewNop())(rec, testutil.NewJSONRequest(http.MethodPost, "/api/register", validBody))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to register.", rec.Body.String())
	assert.Equal(t, 1, store.Writes)
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
