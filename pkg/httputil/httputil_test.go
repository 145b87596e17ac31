package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/JossueJativa/websocket/pkg/errors"
	"github.com/JossueJativa/websocket/pkg/logger"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// --- WriteJSON ---

func TestWriteJSON_SetsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, Response{Data: "ok"})
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestWriteJSON_EncodesData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, Response{Data: map[string]int{"desk_id": 5}})

	resp := decode(t, rec)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(5), data["desk_id"])
}

func TestWriteJSON_StatusCodes(t *testing.T) {
	for _, status := range []int{200, 201, 400, 404, 500} {
		rec := httptest.NewRecorder()
		WriteJSON(rec, status, Response{})
		assert.Equal(t, status, rec.Code)
	}
}

// --- WriteError ---

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(rec, req, apperrors.NotFoundMessage("OrderDetail not found"), logger.New("test", "error"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "OrderDetail not found", resp.Error.Message)
}

func TestWriteError_SentinelNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(rec, req, fmt.Errorf("lookup: %w", apperrors.ErrNotFound), logger.New("test", "error"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestWriteError_SentinelInvalidInput(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(rec, req, fmt.Errorf("bad: %w", apperrors.ErrInvalidInput), logger.New("test", "error"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestWriteError_UnknownError_Returns500(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(rec, req, fmt.Errorf("disk on fire"), logger.New("test", "error"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	// The raw error must not leak to the client.
	assert.NotContains(t, resp.Error.Message, "disk on fire")
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := logger.WithCorrelationID(req.Context(), "corr-123")
	req = req.WithContext(ctx)

	WriteError(rec, req, apperrors.InvalidInput("Desk ID is required"), logger.New("test", "error"))

	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "corr-123", resp.Error.RequestID)
}

func TestWriteError_NoCorrelationID_OmitsRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(rec, req, apperrors.InvalidInput("bad"), logger.New("test", "error"))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	errObj, ok := raw["error"].(map[string]any)
	require.True(t, ok)
	_, present := errObj["request_id"]
	assert.False(t, present)
}

// --- WriteValidationError ---

func TestWriteValidationError_NonValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationError(rec, fmt.Errorf("decode request body: unexpected EOF"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

// --- Response envelope ---

func TestResponse_NilError_OmitsErrorField(t *testing.T) {
	data, err := json.Marshal(Response{Data: "x"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "error")
}

func TestResponse_NilData_OmitsDataField(t *testing.T) {
	data, err := json.Marshal(Response{Error: &ErrorResponse{Code: "X", Message: "y"}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"data"`)
}

// --- ParseID ---

func TestParseID_Valid(t *testing.T) {
	rec := httptest.NewRecorder()
	id, ok := ParseID(rec, "42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestParseID_NonNumeric_Returns400(t *testing.T) {
	rec := httptest.NewRecorder()
	id, ok := ParseID(rec, "desk-five")
	assert.False(t, ok)
	assert.Zero(t, id)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestParseID_Zero_Returns400(t *testing.T) {
	rec := httptest.NewRecorder()
	_, ok := ParseID(rec, "0")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseID_Negative_Returns400(t *testing.T) {
	rec := httptest.NewRecorder()
	_, ok := ParseID(rec, "-3")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
