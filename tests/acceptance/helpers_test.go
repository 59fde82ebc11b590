package acceptance

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// apiResponse is the envelope every JSON endpoint returns
type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// call makes a real HTTP request and decodes the envelope
func call(t *testing.T, baseURL, method, path, token string, body interface{}) (int, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope apiResponse
	require.NoError(t, json.Unmarshal(raw, &envelope), string(raw))
	return resp.StatusCode, envelope
}

// into decodes the envelope's data into out
func into(t *testing.T, envelope apiResponse, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(envelope.Data, out), string(envelope.Data))
}
