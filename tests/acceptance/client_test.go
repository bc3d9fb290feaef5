package acceptance

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// client talks to a real listening server and keeps cookies like a browser
type client struct {
	t      *testing.T
	server *httptest.Server
	http   *http.Client
	token  string
}

func newClient(t *testing.T, server *httptest.Server) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, server: server, http: &http.Client{Jar: jar}}
}

// response is a fully read HTTP response
type response struct {
	status int
	header http.Header
	body   []byte
}

func (c *client) do(method, path string, body interface{}) *response {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return &response{status: resp.StatusCode, header: resp.Header, body: raw}
}

func (r *response) json(t *testing.T) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(r.body, &out), string(r.body))
	return out
}

func (r *response) data(t *testing.T) map[string]interface{} {
	t.Helper()
	data, ok := r.json(t)["data"].(map[string]interface{})
	require.True(t, ok, "data is not an object: %s", r.body)
	return data
}

func (r *response) list(t *testing.T) []interface{} {
	t.Helper()
	data, ok := r.json(t)["data"].([]interface{})
	require.True(t, ok, "data is not a list: %s", r.body)
	return data
}
