package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sanhedrin/sanhedrin/pkg/models"
)

// apiClient is a thin client for the Sanhedrin HTTP API used by the
// submit, status, and cancel commands.
type apiClient struct {
	base string
	key  string
	http *http.Client
}

func newAPIClient() *apiClient {
	return &apiClient{
		base: strings.TrimRight(serverURL, "/"),
		key:  clientKey(),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *apiClient) do(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response (%s): %w", resp.Status, err)
	}
	if env.Error != nil {
		return fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func (c *apiClient) submit(task models.Task) (*models.Deliberation, error) {
	var d models.Deliberation
	if err := c.do(http.MethodPost, "/v1/deliberations", task, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *apiClient) status(id string) (*models.Deliberation, error) {
	var d models.Deliberation
	if err := c.do(http.MethodGet, "/v1/deliberations/"+id, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *apiClient) cancel(id string) (*models.Deliberation, error) {
	var d models.Deliberation
	if err := c.do(http.MethodDelete, "/v1/deliberations/"+id, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *apiClient) list(state string) ([]models.Deliberation, error) {
	path := "/v1/deliberations"
	if state != "" {
		path += "?state=" + state
	}
	var ds []models.Deliberation
	if err := c.do(http.MethodGet, path, nil, &ds); err != nil {
		return nil, err
	}
	return ds, nil
}
