package azuredevops

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"
)

const (
	apiVersion        = "7.0"
	defaultHost       = "https://dev.azure.com/"
	maxRetries        = 3
)

// apiError is a non-2xx answer from the REST API.
type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

func isNotFound(err error) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// client is a thin Azure DevOps REST client authenticated with a PAT.
type client struct {
	baseURL    string
	token      string
	httpClient *retryablehttp.Client
}

// newClient normalizes organization into a base URL. A full URL (Azure
// DevOps Server, or a custom host) is used as is.
func newClient(baseURL, organization, pat string, timeout time.Duration) *client {
	base := strings.TrimSuffix(baseURL, "/")
	if base == "" {
		base = defaultHost + strings.Trim(organization, "/")
	}

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = maxRetries
	httpClient.HTTPClient.Timeout = timeout
	httpClient.Logger = nil

	return &client{baseURL: base, token: pat, httpClient: httpClient}
}

func (c *client) get(ctx context.Context, endpoint string, out interface{}) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *client) post(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, endpoint, body, out)
}

// do sends a JSON request to baseURL+endpoint and decodes the response into
// out when out is not nil.
func (c *client) do(
	ctx context.Context,
	method, endpoint string,
	body, out interface{},
) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Basic auth with an empty user and the PAT as password
	auth := base64.StdEncoding.EncodeToString([]byte(":" + c.token))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")

	logger.Debugf("Azure DevOps %s %s", method, endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apiError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out != nil {
		if unmarshalErr := json.Unmarshal(respBody, out); unmarshalErr != nil {
			return fmt.Errorf("failed to parse response of %s: %w", endpoint, unmarshalErr)
		}
	}
	return nil
}

type repository struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	WebURL string `json:"webUrl"`
}

type item struct {
	ObjectID      string `json:"objectId"`
	GitObjectType string `json:"gitObjectType"`
	CommitID      string `json:"commitId"`
	Path          string `json:"path"`
	IsFolder      bool   `json:"isFolder"`
	Content       string `json:"content"`
}

type ref struct {
	Name     string `json:"name"`
	ObjectID string `json:"objectId"`
}

type refUpdateResult struct {
	Name         string `json:"name"`
	Success      bool   `json:"success"`
	UpdateStatus string `json:"updateStatus"`
}

type pullRequest struct {
	ID            int        `json:"pullRequestId"`
	Title         string     `json:"title"`
	Status        string     `json:"status"`
	URL           string     `json:"url"`
	SourceRefName string     `json:"sourceRefName"`
	TargetRefName string     `json:"targetRefName"`
	Repository    repository `json:"repository"`
}

type listResponse[T any] struct {
	Value []T `json:"value"`
	Count int `json:"count"`
}
