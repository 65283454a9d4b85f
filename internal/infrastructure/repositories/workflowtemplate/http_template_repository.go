package workflowtemplate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	lru "github.com/hashicorp/golang-lru/v2"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
)

const (
	cacheSize       = 16
	requestTimeout  = 30 * time.Second
	retryWaitMin    = 100 * time.Millisecond
	retryWaitMax    = 2 * time.Second
	maxTemplateSize = 1 << 20
)

// HTTPTemplateRepository downloads workflow templates with a plain GET.
// Each URL is downloaded at most once per process; later calls are served
// from an LRU cache so a run touching many branches hits the network once.
type HTTPTemplateRepository struct {
	cache *lru.Cache[string, []byte]
}

// NewHTTPTemplateRepository creates the repository with an empty cache.
func NewHTTPTemplateRepository() (*HTTPTemplateRepository, error) {
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create template cache: %w", err)
	}
	return &HTTPTemplateRepository{cache: cache}, nil
}

// Fetch returns the template bytes at workflow.TemplateURL, retrying
// transient failures workflow.TemplateRetries times.
func (r *HTTPTemplateRepository) Fetch(
	ctx context.Context,
	workflow entities.WorkflowSettings,
) ([]byte, error) {
	if content, ok := r.cache.Get(workflow.TemplateURL); ok {
		return content, nil
	}

	client := retryablehttp.NewClient()
	client.RetryMax = workflow.TemplateRetries
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.HTTPClient.Timeout = requestTimeout
	client.Logger = leveledLogger{}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, workflow.TemplateURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %q: %w", workflow.TemplateURL, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %q: %w", workflow.TemplateURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %q: unexpected status %s", workflow.TemplateURL, resp.Status)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxTemplateSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", workflow.TemplateURL, err)
	}
	if len(content) > maxTemplateSize {
		return nil, fmt.Errorf("template %q exceeds %d bytes", workflow.TemplateURL, maxTemplateSize)
	}

	r.cache.Add(workflow.TemplateURL, content)
	logger.Debugf("Fetched workflow template %q (%d bytes)", workflow.TemplateURL, len(content))
	return content, nil
}

// leveledLogger routes retryablehttp's logs to logrus at debug level, except
// errors and warnings.
type leveledLogger struct{}

func (leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	logger.WithFields(toFields(keysAndValues)).Error(msg)
}

func (leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	logger.WithFields(toFields(keysAndValues)).Warn(msg)
}

func (leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.WithFields(toFields(keysAndValues)).Debug(msg)
}

func (leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	logger.WithFields(toFields(keysAndValues)).Debug(msg)
}

func toFields(keysAndValues []interface{}) logger.Fields {
	fields := make(logger.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
