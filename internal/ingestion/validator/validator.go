// Package validator provides input validation for ingestion requests. It
// enforces title, URL, and body constraints and returns per-field error
// details.
package validator

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/decimalpack/Static-Website-Search/internal/ingestion"
)

const (
	maxTitleLength = 1024
	maxURLLength   = 2048
	maxBodyLength  = 1048576
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ValidateIngestRequest checks that the title, URL, and body of the request
// meet the required constraints and returns a ValidationError if not.
func ValidateIngestRequest(req *ingestion.IngestRequest) error {
	errs := make(map[string]string)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errs["title"] = "title is required"
	} else if len(title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}

	rawURL := strings.TrimSpace(req.URL)
	switch {
	case rawURL == "":
		errs["url"] = "url is required"
	case len(rawURL) > maxURLLength:
		errs["url"] = fmt.Sprintf("url must be at most %d characters", maxURLLength)
	default:
		parsed, err := url.Parse(rawURL)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			errs["url"] = "url must be an absolute http or https URL"
		}
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		errs["body"] = "body is required and must not be empty"
	} else if len(body) > maxBodyLength {
		errs["body"] = fmt.Sprintf("body must be at most %d characters", maxBodyLength)
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
