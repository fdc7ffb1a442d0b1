package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransport marks network failures and non-throttling HTTP errors.
	ErrTransport = errors.New("transport failure")
	// ErrThrottled marks a throttling response or an interrupted backoff wait.
	ErrThrottled = errors.New("catalog throttled")
	// ErrNotFound marks a catalog lookup whose subject does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCacheCorrupt marks unreadable or malformed persistent cache data.
	ErrCacheCorrupt = errors.New("cache corrupt")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
