package langchain

import (
	"context"
	"errors"
	"io"
	"net"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	"github.com/poiesic/tabula/core"
)

var (
	statusCodePattern  = regexp.MustCompile(`(?i)status(?:\s+code)?\s*[:=]?\s*(\d{3})\b`)
	leadingCodePattern = regexp.MustCompile(`^(\d{3})\s`)
	transientFragments = []string{
		"rate limit",
		"too many requests",
		"timeout",
		"timed out",
		"connection reset",
		"connection refused",
		"temporarily unavailable",
		"overloaded",
		"server is busy",
	}
)

// Classify wraps err as transient or permanent. Errors that are already
// classified, configuration errors and context errors pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if core.IsTransient(err) || errors.Is(err, core.ErrProvider) || errors.Is(err, core.ErrConfiguration) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if isTransient(err) {
		return core.Transient(err)
	}
	return core.Permanent(err)
}

func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}

	msg := err.Error()
	if code, ok := StatusCode(msg); ok {
		return TransientStatus(code)
	}
	lower := strings.ToLower(msg)
	for _, fragment := range transientFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// StatusCode extracts an HTTP status code from a client error message.
func StatusCode(msg string) (int, bool) {
	m := statusCodePattern.FindStringSubmatch(msg)
	if m == nil {
		m = leadingCodePattern.FindStringSubmatch(msg)
	}
	if m == nil {
		return 0, false
	}
	code, err := strconv.Atoi(m[1])
	if err != nil || code < 100 || code > 599 {
		return 0, false
	}
	return code, true
}

// TransientStatus reports whether an HTTP status is worth retrying.
func TransientStatus(code int) bool {
	return code == 408 || code == 429 || code >= 500
}
