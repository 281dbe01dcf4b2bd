package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"gaana-dl/catalog"
	"gaana-dl/fetch"
	"gaana-dl/redux"
)

// describeError turns a fetch or extraction failure into the one-line message shown to the user
func describeError(err error) string {
	if err == nil {
		return ""
	}

	var statusErr *fetch.StatusError
	var parseErr *redux.ParseError
	var netErr net.Error

	switch {
	case errors.Is(err, context.Canceled):
		return "Interrupted"
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Please try again."
	case errors.As(err, &statusErr):
		return fmt.Sprintf("The page returned HTTP %d. Please check the URL.", statusErr.StatusCode)
	case errors.Is(err, redux.ErrMarkerNotFound):
		return "No page data found. Is this a gaana.com song, album or playlist page?"
	case errors.Is(err, redux.ErrNoOpeningBrace), errors.As(err, &parseErr):
		return "The page data could not be read: " + err.Error()
	case errors.Is(err, catalog.ErrNoTracks):
		return "No tracks"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "The request timed out. Please try again."
	case isNetworkError(err):
		return "Could not reach the server: " + err.Error()
	default:
		return err.Error()
	}
}

// isNetworkError checks if an error is network-related
func isNetworkError(err error) bool {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, keyword := range []string{"connection refused", "connection reset", "no such host", "network is unreachable"} {
		if strings.Contains(msg, keyword) {
			return true
		}
	}
	return false
}
