// Package lookup fetches external content quoted back into rooms: a yes/no oracle,
// encyclopedia summaries and Scratch profiles.
package lookup

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound means the remote service answered but has nothing for the query.
	ErrNotFound = errors.New("lookup: not found")
	// ErrUnavailable covers transport failures, bad statuses and unreadable answers.
	ErrUnavailable = errors.New("lookup: unavailable")
)

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

func checkStatus(op string, status int) error {
	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	case status/100 != 2:
		return fmt.Errorf("%w: %s: status %d", ErrUnavailable, op, status)
	}
	return nil
}
