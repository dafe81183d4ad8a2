package job

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusDraft  Status = "Draft"
	StatusOpen   Status = "Open"
	StatusClosed Status = "Closed"
)

var (
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrUnknownStatus     = errors.New("unknown job status")
)

var transitions = map[Status]map[Status]struct{}{
	StatusDraft:  {StatusOpen: {}},
	StatusOpen:   {StatusClosed: {}},
	StatusClosed: {},
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := transitions[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether a job may move from one status to another.
// Staying put is always allowed.
func CanTransition(from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if from == to {
		return nil
	}
	if _, ok := transitions[from][to]; !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
