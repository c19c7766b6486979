package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type IDType string

const (
	IDTypeSubmission IDType = "sub"
	IDTypeReport     IDType = "rpt"
)

var validIDTypes = map[IDType]bool{
	IDTypeSubmission: true,
	IDTypeReport:     true,
}

// GenerateID returns a time-ordered UUIDv7 string. IDs generated later sort
// after earlier ones, so a queue's submissions keep creation order when
// listed by key.
func GenerateID(idType IDType) (string, error) {
	if !validIDTypes[idType] {
		return "", fmt.Errorf("invalid ID type: %s", idType)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate %s id: %w", idType, err)
	}
	return id.String(), nil
}

// ParseIDTimestamp extracts the creation time from an ID made by GenerateID.
func ParseIDTimestamp(id string) (time.Time, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ID format: %s", id)
	}
	if parsed.Version() != 7 {
		return time.Time{}, fmt.Errorf("ID %s is not time-ordered (version %d)", id, parsed.Version())
	}
	sec, nsec := parsed.Time().UnixTime()
	return time.Unix(sec, nsec), nil
}
