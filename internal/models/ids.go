package models

import (
	"errors"
	"strings"
)

// ErrInvalidID is returned when an identifier is blank after trimming.
var ErrInvalidID = errors.New("invalid identifier")

// ClientID identifies a client. IDs are opaque; ordering is best-effort only.
type ClientID string

// ConsultantID identifies a consultant.
type ConsultantID string

// ProjectID identifies a project.
type ProjectID string

func normalizeID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", ErrInvalidID
	}
	return id, nil
}

func ParseClientID(raw string) (ClientID, error) {
	id, err := normalizeID(raw)
	return ClientID(id), err
}

func ParseConsultantID(raw string) (ConsultantID, error) {
	id, err := normalizeID(raw)
	return ConsultantID(id), err
}

func ParseProjectID(raw string) (ProjectID, error) {
	id, err := normalizeID(raw)
	return ProjectID(id), err
}

// ParseConsultantIDs parses every entry and drops duplicates, keeping first-seen order.
func ParseConsultantIDs(raw []string) ([]ConsultantID, error) {
	out := make([]ConsultantID, 0, len(raw))
	seen := make(map[ConsultantID]bool, len(raw))
	for _, r := range raw {
		id, err := ParseConsultantID(r)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

// ParseClientIDs parses every entry and drops duplicates, keeping first-seen order.
func ParseClientIDs(raw []string) ([]ClientID, error) {
	out := make([]ClientID, 0, len(raw))
	seen := make(map[ClientID]bool, len(raw))
	for _, r := range raw {
		id, err := ParseClientID(r)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}
