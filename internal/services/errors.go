package services

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrRemoteUnavailable covers every failed fetch of the remote assignment
	// list: transport error, timeout, bad status, wrong content type, bad body.
	ErrRemoteUnavailable = errors.New("remote assignments unavailable")
	ErrReconcileDisabled = errors.New("remote reconciliation not configured")
)
