package errtype

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound represents the error for the cases when some entity is not found.
	ErrNotFound = errors.New("not found")
	// ErrBadInput represents the error for the cases when the user input is invalid.
	ErrBadInput = errors.New("bad input")
	// ErrUnauthorized represents the error for the cases when the authorization is required.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConfiguration represents the error for malformed or missing promotion definitions.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrMetadataUnavailable represents the error for the cases when the build metadata can't be read.
	ErrMetadataUnavailable = errors.New("metadata unavailable")
	// ErrPreconditionViolation represents the error for the cases when the checkout can't start.
	ErrPreconditionViolation = errors.New("precondition violation")
	// ErrMissingBranchVariable represents the error for the checkout without the promoted branch.
	ErrMissingBranchVariable = fmt.Errorf("%w: promoted branch is not set", ErrPreconditionViolation)
	// ErrUnsupportedSCM represents the error for the checkout of a build that doesn't use git.
	ErrUnsupportedSCM = fmt.Errorf("%w: promoted build does not use git", ErrPreconditionViolation)
	// ErrExternalTool represents the error for the cases when the version control client fails.
	ErrExternalTool = errors.New("external tool failure")
)
