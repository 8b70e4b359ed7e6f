package project

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned for unsupported project settings.
	ErrConfiguration = errors.New("configuration error")

	// ErrDuplicateDefinition is wrapped by every duplicate-name error.
	ErrDuplicateDefinition = errors.New("duplicate definition")

	ErrDuplicateInstallation = fmt.Errorf("%w: installation", ErrDuplicateDefinition)
	ErrDuplicateSite         = fmt.Errorf("%w: site", ErrDuplicateDefinition)
	ErrDuplicateURI          = fmt.Errorf("%w: uri", ErrDuplicateDefinition)

	ErrUnknownSite         = errors.New("unknown site")
	ErrUnknownInstallation = errors.New("unknown installation")

	// ErrMissingRequirement is returned by Validate.
	ErrMissingRequirement = errors.New("missing requirement")
)
