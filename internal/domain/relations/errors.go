package relations

import "errors"

var (
	ErrLinkNotFound = errors.New("household link not found")
	ErrPersist      = errors.New("persist graph state")
)
