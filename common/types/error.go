package types

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("notebook document not found")
	ErrKernelNotFound   = errors.New("kernel not found")
	ErrNoActiveEditor   = errors.New("there is no active notebook editor")
	ErrInvalidArgument  = fmt.Errorf("invalid command argument")
)
