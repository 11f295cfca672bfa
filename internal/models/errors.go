package models

import (
	"errors"
	"fmt"
)

// ErrorKind represents different categories of errors
type ErrorKind int

const (
	ErrMalformedPackage ErrorKind = iota
	ErrCatalogUnavailable
	ErrRepositoryLookup
	ErrRepositoryUpdate
	ErrPackageLookup
	ErrHashMismatch
	ErrNotADirectory
	ErrFileNotFound
	ErrStoreCorrupt
	ErrInvalidConfig
	ErrCancelled
	WarnPackageMetadata
	WarnPackageNotTracked
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case ErrMalformedPackage:
		return "MalformedPackage"
	case ErrCatalogUnavailable:
		return "CatalogUnavailable"
	case ErrRepositoryLookup:
		return "RepositoryLookup"
	case ErrRepositoryUpdate:
		return "RepositoryUpdate"
	case ErrPackageLookup:
		return "PackageLookup"
	case ErrHashMismatch:
		return "HashMismatch"
	case ErrNotADirectory:
		return "NotADirectory"
	case ErrFileNotFound:
		return "FileNotFound"
	case ErrStoreCorrupt:
		return "StoreCorrupt"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrCancelled:
		return "Cancelled"
	case WarnPackageMetadata:
		return "PackageMetadataWarning"
	case WarnPackageNotTracked:
		return "PackageNotTrackedWarning"
	default:
		return "Unknown"
	}
}

// Warning reports whether this kind is non-fatal: the operation still
// counts as a success, but the caller should surface the message.
func (k ErrorKind) Warning() bool {
	return k == WarnPackageMetadata || k == WarnPackageNotTracked
}

// Error represents an error during a library, store or repository operation
type Error struct {
	Kind    ErrorKind
	Package string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Package, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Kind, e.Err)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err, or any error it wraps, is an *Error of the
// given kind.
func IsKind(err error, kind ErrorKind) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind == kind
	}
	return false
}

// IsWarning reports whether err is a non-fatal warning kind.
func IsWarning(err error) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind.Warning()
	}
	return false
}
