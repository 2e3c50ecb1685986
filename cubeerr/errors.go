// Package cubeerr defines the error kinds surfaced by the cube query layer.
//
// Concrete errors keep their specific messages and are tagged with one of
// the reference errors below, so callers can branch on the kind with
// errors.Is (from github.com/cockroachdb/errors) or the Is* helpers.
package cubeerr

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrValidation marks criteria that violate a structural constraint.
	ErrValidation = errors.New("validation error")
	// ErrUnsupportedOperation marks requests for retired features.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrSchemaMismatch marks criteria or registry entries that cannot be
	// reconciled with a cube schema.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrStore marks failures of the underlying cube or side-table store.
	ErrStore = errors.New("store error")
)

func Validationf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrValidation)
}

func Unsupportedf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrUnsupportedOperation)
}

func SchemaMismatchf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrSchemaMismatch)
}

func Storef(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrStore)
}

// WrapStore tags err as a store failure. Errors already tagged are returned
// unchanged, nil stays nil.
func WrapStore(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStore) {
		return err
	}
	return errors.Mark(errors.Wrapf(err, format, args...), ErrStore)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupportedOperation)
}

func IsSchemaMismatch(err error) bool {
	return errors.Is(err, ErrSchemaMismatch)
}

func IsStore(err error) bool {
	return errors.Is(err, ErrStore)
}
