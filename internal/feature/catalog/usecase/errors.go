// Package usecase implements the business logic for the catalog feature.
package usecase

import "errors"

var (
	// ErrAlreadyImported is returned when the catalog already holds products.
	ErrAlreadyImported = errors.New("products already imported")

	// ErrImportFileNotFound is returned when the import file does not exist.
	ErrImportFileNotFound = errors.New("import file not found")

	// ErrInvalidImport is returned when an import record fails validation.
	ErrInvalidImport = errors.New("invalid import data")
)
