package dataset

import (
	"errors"
)

var (
	// ErrFileNotFound indicates the requested file is not part of the listing.
	ErrFileNotFound = errors.New("file not found")

	// ErrReadDir indicates the data directory could not be read.
	ErrReadDir = errors.New("read directory")

	// ErrParse indicates the file is not valid CSV.
	ErrParse = errors.New("parse csv")

	// ErrEmptyFile indicates a file has no header row, or that a group of
	// files has no rows.
	ErrEmptyFile = errors.New("empty file")

	// ErrTooLarge indicates the file exceeds the configured size limit.
	ErrTooLarge = errors.New("file too large")

	// ErrUnknownColumn indicates a column that is not part of the table.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrInvalidOptions indicates invalid parse options.
	ErrInvalidOptions = errors.New("invalid options")
)
