package domain

import "errors"

var (
	ErrInvalidQuery       = errors.New("invalid search query")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrAdAlreadySaved     = errors.New("ad already exists in this collection")
	ErrAdNotFound         = errors.New("saved ad not found")
	ErrMissingAdID        = errors.New("ad has no ad_archive_id")
	ErrNoImages           = errors.New("no images available for analysis")
	ErrAssistantOutput    = errors.New("could not parse two JSON blocks from assistant output")
	ErrNotConfigured      = errors.New("not configured")
)
