package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	SlugMinLength       = 3
	SlugMaxLength       = 50
	GeneratedSlugLength = 8
	MaxSlugAttempts     = 10
)

var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// GenerateSlug returns 8 lowercase hex characters taken from a random v4 UUID.
func GenerateSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:GeneratedSlugLength]
}

func ValidateSlug(slug string) error {
	if len(slug) < SlugMinLength || len(slug) > SlugMaxLength {
		return &ValidationError{Field: "slug", Reason: "slug must be between 3 and 50 characters", Kind: ErrSlugInvalid}
	}
	if !slugPattern.MatchString(slug) {
		return &ValidationError{Field: "slug", Reason: "slug may contain only letters, digits, '-' and '_'", Kind: ErrSlugInvalid}
	}
	return nil
}

func IsValidSlug(slug string) bool { return ValidateSlug(slug) == nil }
