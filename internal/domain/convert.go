package domain

import "time"

// ConvertRequest carries the saved upload locations for one conversion.
// Both inputs are owned by the conversion once submitted and are removed
// when the encoding job terminates.
type ConvertRequest struct {
	AudioPath string `validate:"required"`
	ImagePath string `validate:"required"`
}

// ConversionResult references a finished artifact in the download registry.
type ConversionResult struct {
	ID        string
	ExpiresIn time.Duration
}

// ConvertResponse is the JSON body returned for a successful conversion.
type ConvertResponse struct {
	URL       string `json:"url"`
	ID        string `json:"id"`
	ExpiresIn int64  `json:"expires_in_seconds"`
}
