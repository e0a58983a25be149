package extractor

import "errors"

// ErrUnsupportedLanguage is returned when no change-graph producer exists for a language.
var ErrUnsupportedLanguage = errors.New("unsupported language")
