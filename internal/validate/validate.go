// Package validate checks raw form input before it reaches the gradebook.
package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Reason discriminates validation failures.
type Reason int

const (
	// ReasonMissingField means a required field was empty.
	ReasonMissingField Reason = iota + 1
	// ReasonNotANumber means the score was not numeric.
	ReasonNotANumber
	// ReasonNegativeScore means the score was below zero.
	ReasonNegativeScore
	// ReasonMissingNamePart means the name lacks a first or last part.
	ReasonMissingNamePart
	// ReasonInvalidEmailDomain means the email has no dotted domain.
	ReasonInvalidEmailDomain
	// ReasonMalformedPhone means the phone is not shaped like (555) 555-5555.
	ReasonMalformedPhone
	// ReasonScoreTooLarge means the score's integer part overflows an int32.
	ReasonScoreTooLarge
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonMissingField:
		return "MissingField"
	case ReasonNotANumber:
		return "NotANumber"
	case ReasonNegativeScore:
		return "NegativeScore"
	case ReasonMissingNamePart:
		return "MissingNamePart"
	case ReasonInvalidEmailDomain:
		return "InvalidEmailDomain"
	case ReasonMalformedPhone:
		return "MalformedPhone"
	case ReasonScoreTooLarge:
		return "ScoreTooLarge"
	default:
		return "Unknown"
	}
}

// Error is a validation failure. Message is meant for display to the user.
type Error struct {
	Reason  Reason
	Field   string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validate %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validate: %s", e.Reason)
}

// Is matches any *Error with the same reason, so errors.Is works against the
// sentinel values below regardless of field.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}

// Sentinels for errors.Is checks.
var (
	ErrMissingField       = &Error{Reason: ReasonMissingField}
	ErrNotANumber         = &Error{Reason: ReasonNotANumber}
	ErrNegativeScore      = &Error{Reason: ReasonNegativeScore}
	ErrMissingNamePart    = &Error{Reason: ReasonMissingNamePart}
	ErrInvalidEmailDomain = &Error{Reason: ReasonInvalidEmailDomain}
	ErrMalformedPhone     = &Error{Reason: ReasonMalformedPhone}
	ErrScoreTooLarge      = &Error{Reason: ReasonScoreTooLarge}
)

const (
	msgMissingField   = "Values missing."
	msgNotANumber     = "Score must be a number!"
	msgNegativeScore  = "Score must be a positive number!"
	msgScoreTooLarge  = "Score is too large!"
	msgMissingName    = "Please include both your first and last name in the name field."
	msgEmailDomain    = "Please ensure that your email address has a trailing domain (Ex: .com, .org, .net)"
	msgMalformedPhone = "Please check the formatting of your phone number. Example: (555) 555-5555"
)

// GradeForm is the raw input of the add-grade form.
type GradeForm struct {
	Subject    string
	Assignment string
	Score      string
}

// Grade is a validated and normalized grade ready for the gradebook.
type Grade struct {
	Subject    string
	Assignment string
	Score      int
}

// ParseGrade validates form and normalizes subject and assignment to lowercase.
// Any numeric score is accepted, but only its leading digits are stored:
// "88.9" becomes 88 and "1e2" becomes 1.
func ParseGrade(form GradeForm) (Grade, error) {
	subject := strings.TrimSpace(form.Subject)
	assignment := strings.TrimSpace(form.Assignment)
	score := strings.TrimSpace(form.Score)

	switch {
	case subject == "":
		return Grade{}, &Error{Reason: ReasonMissingField, Field: "subject", Message: msgMissingField}
	case assignment == "":
		return Grade{}, &Error{Reason: ReasonMissingField, Field: "assignment", Message: msgMissingField}
	case score == "":
		return Grade{}, &Error{Reason: ReasonMissingField, Field: "score", Message: msgMissingField}
	}

	value, err := strconv.ParseFloat(score, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return Grade{}, &Error{Reason: ReasonNotANumber, Field: "score", Message: msgNotANumber}
	}

	if value < 0 {
		return Grade{}, &Error{Reason: ReasonNegativeScore, Field: "score", Message: msgNegativeScore}
	}

	n, err := strconv.ParseInt(leadingDigits(score), 10, 32)
	if err != nil {
		return Grade{}, &Error{Reason: ReasonScoreTooLarge, Field: "score", Message: msgScoreTooLarge}
	}

	return Grade{
		Subject:    strings.ToLower(subject),
		Assignment: strings.ToLower(assignment),
		Score:      int(n),
	}, nil
}

// leadingDigits returns the run of digits after an optional sign, or "0" when
// the number starts with a decimal point.
func leadingDigits(s string) string {
	s = strings.TrimLeft(s, "+-")
	end := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if end == -1 {
		end = len(s)
	}
	if end == 0 {
		return "0"
	}
	return s[:end]
}
