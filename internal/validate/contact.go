package validate

import "strings"

// ContactForm is the raw input of the contact form.
type ContactForm struct {
	Name  string
	Email string
	Phone string
}

// CheckContact checks name, email and phone in that order and reports the first
// failure. Phone segments are checked by length only, not by digit content.
func CheckContact(form ContactForm) error {
	name := strings.TrimSpace(form.Name)
	if !strings.Contains(name, " ") {
		return &Error{Reason: ReasonMissingNamePart, Field: "name", Message: msgMissingName}
	}

	parts := strings.Split(form.Email, "@")
	if len(parts) < 2 || !strings.Contains(parts[1], ".") {
		return &Error{Reason: ReasonInvalidEmailDomain, Field: "email", Message: msgEmailDomain}
	}

	if !validPhone(form.Phone) {
		return &Error{Reason: ReasonMalformedPhone, Field: "phone", Message: msgMalformedPhone}
	}

	return nil
}

// validPhone accepts the shape "(AAA) PPP-LLLL".
func validPhone(phone string) bool {
	for _, required := range []string{"(", ")", " ", "-"} {
		if !strings.Contains(phone, required) {
			return false
		}
	}

	tokens := strings.Split(phone, " ")
	if len(tokens) != 2 {
		return false
	}
	area, local := tokens[0], tokens[1]

	if len(area) != 5 || !strings.Contains(area, "(") || !strings.Contains(area, ")") {
		return false
	}
	if len(local) != 8 || !strings.Contains(local, "-") {
		return false
	}

	segments := strings.Split(local, "-")
	return len(segments[0]) == 3 && len(segments[1]) == 4
}
