package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizePhone converts a Pakistani mobile number to international digits:
// "0300-1234567", "+92 300 1234567" and "923001234567" all become "923001234567".
// Numbers in other formats are returned as bare digits.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	switch {
	case strings.HasPrefix(d, "0092"):
		return d[2:]
	case strings.HasPrefix(d, "03") && len(d) == 11:
		return "92" + d[1:]
	case strings.HasPrefix(d, "3") && len(d) == 10:
		return "92" + d
	}
	return d
}

// WhatsAppLink builds a wa.me click-to-chat link with a prefilled message.
// Returns "" when the phone number has no digits.
func WhatsAppLink(phone, message string) string {
	number := NormalizePhone(phone)
	if number == "" {
		return ""
	}
	if message == "" {
		return fmt.Sprintf("https://wa.me/%s", number)
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, url.QueryEscape(message))
}
