package booking

import (
	"errors"
	"net/url"
	"strings"
)

// DefaultPhone is the salon's WhatsApp number in international format without "+".
const DefaultPhone = "554899169053"

// MessageKey is the locale key of the prefilled booking message. It may reference
// {colorName}.
const MessageKey = "colorRecommendations.whatsappMessage"

// GeneralMessageKey is the locale key of the booking message sent without a color choice.
const GeneralMessageKey = "colorRecommendations.generalBookingMessage"

// ErrNoPhone indicates the link builder has no destination number.
var ErrNoPhone = errors.New("booking: phone number is required")

// Translator looks up user-facing strings by key.
type Translator interface {
	T(lang, key string) string
}

// Links builds WhatsApp deep links with a prefilled booking message.
type Links struct {
	phone string
	base  string
}

// New returns a builder for phone. Non-digits are stripped.
func New(phone string) (Links, error) {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return Links{}, ErrNoPhone
	}
	return Links{phone: b.String(), base: "https://wa.me/"}, nil
}

// Phone returns the normalized destination number.
func (l Links) Phone() string { return l.phone }

// Message renders the booking message for colorName in lang.
func (l Links) Message(t Translator, lang, colorName string) string {
	return strings.ReplaceAll(t.T(lang, MessageKey), "{colorName}", colorName)
}

// URL returns the wa.me link carrying the message for colorName.
func (l Links) URL(t Translator, lang, colorName string) string {
	return l.link(l.Message(t, lang, colorName))
}

// GeneralURL returns the wa.me link with the plain appointment request.
func (l Links) GeneralURL(t Translator, lang string) string {
	return l.link(t.T(lang, GeneralMessageKey))
}

func (l Links) link(text string) string {
	q := url.Values{}
	q.Set("text", text)
	return l.base + l.phone + "?" + q.Encode()
}
