package booking

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTranslator map[string]string

func (s staticTranslator) T(lang, key string) string {
	if v, ok := s[lang+":"+key]; ok {
		return v
	}
	return key
}

func TestURLEncodesMessage(t *testing.T) {
	links, err := New(DefaultPhone)
	require.NoError(t, err)
	tr := staticTranslator{
		"en:" + MessageKey: "Hi! I'd like to book {colorName} & more",
	}

	got := links.URL(tr, "en", "Caramel Highlights")
	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, "/554899169053", u.Path)
	assert.Equal(t, "Hi! I'd like to book Caramel Highlights & more", u.Query().Get("text"))
}

func TestNewNormalizesPhone(t *testing.T) {
	links, err := New("+55 (48) 9916-9053")
	require.NoError(t, err)
	assert.Equal(t, "554899169053", links.Phone())

	_, err = New(" + ")
	assert.ErrorIs(t, err, ErrNoPhone)
}

func TestGeneralURL(t *testing.T) {
	links, err := New(DefaultPhone)
	require.NoError(t, err)
	tr := staticTranslator{"pt:" + GeneralMessageKey: "Olá Talia! Gostaria de agendar um horário."}

	u, err := url.Parse(links.GeneralURL(tr, "pt"))
	require.NoError(t, err)
	assert.Equal(t, "Olá Talia! Gostaria de agendar um horário.", u.Query().Get("text"))
}
