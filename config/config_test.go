package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmails(t *testing.T) {
	emails := normalizeEmails(" Admin@Example.COM , second@example.com,, ")
	assert.Equal(t, []string{"admin@example.com", "second@example.com"}, emails)
}

func TestNormalizeEmailsEmpty(t *testing.T) {
	assert.Empty(t, normalizeEmails(""))
	assert.Empty(t, normalizeEmails(" , ,"))
}

func TestValidateRequiresAdminEmails(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: "8080"},
		Firebase: FirebaseConfig{ProjectID: "demo"},
	}
	err := cfg.Validate()
	assert.ErrorContains(t, err, "ADMIN_EMAILS")

	cfg.App.AdminEmails = []string{"admin@example.com"}
	assert.NoError(t, cfg.Validate())
}
