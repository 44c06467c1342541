package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContactNotificationBodyEscapesInput(t *testing.T) {
	body := contactNotificationBody(
		"<script>alert(1)</script>",
		"eve@example.com",
		`Hello <img src=x onerror="steal()">`,
	)

	assert.False(t, strings.Contains(body, "<script>"))
	assert.False(t, strings.Contains(body, "<img"))
	assert.Contains(t, body, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, body, "eve@example.com")
}

func TestWelcomeBodyEscapesUsername(t *testing.T) {
	body := welcomeBody(`bob<b onmouseover="x">`)

	assert.False(t, strings.Contains(body, `<b onmouseover`))
	assert.Contains(t, body, "bob&lt;b")
}
