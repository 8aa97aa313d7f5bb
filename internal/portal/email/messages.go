package email

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/gracechurch/portal/internal/portal/domain"
)

// Composer builds the portal's outbound messages.
type Composer struct {
	PortalURL string // base URL links point at
	SiteName  string
}

func (c Composer) site() string {
	if c.SiteName == "" {
		return "the church portal"
	}
	return c.SiteName
}

func (c Composer) link(path string, query url.Values) string {
	u := strings.TrimRight(c.PortalURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Invitation tells an invited person how to register.
func (c Composer) Invitation(to, fullName string) Message {
	link := c.link("/register", url.Values{"email": {to}})
	greeting := greet(fullName)
	text := fmt.Sprintf("%s\n\nYou have been invited to join %s. Register with this email address at:\n%s\n",
		greeting, c.site(), link)
	return Message{
		To:      to,
		Subject: "You're invited to " + c.site(),
		Text:    text,
		HTML:    paragraphHTML(greeting, "You have been invited to join "+c.site()+".", "Register", link),
		Template: map[string]string{
			"to_name":     fullName,
			"action_url":  link,
			"email_type":  string(domain.EmailInvitation),
			"action_text": "Register",
		},
	}
}

// Link builds the confirmation or recovery message carrying token.
func (c Composer) Link(kind domain.EmailType, to, token string) Message {
	var path, subject, intro, action string
	switch kind {
	case domain.EmailPasswordReset:
		path, subject = "/auth/reset", "Reset your password"
		intro, action = "Someone asked to reset the password for this address.", "Choose a new password"
	default:
		path, subject = "/auth/confirm", "Confirm your email"
		intro, action = "Confirm your email address to finish registering.", "Confirm email"
	}

	link := c.link(path, url.Values{"token": {token}})
	return Message{
		To:      to,
		Subject: subject,
		Text:    fmt.Sprintf("%s\n\n%s: %s\n", intro, action, link),
		HTML:    paragraphHTML("Hello,", intro, action, link),
		Template: map[string]string{
			"action_url":  link,
			"email_type":  string(kind),
			"action_text": action,
		},
	}
}

// RegistrationNotice tells a new member their registration went through.
func (c Composer) RegistrationNotice(to, fullName string) Message {
	link := c.link("/signin", nil)
	greeting := greet(fullName)
	return Message{
		To:      to,
		Subject: "Welcome to " + c.site(),
		Text:    fmt.Sprintf("%s\n\nYour registration is complete. Sign in at %s\n", greeting, link),
		HTML:    paragraphHTML(greeting, "Your registration is complete.", "Sign in", link),
		Template: map[string]string{
			"to_name":     fullName,
			"action_url":  link,
			"email_type":  string(domain.EmailNotification),
			"action_text": "Sign in",
		},
	}
}

func greet(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return "Hello,"
	}
	return "Hello " + name + ","
}

func paragraphHTML(greeting, body, action, link string) string {
	return fmt.Sprintf(`<p>%s</p><p>%s</p><p><a href="%s">%s</a></p>`,
		html.EscapeString(greeting), html.EscapeString(body), html.EscapeString(link), html.EscapeString(action))
}
