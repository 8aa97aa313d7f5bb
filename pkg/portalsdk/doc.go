/*
Package portalsdk provides a client SDK for the church portal API.

# Overview

The package mirrors the portal's HTTP surface: the wire types used by the
server handlers and a client for calling them. It is organized around two
types:

  - SDKClient: public operations (register, sign in, password reset, health)
  - Session: operations that need a bearer token (profile, administration)

Create an SDKClient for the public endpoints:

	client := portalsdk.NewSDKClient("https://portal.example.org")

	// Register an invited address
	res, err := client.Register(ctx, portalsdk.RegisterRequest{
		Email:    "alice@example.org",
		Password: "correct horse battery",
	})

	// Sign in to create a session
	session, err := client.SignIn(ctx, "alice@example.org", "correct horse battery")

Use a Session for authenticated operations:

	me, err := session.Me(ctx)

	// Admin only
	invite, err := session.Invite(ctx, portalsdk.InviteRequest{Email: "bob@example.org", SendEmail: true})
	stats, err := session.EmailStats(ctx)

# Errors

Every non-2xx response is returned as *APIError carrying the HTTP status,
the stable error code and, for rate limits, the suggested wait:

	if portalsdk.IsCode(err, portalsdk.ErrorCodeNotInvited) {
		// ask an administrator for an invitation
	}
*/
package portalsdk
