package service

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gracechurch/portal/internal/portal/domain"
	"github.com/gracechurch/portal/internal/portal/email"
	"github.com/gracechurch/portal/internal/portal/identity"
	"github.com/gracechurch/portal/internal/portal/metrics"
	"github.com/gracechurch/portal/internal/portal/store"
	"github.com/gracechurch/portal/pkg/slogx"
)

type RegisterParams struct {
	Email    string
	Password string
	FullName string
	Username string
}

type RegisterResult struct {
	IdentityID        string
	NeedsConfirmation bool
	IsResend          bool
}

// RegistrationService runs invitation-gated registration and the sign-in
// and recovery flows around it.
type RegistrationService struct {
	Registry   *Registry
	Store      store.Store
	Identity   identity.Provider
	Dispatcher *email.Dispatcher // nil disables limiter/monitor wrapping
	Composer   email.Composer

	// ProviderSendsConfirmation means CreateUser makes the identity
	// provider send a confirmation email, so it is dispatched as one.
	ProviderSendsConfirmation bool

	// NotifyOnRegistration sends a welcome notification after success.
	NotifyOnRegistration bool
}

// Register creates an identity for an invited email and consumes the
// invitation.
func (s *RegistrationService) Register(ctx context.Context, p RegisterParams) (RegisterResult, error) {
	res, err := s.register(ctx, p)
	metrics.ObserveRegistration(registrationResult(res, err))
	return res, err
}

func (s *RegistrationService) register(ctx context.Context, p RegisterParams) (RegisterResult, error) {
	addr, err := domain.ParseEmail(p.Email)
	if err != nil {
		return RegisterResult{}, newError(KindInvalidRequest, err)
	}
	if strings.TrimSpace(p.Password) == "" {
		return RegisterResult{}, invalidRequest("password is required")
	}
	log := slogx.FromContext(ctx).With(slog.String("email", addr))

	// 1. Gate on the invitation. A used one is looked up too so step 4 can
	// tell a finished registration from an orphan.
	invite, err := s.Registry.FindAvailable(ctx, addr)
	if errors.Is(err, ErrNotFound) {
		invite, err = s.Registry.FindAny(ctx, addr)
	}
	if errors.Is(err, ErrNotFound) {
		log.Info("registration refused: not invited")
		return RegisterResult{}, ErrNotInvited
	}
	if err != nil {
		log.Error("failed to look up invitation", slog.Any("error", err))
		return RegisterResult{}, err
	}

	// 2. Look for an identity left over from an earlier attempt.
	existing, err := s.Identity.FindUserByEmail(ctx, addr)
	switch {
	case errors.Is(err, identity.ErrUserNotFound):
	case err != nil:
		log.Error("failed to look up identity", slog.Any("error", err))
		return RegisterResult{}, classifyProviderErr(err)
	case !existing.EmailConfirmed:
		// 3. Unconfirmed: finish what the earlier attempt left undone, then
		// resend instead of creating a duplicate.
		log = log.With(slog.String("identity_id", existing.ID))
		s.finish(ctx, log, addr, existing.ID, cmp.Or(strings.TrimSpace(p.FullName), invite.FullName), strings.TrimSpace(p.Username))
		if err := s.dispatch(ctx, domain.EmailVerification, addr, func(ctx context.Context) error {
			return s.Identity.ResendConfirmation(ctx, addr)
		}); err != nil {
			log.Warn("failed to resend confirmation", slog.Any("error", err))
			return RegisterResult{}, classifyEmailErr(err)
		}
		log.Info("confirmation resent for pending registration")
		return RegisterResult{IdentityID: existing.ID, NeedsConfirmation: true, IsResend: true}, nil
	default:
		return RegisterResult{}, ErrAlreadyRegistered
	}

	// 4. Used but no identity: the user was deleted without a reset. The
	// invitation stays used and step 7 tolerates that.
	if invite.IsUsed {
		log.Warn("registering against orphaned invitation")
	}

	// 5. Create the identity with profile metadata.
	params := identity.CreateUserParams{
		Email:    addr,
		Password: p.Password,
		FullName: strings.TrimSpace(p.FullName),
		Username: strings.TrimSpace(p.Username),
	}
	create := func(ctx context.Context) error {
		created, err := s.Identity.CreateUser(ctx, params)
		existing = created
		return err
	}
	if s.ProviderSendsConfirmation {
		err = s.dispatch(ctx, domain.EmailVerification, addr, create)
	} else {
		err = create(ctx)
	}
	switch {
	case err == nil:
	case errors.Is(err, identity.ErrLinkNotDelivered) && existing.ID != "":
		log.Warn("identity created but confirmation not sent", slog.String("identity_id", existing.ID), slog.Any("error", err))
	case errors.Is(err, identity.ErrUserAlreadyExists):
		log.Warn("identity created concurrently")
		return RegisterResult{}, newError(KindAlreadyRegistered, err)
	default:
		log.Error("failed to create identity", slog.Any("error", err))
		return RegisterResult{}, classifyEmailErr(err)
	}
	log = log.With(slog.String("identity_id", existing.ID))

	fullName := cmp.Or(params.FullName, invite.FullName)
	s.finish(ctx, log, addr, existing.ID, fullName, params.Username)

	if s.NotifyOnRegistration {
		s.notify(ctx, addr, fullName)
	}

	log.Info("registration completed", slog.Bool("needs_confirmation", !existing.EmailConfirmed))
	return RegisterResult{IdentityID: existing.ID, NeedsConfirmation: !existing.EmailConfirmed}, nil
}

// finish syncs the profile and consumes the invitation once an identity
// exists. Neither failure undoes the registration.
func (s *RegistrationService) finish(ctx context.Context, log *slog.Logger, addr, identityID, fullName, username string) {
	// 6. Best-effort profile.
	now := s.Registry.now()
	if err := s.Store.Profiles().Upsert(ctx, domain.UserProfile{
		ID:        identityID,
		Email:     addr,
		FullName:  fullName,
		Role:      domain.RoleMember,
		UserTag:   username,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		log.Warn("profile sync failed after registration", slog.Any("error", newError(KindProfileSyncError, err)))
	}

	// 7. Consume the invitation. Losing the race is fine: the identity
	// already exists.
	if err := s.Registry.MarkUsed(ctx, addr); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyUsed):
			log.Debug("invitation already marked used")
		case errors.Is(err, ErrNotFound):
			log.Warn("invitation removed during registration")
		default:
			log.Error("failed to mark invitation used", slog.Any("error", err))
		}
	}
}

func (s *RegistrationService) notify(ctx context.Context, addr, fullName string) {
	if s.Dispatcher == nil {
		return
	}
	if err := s.Dispatcher.Deliver(ctx, domain.EmailNotification, s.Composer.RegistrationNotice(addr, fullName)); err != nil {
		slogx.FromContext(ctx).Warn("registration notice not sent", slog.String("email", addr), slog.Any("error", err))
	}
}

// SignIn authenticates with a password. Credential failures are enriched
// from the registry so the caller can tell not-invited, invited but not
// registered and wrong password apart.
func (s *RegistrationService) SignIn(ctx context.Context, addr, password string) (domain.Session, error) {
	sess, err := s.signIn(ctx, addr, password)
	result := "success"
	if err != nil {
		result = cmp.Or(reasonOf(err), string(KindOf(err)), "error")
	}
	metrics.ObserveSignIn(result)
	return sess, err
}

func (s *RegistrationService) signIn(ctx context.Context, addr, password string) (domain.Session, error) {
	addr, err := domain.ParseEmail(addr)
	if err != nil {
		return domain.Session{}, newError(KindInvalidRequest, err)
	}
	log := slogx.FromContext(ctx).With(slog.String("email", addr))

	sess, err := s.Identity.SignInWithPassword(ctx, addr, password)
	switch {
	case err == nil:
		log.Info("signed in", slog.String("identity_id", sess.Identity.ID))
		return sess, nil
	case errors.Is(err, identity.ErrEmailNotConfirmed):
		return domain.Session{}, newError(KindEmailNotConfirmed, err)
	case errors.Is(err, identity.ErrInvalidCredentials):
		return domain.Session{}, s.enrichSignInFailure(ctx, addr, err)
	}

	log.Error("sign-in provider failure", slog.Any("error", err))
	return domain.Session{}, classifyEmailErr(err)
}

func (s *RegistrationService) enrichSignInFailure(ctx context.Context, addr string, cause error) error {
	invite, err := s.Registry.FindAny(ctx, addr)
	switch {
	case errors.Is(err, ErrNotFound):
		return &Error{Kind: KindNotInvited, Reason: ReasonNotInvited, Err: cause}
	case err != nil:
		slogx.FromContext(ctx).Warn("could not enrich sign-in failure", slog.Any("error", err))
		return newError(KindInvalidCredentials, cause)
	case invite.Available():
		return &Error{Kind: KindInvalidCredentials, Reason: ReasonNotRegistered, Err: cause}
	}

	// Used invitation: only wrong_password if the identity still exists.
	_, err = s.Identity.FindUserByEmail(ctx, addr)
	switch {
	case errors.Is(err, identity.ErrUserNotFound):
		return &Error{Kind: KindInvalidCredentials, Reason: ReasonNotRegistered, Err: cause}
	case err != nil:
		slogx.FromContext(ctx).Warn("could not enrich sign-in failure", slog.Any("error", err))
		return newError(KindInvalidCredentials, cause)
	}
	return &Error{Kind: KindInvalidCredentials, Reason: ReasonWrongPassword, Err: cause}
}

// RequestPasswordReset asks the provider for a recovery email. Unknown
// addresses succeed silently.
func (s *RegistrationService) RequestPasswordReset(ctx context.Context, addr string) error {
	addr, err := domain.ParseEmail(addr)
	if err != nil {
		return newError(KindInvalidRequest, err)
	}

	err = s.dispatch(ctx, domain.EmailPasswordReset, addr, func(ctx context.Context) error {
		return s.Identity.SendPasswordReset(ctx, addr)
	})
	if err != nil {
		slogx.FromContext(ctx).Warn("password reset request failed", slog.String("email", addr), slog.Any("error", err))
		return classifyEmailErr(err)
	}
	return nil
}

// ConfirmEmail redeems a confirmation link for providers that hand links
// to the portal.
func (s *RegistrationService) ConfirmEmail(ctx context.Context, token string) (domain.Identity, error) {
	r, ok := s.Identity.(identity.TokenRedeemer)
	if !ok {
		return domain.Identity{}, invalidRequest("email confirmation is handled by the identity provider")
	}
	id, err := r.ConfirmEmail(ctx, token)
	if err != nil {
		return domain.Identity{}, classifyProviderErr(err)
	}
	slogx.FromContext(ctx).Info("email confirmed", slog.String("identity_id", id.ID))
	return id, nil
}

// CompletePasswordReset redeems a recovery link and sets a new password.
func (s *RegistrationService) CompletePasswordReset(ctx context.Context, token, password string) error {
	r, ok := s.Identity.(identity.TokenRedeemer)
	if !ok {
		return invalidRequest("password recovery is handled by the identity provider")
	}
	if strings.TrimSpace(password) == "" {
		return invalidRequest("password is required")
	}
	if err := r.CompletePasswordReset(ctx, token, password); err != nil {
		return classifyProviderErr(err)
	}
	return nil
}

func (s *RegistrationService) dispatch(
	ctx context.Context,
	typ domain.EmailType,
	recipient string,
	fn func(ctx context.Context) error,
) error {
	if s.Dispatcher == nil {
		return fn(ctx)
	}
	return s.Dispatcher.Dispatch(ctx, typ, recipient, fn)
}

func registrationResult(res RegisterResult, err error) string {
	switch {
	case err != nil:
		return cmp.Or(string(KindOf(err)), "error")
	case res.IsResend:
		return "resend"
	default:
		return "success"
	}
}

func reasonOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Reason
	}
	return ""
}

