package identity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gracechurch/portal/internal/portal/domain"
	"github.com/gracechurch/portal/pkg/cryptox"
	"github.com/gracechurch/portal/pkg/jwtx"
	"github.com/gracechurch/portal/pkg/slogx"
)

const (
	confirmationTokenTTL = 24 * time.Hour
	recoveryTokenTTL     = time.Hour

	localAudience = "portal"
)

// LocalConfig configures the in-process identity provider.
type LocalConfig struct {
	Issuer      string
	AutoConfirm bool          // skip email confirmation
	TokenTTL    time.Duration // defaults to jwtx.DefaultAccessTokenTTL
	Mailer      LinkMailer    // optional; tokens are logged at debug when nil
	Now         func() time.Time
}

type localUser struct {
	identity     domain.Identity
	passwordHash string
}

type pendingToken struct {
	kind      domain.EmailType
	userID    string
	expiresAt time.Time
}

// LocalProvider keeps identities in memory and signs EdDSA access tokens
// with an ephemeral key. Meant for single-node development and tests.
type LocalProvider struct {
	cfg      LocalConfig
	keys     *jwtx.KeySet
	signer   jwtx.Signer
	verifier jwtx.Verifier

	mu      sync.Mutex
	users   map[string]*localUser // by id
	byEmail map[string]string     // normalized email -> id
	tokens  map[string]pendingToken
}

func NewLocalProvider(cfg LocalConfig) (*LocalProvider, error) {
	if cfg.Issuer == "" {
		cfg.Issuer = "portal-local"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = jwtx.DefaultAccessTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	pemKey, err := cryptox.NewSigningKeyPEM()
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	signer, err := jwtx.NewSignerEdDSA(uuid.NewString(), pemKey)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("register signer: %w", err)
	}

	return &LocalProvider{
		cfg:      cfg,
		keys:     keys,
		signer:   signer,
		verifier: jwtx.NewCommonEdDSA(keys, cfg.Issuer, []string{localAudience}),
		users:    make(map[string]*localUser),
		byEmail:  make(map[string]string),
		tokens:   make(map[string]pendingToken),
	}, nil
}

// PublicJWKS returns the verification keys for tokens this provider signs.
func (p *LocalProvider) PublicJWKS() jwtx.JWKS { return p.keys.PublicJWKS() }

// Ready reports whether a signing key is loaded.
func (p *LocalProvider) Ready() bool { return p.keys.IsReady() }

func (p *LocalProvider) CreateUser(ctx context.Context, params CreateUserParams) (domain.Identity, error) {
	email, err := domain.ParseEmail(params.Email)
	if err != nil {
		return domain.Identity{}, err
	}
	hash, err := cryptox.HashPassword(params.Password)
	if err != nil {
		return domain.Identity{}, err
	}

	p.mu.Lock()
	if _, ok := p.byEmail[email]; ok {
		p.mu.Unlock()
		return domain.Identity{}, ErrUserAlreadyExists
	}
	u := &localUser{
		identity: domain.Identity{
			ID:             uuid.NewString(),
			Email:          email,
			EmailConfirmed: p.cfg.AutoConfirm,
			FullName:       params.FullName,
			Username:       params.Username,
			CreatedAt:      p.cfg.Now().UTC(),
		},
		passwordHash: hash,
	}
	p.users[u.identity.ID] = u
	p.byEmail[email] = u.identity.ID
	p.mu.Unlock()

	if !p.cfg.AutoConfirm {
		if err := p.issueLink(ctx, domain.EmailVerification, u.identity); err != nil {
			return u.identity, fmt.Errorf("%w: %w", ErrLinkNotDelivered, err)
		}
	}
	return u.identity, nil
}

func (p *LocalProvider) FindUserByEmail(_ context.Context, email string) (domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.lookupLocked(email)
	if !ok {
		return domain.Identity{}, ErrUserNotFound
	}
	return u.identity, nil
}

func (p *LocalProvider) ResendConfirmation(ctx context.Context, email string) error {
	p.mu.Lock()
	u, ok := p.lookupLocked(email)
	var id domain.Identity
	if ok {
		id = u.identity
	}
	p.mu.Unlock()

	if !ok || id.EmailConfirmed {
		return nil
	}
	return p.issueLink(ctx, domain.EmailVerification, id)
}

func (p *LocalProvider) SendPasswordReset(ctx context.Context, email string) error {
	p.mu.Lock()
	u, ok := p.lookupLocked(email)
	var id domain.Identity
	if ok {
		id = u.identity
	}
	p.mu.Unlock()

	if !ok {
		return nil
	}
	return p.issueLink(ctx, domain.EmailPasswordReset, id)
}

func (p *LocalProvider) SignInWithPassword(_ context.Context, email, password string) (domain.Session, error) {
	p.mu.Lock()
	u, ok := p.lookupLocked(email)
	var (
		id   domain.Identity
		hash string
	)
	if ok {
		id, hash = u.identity, u.passwordHash
	}
	p.mu.Unlock()

	if !ok {
		return domain.Session{}, ErrInvalidCredentials
	}
	if err := cryptox.VerifyPassword(password, hash); err != nil {
		return domain.Session{}, ErrInvalidCredentials
	}
	if !id.EmailConfirmed {
		return domain.Session{}, ErrEmailNotConfirmed
	}

	claims := jwtx.NewAccessClaims(
		id.ID, id.Email, id.EmailConfirmed, id.FullName, id.Username,
		p.cfg.TokenTTL, p.cfg.Issuer, []string{localAudience}, p.cfg.Now(),
	)
	token, err := p.signer.Sign(claims)
	if err != nil {
		return domain.Session{}, fmt.Errorf("sign access token: %w", err)
	}
	return domain.Session{
		AccessToken: token,
		ExpiresIn:   int(p.cfg.TokenTTL.Seconds()),
		Identity:    id,
	}, nil
}

func (p *LocalProvider) GetUser(_ context.Context, accessToken string) (domain.Identity, error) {
	claims, err := p.verifier.Verify(accessToken)
	if err != nil {
		return domain.Identity{}, ErrInvalidToken
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.users[claims.Subject]
	if !ok {
		return domain.Identity{}, ErrInvalidToken
	}
	return u.identity, nil
}

func (p *LocalProvider) DeleteUser(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.users[id]
	if !ok {
		return ErrUserNotFound
	}
	delete(p.users, id)
	delete(p.byEmail, u.identity.Email)
	for fp, t := range p.tokens {
		if t.userID == id {
			delete(p.tokens, fp)
		}
	}
	return nil
}

// ConfirmEmail redeems a verification token.
func (p *LocalProvider) ConfirmEmail(_ context.Context, token string) (domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	u, err := p.redeemLocked(token, domain.EmailVerification)
	if err != nil {
		return domain.Identity{}, err
	}
	u.identity.EmailConfirmed = true
	return u.identity, nil
}

// CompletePasswordReset redeems a recovery token and replaces the password.
// Redeeming a recovery link also proves control of the mailbox.
func (p *LocalProvider) CompletePasswordReset(_ context.Context, token, newPassword string) error {
	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	u, err := p.redeemLocked(token, domain.EmailPasswordReset)
	if err != nil {
		return err
	}
	u.passwordHash = hash
	u.identity.EmailConfirmed = true
	return nil
}

func (p *LocalProvider) lookupLocked(email string) (*localUser, bool) {
	id, ok := p.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, false
	}
	u, ok := p.users[id]
	return u, ok
}

func (p *LocalProvider) redeemLocked(token string, kind domain.EmailType) (*localUser, error) {
	fp := cryptox.FingerprintToken(token)
	t, ok := p.tokens[fp]
	if !ok || t.kind != kind {
		return nil, ErrInvalidToken
	}
	delete(p.tokens, fp)

	if p.cfg.Now().After(t.expiresAt) {
		return nil, ErrInvalidToken
	}
	u, ok := p.users[t.userID]
	if !ok {
		return nil, ErrInvalidToken
	}
	return u, nil
}

func (p *LocalProvider) issueLink(ctx context.Context, kind domain.EmailType, id domain.Identity) error {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}

	ttl := confirmationTokenTTL
	if kind == domain.EmailPasswordReset {
		ttl = recoveryTokenTTL
	}

	p.mu.Lock()
	now := p.cfg.Now()
	for fp, t := range p.tokens {
		if now.After(t.expiresAt) || (t.userID == id.ID && t.kind == kind) {
			delete(p.tokens, fp)
		}
	}
	p.tokens[cryptox.FingerprintToken(token)] = pendingToken{kind: kind, userID: id.ID, expiresAt: now.Add(ttl)}
	p.mu.Unlock()

	if p.cfg.Mailer == nil {
		slogx.FromContext(ctx).Debug("identity link issued without mailer",
			slog.String("kind", string(kind)),
			slog.String("user_id", id.ID),
		)
		return nil
	}

	if err := p.cfg.Mailer.SendLink(ctx, kind, id.Email, token); err != nil {
		return fmt.Errorf("deliver %s link: %w", kind, err)
	}
	return nil
}
