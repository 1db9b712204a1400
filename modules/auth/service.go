package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/chatterhq/chatter/modules/auth/emails"
	"github.com/chatterhq/chatter/modules/user"
	"github.com/chatterhq/chatter/pkg/apierr"
	"github.com/chatterhq/chatter/pkg/async"
	"github.com/chatterhq/chatter/pkg/email"
	"github.com/chatterhq/chatter/pkg/logger"
	"github.com/chatterhq/chatter/pkg/queue"
	"github.com/chatterhq/chatter/pkg/storage"
)

const (
	uidLength          = 12
	resetTokenValidity = time.Hour
)

type (
	// CredentialStore is the durable auth record store the orchestrator
	// reads and writes. *Repository is the Mongo implementation.
	CredentialStore interface {
		Create(ctx context.Context, record Record) error
		FindByUsername(ctx context.Context, username string) (Record, error)
		FindByEmail(ctx context.Context, email string) (Record, error)
		FindByUsernameOrEmail(ctx context.Context, username, email string) (Record, error)
		FindByResetToken(ctx context.Context, token string) (Record, error)
		UpdateResetToken(ctx context.Context, id, token string, expiresAt time.Time) error
		UpdatePassword(ctx context.Context, id, passwordHash string) error
	}

	// ProfileStore is the durable profile lookup used by signin and the
	// cache-miss path of CurrentUser.
	ProfileStore interface {
		FindByID(ctx context.Context, id string) (user.Profile, error)
		FindByAuthID(ctx context.Context, authID string) (user.Profile, error)
	}

	// ProfileCache mirrors profiles in Redis.
	ProfileCache interface {
		Save(ctx context.Context, userID, uid string, profile user.Profile) error
		Get(ctx context.Context, userID string) (user.Profile, error)
	}

	// TokenSigner issues session tokens.
	TokenSigner interface {
		Sign(claims any) (string, error)
	}

	// JobEnqueuer hands work to the background queue.
	JobEnqueuer interface {
		Enqueue(ctx context.Context, payload any, opts ...queue.EnqueueOption) error
	}
)

// ServiceConfig carries the orchestrator settings resolved at wiring time.
type ServiceConfig struct {
	// ClientURL is the front-end origin reset links point at.
	ClientURL string
	// TokenTTL bounds session token lifetime. Zero issues non-expiring
	// tokens.
	TokenTTL time.Duration
}

// Service orchestrates the signup, signin, password-recovery and
// current-user flows over its collaborators. All errors it returns are
// *apierr.Error values ready for the HTTP boundary.
type Service struct {
	store    CredentialStore
	profiles ProfileStore
	cache    ProfileCache
	uploader storage.Uploader
	enqueuer JobEnqueuer
	signer   TokenSigner
	cfg      ServiceConfig
	logger   *slog.Logger
}

// NewService wires the orchestrator. All collaborators are required.
func NewService(
	store CredentialStore,
	profiles ProfileStore,
	cache ProfileCache,
	uploader storage.Uploader,
	enqueuer JobEnqueuer,
	signer TokenSigner,
	cfg ServiceConfig,
	log *slog.Logger,
) (*Service, error) {
	switch {
	case store == nil:
		return nil, errors.New("auth: credential store is required")
	case profiles == nil:
		return nil, errors.New("auth: profile store is required")
	case cache == nil:
		return nil, errors.New("auth: profile cache is required")
	case uploader == nil:
		return nil, errors.New("auth: uploader is required")
	case enqueuer == nil:
		return nil, errors.New("auth: enqueuer is required")
	case signer == nil:
		return nil, errors.New("auth: token signer is required")
	case cfg.ClientURL == "":
		return nil, errors.New("auth: client URL is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:    store,
		profiles: profiles,
		cache:    cache,
		uploader: uploader,
		enqueuer: enqueuer,
		signer:   signer,
		cfg:      cfg,
		logger:   log.With(logger.Component("auth_service")),
	}, nil
}

// SignUpParams is the validated signup input. AvatarImage is the raw image
// payload, optionally wrapped in a base64 data URL.
type SignUpParams struct {
	Username    string
	Email       string
	Password    string
	AvatarColor string
	AvatarImage string
}

// SignUpResult carries what the signup response needs.
type SignUpResult struct {
	Record Record
	Token  string
}

// SignUp registers a new user. The profile is written to the cache and both
// durable writes are enqueued fire-and-forget, so the response returns
// before the new user exists in Mongo. The session token is bound to the
// profile id, not the auth record id.
func (s *Service) SignUp(ctx context.Context, params SignUpParams) (SignUpResult, error) {
	_, err := s.store.FindByUsernameOrEmail(ctx, params.Username, params.Email)
	if err == nil {
		return SignUpResult{}, apierr.BadRequest("Duplicate username or id")
	}
	if !errors.Is(err, ErrNotFound) {
		return SignUpResult{}, apierr.From(err)
	}

	authID := bson.NewObjectID().Hex()
	profileID := bson.NewObjectID().Hex()
	uid := GenerateUID(uidLength)

	passwordHash, err := HashPassword(params.Password)
	if err != nil {
		return SignUpResult{}, apierr.From(err)
	}

	record := Record{
		ID:          authID,
		UID:         uid,
		Username:    NormalizeUsername(params.Username),
		Email:       strings.ToLower(strings.TrimSpace(params.Email)),
		Password:    passwordHash,
		AvatarColor: params.AvatarColor,
		CreatedAt:   time.Now(),
	}

	avatar, err := decodeAvatarImage(params.AvatarImage)
	if err != nil {
		return SignUpResult{}, apierr.BadRequest("File upload: invalid image data").WithCause(err)
	}
	result, err := s.uploader.Upload(ctx, avatar, profileID, true, true)
	if err != nil || result == nil {
		return SignUpResult{}, apierr.Server("File upload error. Try again.").WithCause(err)
	}
	if result.PublicID == "" {
		return SignUpResult{}, apierr.BadRequest("File upload error. Try again.")
	}

	profile := user.NewProfile(user.NewProfileParams{
		ID:          profileID,
		AuthID:      authID,
		UID:         uid,
		Username:    record.Username,
		Email:       record.Email,
		Password:    passwordHash,
		AvatarColor: record.AvatarColor,
	})
	profile.ProfilePicture = s.uploader.URL(result.PublicID, result.Version)

	if err := s.cache.Save(ctx, profileID, uid, profile); err != nil {
		return SignUpResult{}, apierr.From(err)
	}

	s.enqueue(ctx, TaskPersistAuthRecord, PersistAuthRecordPayload{Record: record})
	s.enqueue(ctx, TaskPersistProfile, PersistProfilePayload{Profile: profile})

	token, err := s.signToken(record, profileID)
	if err != nil {
		return SignUpResult{}, apierr.From(err)
	}
	return SignUpResult{Record: record, Token: token}, nil
}

// SignInParams is the validated signin input.
type SignInParams struct {
	Username string
	Password string
}

// SignInResult carries what the signin response needs.
type SignInResult struct {
	Profile user.Profile
	Token   string
}

// SignIn authenticates a user against the durable stores. It deliberately
// skips the cache: signin reads already-durable data, unlike signup which
// writes straight to the cache.
func (s *Service) SignIn(ctx context.Context, params SignInParams) (SignInResult, error) {
	record, err := s.store.FindByUsername(ctx, params.Username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return SignInResult{}, apierr.NotFound("Cannot find this username")
		}
		return SignInResult{}, apierr.From(err)
	}

	if !ComparePassword(params.Password, record.Password) {
		return SignInResult{}, apierr.Unauthorized("Invalid password")
	}

	profile, err := s.profiles.FindByAuthID(ctx, record.ID)
	if err != nil {
		return SignInResult{}, apierr.From(err)
	}

	token, err := s.signToken(record, profile.ID)
	if err != nil {
		return SignInResult{}, apierr.From(err)
	}
	return SignInResult{Profile: profile, Token: token}, nil
}

// ForgotPassword issues a reset token valid for one hour and enqueues the
// reset email. The token is persisted before the email is emitted, so a
// dropped email job never strands the user with a link the store does not
// know about.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	record, err := s.store.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apierr.NotFound("Cannot find this email")
		}
		return apierr.From(err)
	}

	token, err := GenerateResetToken()
	if err != nil {
		return apierr.From(err)
	}
	if err := s.store.UpdateResetToken(ctx, record.ID, token, time.Now().Add(resetTokenValidity)); err != nil {
		return apierr.From(err)
	}

	body, err := emails.ForgotPassword(emails.ForgotPasswordParams{
		Username:  record.Username,
		ResetLink: s.cfg.ClientURL + "/reset-password?token=" + token,
	})
	if err != nil {
		return apierr.From(err)
	}

	s.enqueue(ctx, TaskSendEmail, email.SendEmailParams{
		SendTo:   record.Email,
		Subject:  "Reset your password",
		BodyHTML: body,
		Tag:      "forgot-password",
	})
	return nil
}

// ResetPassword consumes a reset token, stores the new password hash and
// enqueues a confirmation email stamped with the caller's address.
func (s *Service) ResetPassword(ctx context.Context, token, password, confirmPassword, ipAddress string) error {
	if password != confirmPassword {
		return apierr.BadRequest("Passwords do not match")
	}

	record, err := s.store.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apierr.NotFound("Cannot find Auth User")
		}
		return apierr.From(err)
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return apierr.From(err)
	}
	if err := s.store.UpdatePassword(ctx, record.ID, passwordHash); err != nil {
		return apierr.From(err)
	}

	body, err := emails.ResetConfirmation(emails.ResetConfirmationParams{
		Username:  record.Username,
		Email:     record.Email,
		Date:      time.Now().Format("02/01/06"),
		IPAddress: ipAddress,
	})
	if err != nil {
		return apierr.From(err)
	}

	s.enqueue(ctx, TaskSendEmail, email.SendEmailParams{
		SendTo:   record.Email,
		Subject:  "Reset your password confirmation",
		BodyHTML: body,
		Tag:      "reset-password",
	})
	return nil
}

// CurrentUser resolves the authenticated user's profile, cache first then
// Mongo. A user missing from both reports found=false rather than an error:
// right after signout-and-expiry edge cases the client relies on isUser to
// decide whether a session is still usable.
func (s *Service) CurrentUser(ctx context.Context, userID string) (user.Profile, bool, error) {
	profile, err := s.cache.Get(ctx, userID)
	if err != nil {
		return user.Profile{}, false, apierr.From(err)
	}
	if profile.IsEmpty() {
		profile, err = s.profiles.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return user.Profile{}, false, nil
			}
			return user.Profile{}, false, apierr.From(err)
		}
	}
	return profile, !profile.IsEmpty(), nil
}

func (s *Service) signToken(record Record, userID string) (string, error) {
	return s.signer.Sign(NewClaims(record, userID, s.cfg.TokenTTL))
}

// enqueue emits a job without awaiting the queue write. Failures are logged
// and dropped; the durable unique index and full-overwrite cache semantics
// keep a retried signup safe.
func (s *Service) enqueue(ctx context.Context, taskName string, payload any) {
	ctx = context.WithoutCancel(ctx)
	async.Async(ctx, payload, func(ctx context.Context, p any) (struct{}, error) {
		if err := s.enqueuer.Enqueue(ctx, p, queue.WithTaskName(taskName)); err != nil {
			s.logger.ErrorContext(ctx, "failed to enqueue job",
				slog.String("task", taskName), logger.Error(err))
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
}

// decodeAvatarImage accepts either a bare base64 payload or a full
// "data:image/png;base64,..." data URL.
func decodeAvatarImage(image string) ([]byte, error) {
	if idx := strings.IndexByte(image, ','); idx >= 0 && strings.HasPrefix(image, "data:") {
		image = image[idx+1:]
	}
	return base64.StdEncoding.DecodeString(image)
}
