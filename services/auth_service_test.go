package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/pitch-tracker/models"
	"github.com/Dosada05/pitch-tracker/repositories"
	"github.com/Dosada05/pitch-tracker/utils"
	"golang.org/x/crypto/bcrypt"
)

type fakeProfileRepo struct {
	mu        sync.Mutex
	profiles  map[string]models.Profile
	createErr []error
	creates   int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]models.Profile)}
}

func (r *fakeProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if len(r.createErr) > 0 {
		err := r.createErr[0]
		r.createErr = r.createErr[1:]
		if err != nil {
			return err
		}
	}
	for _, p := range r.profiles {
		if p.Email == profile.Email {
			return repositories.ErrProfileEmailConflict
		}
	}
	profile.CreatedAt = time.Now()
	r.profiles[profile.ID] = *profile
	return nil
}

func (r *fakeProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	return &p, nil
}

func (r *fakeProfileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, repositories.ErrProfileNotFound
}

func (r *fakeProfileRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

type adminList []string

func (l adminList) IsAdminEmail(email string) bool {
	for _, a := range l {
		if strings.EqualFold(a, email) {
			return true
		}
	}
	return false
}

func newAuthFixture(t *testing.T) (*fakeProfileRepo, AuthService, TokenService) {
	t.Helper()
	utils.BcryptCost = bcrypt.MinCost
	repo := newFakeProfileRepo()
	tokens := NewTokenService("test-secret", time.Hour)
	policy := RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
	return repo, NewAuthService(repo, tokens, adminList{"head@x.com"}, policy, discardLogger()), tokens
}

func TestSignupStampsAdminFlag(t *testing.T) {
	_, svc, _ := newAuthFixture(t)

	p, err := svc.Signup(context.Background(), SignupInput{Email: " Head@X.com ", Password: "pw"})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if !p.IsAdmin || p.Email != "head@x.com" {
		t.Errorf("profile = %+v, want admin head@x.com", p)
	}
	if p.PasswordHash == "pw" {
		t.Error("password must be hashed")
	}

	q, err := svc.Signup(context.Background(), SignupInput{Email: "coach@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if q.IsAdmin {
		t.Error("coach must not be admin")
	}
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	_, svc, _ := newAuthFixture(t)
	in := SignupInput{Email: "coach@x.com", Password: "pw"}
	if _, err := svc.Signup(context.Background(), in); err != nil {
		t.Fatalf("first Signup() error = %v", err)
	}
	if _, err := svc.Signup(context.Background(), in); !errors.Is(err, ErrProfileEmailConflict) {
		t.Errorf("err = %v, want ErrProfileEmailConflict", err)
	}
}

func TestSignupRetriesTransientInsertFailures(t *testing.T) {
	repo, svc, _ := newAuthFixture(t)
	repo.createErr = []error{errors.New("connection reset"), errors.New("connection reset")}

	if _, err := svc.Signup(context.Background(), SignupInput{Email: "coach@x.com", Password: "pw"}); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if repo.creates != 3 {
		t.Errorf("create attempts = %d, want 3", repo.creates)
	}
}

func TestSignupGivesUpAfterMaxAttempts(t *testing.T) {
	repo, svc, _ := newAuthFixture(t)
	boom := errors.New("connection reset")
	repo.createErr = []error{boom, boom, boom, boom}

	_, err := svc.Signup(context.Background(), SignupInput{Email: "coach@x.com", Password: "pw"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped transient error", err)
	}
	if repo.creates != 3 {
		t.Errorf("create attempts = %d, want 3", repo.creates)
	}
}

func TestSignupRequiresFields(t *testing.T) {
	_, svc, _ := newAuthFixture(t)
	if _, err := svc.Signup(context.Background(), SignupInput{}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	_, svc, tokens := newAuthFixture(t)
	p, err := svc.Signup(context.Background(), SignupInput{Email: "coach@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	if _, err := svc.Login(context.Background(), LoginInput{Email: "coach@x.com", Password: "nope"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginInput{Email: "ghost@x.com", Password: "pw"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v", err)
	}

	res, err := svc.Login(context.Background(), LoginInput{Email: "COACH@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.Profile.PasswordHash != "" {
		t.Error("password hash must not leave the service")
	}
	claims, err := tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Subject != p.ID || claims.Email != "coach@x.com" {
		t.Errorf("claims = %+v", claims)
	}

	principal, err := svc.ResolvePrincipal(context.Background(), claims.Subject)
	if err != nil {
		t.Fatalf("ResolvePrincipal() error = %v", err)
	}
	if principal.Email != "coach@x.com" || principal.IsAdmin {
		t.Errorf("principal = %+v", principal)
	}
}

func TestResolvePrincipalUnknownProfile(t *testing.T) {
	_, svc, _ := newAuthFixture(t)
	for _, id := range []string{"not-a-uuid", "44444444-4444-4444-4444-444444444444"} {
		if _, err := svc.ResolvePrincipal(context.Background(), id); !errors.Is(err, ErrAuthenticationFailed) {
			t.Errorf("ResolvePrincipal(%q) err = %v", id, err)
		}
	}
}

func TestVerifyRejectsForeignAndExpiredTokens(t *testing.T) {
	profile := &models.Profile{ID: "11111111-1111-1111-1111-111111111111", Email: "coach@x.com"}

	other := NewTokenService("other-secret", time.Hour)
	token, _, err := other.Issue(profile)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := NewTokenService("test-secret", time.Hour).Verify(token); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("foreign secret err = %v", err)
	}

	expired := NewTokenService("test-secret", time.Hour).(*jwtTokenService)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err = expired.Issue(profile)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := expired.Verify(token); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("expired token err = %v", err)
	}
}
