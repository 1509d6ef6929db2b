package users

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*User{}}
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeUserRepo) List(_ context.Context) ([]User, error) {
	var out []User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) ListRecipientIDs(_ context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, u := range f.users {
		if u.IsActive && u.IsOperator() {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func (f *fakeUserRepo) Create(_ context.Context, u User) error {
	f.users[u.ID] = &u
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, u User) error {
	if _, ok := f.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	f.users[u.ID] = &u
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func newUserService(t *testing.T) (*Service, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	return NewService(repo, nil, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func createRequest(username string, role Role) CreateUserRequest {
	return CreateUserRequest{
		Username:        username,
		Email:           username + "@example.md",
		Password:        "parola-sigura",
		PasswordConfirm: "parola-sigura",
		Role:            role,
	}
}

func TestCreateHashesPassword(t *testing.T) {
	svc, _ := newUserService(t)

	user, err := svc.Create(context.Background(), createRequest("operator1", RoleOperator), uuid.New())
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.PasswordHash == "parola-sigura" {
		t.Fatal("password stored in clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("parola-sigura")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
	if !user.IsActive {
		t.Fatal("new users must start active")
	}
}

func TestCreateRejectsMismatchedPasswords(t *testing.T) {
	svc, _ := newUserService(t)
	req := createRequest("operator1", RoleOperator)
	req.PasswordConfirm = "altceva"
	if _, err := svc.Create(context.Background(), req, uuid.New()); err == nil {
		t.Fatal("expected error for mismatched passwords")
	}
}

func TestCreateRejectsDuplicateUsername(t *testing.T) {
	svc, _ := newUserService(t)
	if _, err := svc.Create(context.Background(), createRequest("operator1", RoleOperator), uuid.New()); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := svc.Create(context.Background(), createRequest("operator1", RoleAdmin), uuid.New()); err == nil {
		t.Fatal("expected error for duplicate username")
	}
}

func TestListRecipientIDsSkipsViewersAndInactive(t *testing.T) {
	svc, repo := newUserService(t)

	operator, err := svc.Create(context.Background(), createRequest("operator1", RoleOperator), uuid.New())
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	admin, err := svc.Create(context.Background(), createRequest("admin1", RoleAdmin), uuid.New())
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := svc.Create(context.Background(), createRequest("viewer1", RoleViewer), uuid.New()); err != nil {
		t.Fatalf("create user: %v", err)
	}
	inactive, err := svc.Create(context.Background(), createRequest("operator2", RoleOperator), uuid.New())
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	repo.users[inactive.ID].IsActive = false

	ids, err := svc.ListRecipientIDs(context.Background())
	if err != nil {
		t.Fatalf("list recipients: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("recipients = %d, want 2", len(ids))
	}
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen[operator.ID] || !seen[admin.ID] {
		t.Fatal("operator and admin must both be recipients")
	}
}

func TestChangePasswordReplacesHash(t *testing.T) {
	svc, _ := newUserService(t)
	user, err := svc.Create(context.Background(), createRequest("operator1", RoleOperator), uuid.New())
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	err = svc.ChangePassword(context.Background(), user.ID, ChangePasswordRequest{
		Password:        "parola-noua-123",
		PasswordConfirm: "parola-noua-123",
	}, uuid.New())
	if err != nil {
		t.Fatalf("change password: %v", err)
	}

	updated, err := svc.Get(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("parola-noua-123")); err != nil {
		t.Fatalf("new hash does not verify: %v", err)
	}
}

func TestFullNameFallsBackToUsername(t *testing.T) {
	u := User{Username: "operator1"}
	if got := u.FullName(); got != "operator1" {
		t.Fatalf("full name = %q, want username fallback", got)
	}
	u.FirstName, u.LastName = "Ion", "Popescu"
	if got := u.FullName(); got != "Ion Popescu" {
		t.Fatalf("full name = %q, want %q", got, "Ion Popescu")
	}
}
