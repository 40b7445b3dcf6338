package application

import (
	"context"
	"fmt"
	"testing"

	"ralli/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo mirrors the database rules: one pending application per applicant
// and per slug, and atomic approval.
type memRepo struct {
	apps   map[string]*domain.Application
	stores map[string]domain.Store
	seq    int
}

func newMemRepo() *memRepo {
	return &memRepo{apps: map[string]*domain.Application{}, stores: map[string]domain.Store{}}
}

func (m *memRepo) Create(_ context.Context, a domain.Application) (*domain.Application, error) {
	for _, existing := range m.apps {
		if existing.Status != domain.StatusPending {
			continue
		}
		if existing.ApplicantID == a.ApplicantID {
			return nil, domain.Conflict("you already have a pending application")
		}
		if existing.Slug == a.Slug {
			return nil, domain.Conflict("slug is already taken")
		}
	}
	m.seq++
	a.ID = fmt.Sprintf("app-%d", m.seq)
	m.apps[a.ID] = &a
	out := a
	return &out, nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*domain.Application, error) {
	a, ok := m.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (m *memRepo) HasPending(_ context.Context, applicantID string) (bool, error) {
	for _, a := range m.apps {
		if a.ApplicantID == applicantID && a.Status == domain.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) SlugInUse(_ context.Context, slug string) (bool, error) {
	for _, s := range m.stores {
		if s.Slug == slug {
			return true, nil
		}
	}
	for _, a := range m.apps {
		if a.Slug == slug && a.Status == domain.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) List(_ context.Context, status string) ([]domain.Application, error) {
	out := []domain.Application{}
	for _, a := range m.apps {
		if status == "" || a.Status == status {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memRepo) Approve(_ context.Context, id, reviewerID string) (*domain.Application, *domain.Store, error) {
	a, ok := m.apps[id]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	if a.Status != domain.StatusPending {
		return nil, nil, domain.StateConflict("application is already " + a.Status)
	}
	for _, s := range m.stores {
		if s.Slug == a.Slug {
			return nil, nil, domain.Conflict("slug is already taken")
		}
	}
	st := domain.Store{ID: "store-" + id, OwnerID: a.ApplicantID, Slug: a.Slug, Status: domain.StatusApproved, IsActive: true}
	m.stores[st.ID] = st
	a.Status = domain.StatusApproved
	a.ReviewedBy = &reviewerID
	a.StoreID = &st.ID
	out := *a
	return &out, &st, nil
}

func (m *memRepo) Reject(_ context.Context, id, reviewerID, reason string) (*domain.Application, error) {
	a, ok := m.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if a.Status != domain.StatusPending {
		return nil, domain.StateConflict("application is already " + a.Status)
	}
	a.Status = domain.StatusRejected
	a.ReviewedBy = &reviewerID
	a.RejectionReason = &reason
	out := *a
	return &out, nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	a, ok := m.apps[id]
	if !ok {
		return domain.ErrNotFound
	}
	if a.Status == domain.StatusApproved {
		return domain.StateConflict("application is already approved")
	}
	delete(m.apps, id)
	return nil
}

var (
	applicant = domain.Identity{UserID: "user_1", Email: "owner@shop.test", Role: domain.RoleAuthenticated}
	admin     = domain.Identity{UserID: "user_admin", Email: "ops@ralli.io", Role: domain.RolePlatformAdmin}
)

func validInput() SubmitInput {
	return SubmitInput{BusinessName: "Baseline Strings", Slug: "baseline", OwnerEmail: "Owner@Shop.test"}
}

func TestSubmit_Created(t *testing.T) {
	repo := newMemRepo()
	svc := New(repo, repo, zerolog.Nop())

	app, err := svc.Submit(context.Background(), applicant, validInput())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, app.Status)
	assert.Equal(t, "owner@shop.test", app.OwnerEmail)
	assert.Nil(t, app.StoreID)
}

func TestSubmit_Rejections(t *testing.T) {
	var verr *domain.ValidationError
	cases := []struct {
		name  string
		actor domain.Identity
		mod   func(*SubmitInput)
		check func(t *testing.T, err error)
	}{
		{"anonymous", domain.Anonymous, nil, func(t *testing.T, err error) { assert.ErrorIs(t, err, domain.ErrUnauthenticated) }},
		{"missing name", applicant, func(in *SubmitInput) { in.BusinessName = " " }, func(t *testing.T, err error) { assert.ErrorAs(t, err, &verr) }},
		{"bad slug", applicant, func(in *SubmitInput) { in.Slug = "Bad_Slug!" }, func(t *testing.T, err error) { assert.ErrorAs(t, err, &verr) }},
		{"uppercase slug", applicant, func(in *SubmitInput) { in.Slug = "Ace-Strings" }, func(t *testing.T, err error) { assert.ErrorAs(t, err, &verr) }},
		{"reserved slug", applicant, func(in *SubmitInput) { in.Slug = "dashboard" }, func(t *testing.T, err error) { assert.ErrorAs(t, err, &verr) }},
		{"email mismatch", applicant, func(in *SubmitInput) { in.OwnerEmail = "someone@else.test" }, func(t *testing.T, err error) { assert.ErrorIs(t, err, domain.ErrForbidden) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemRepo()
			svc := New(repo, repo, zerolog.Nop())
			in := validInput()
			if tc.mod != nil {
				tc.mod(&in)
			}
			_, err := svc.Submit(context.Background(), tc.actor, in)
			tc.check(t, err)
			assert.Empty(t, repo.apps)
		})
	}
}

func TestSubmit_OnePendingPerApplicant(t *testing.T) {
	repo := newMemRepo()
	svc := New(repo, repo, zerolog.Nop())

	_, err := svc.Submit(context.Background(), applicant, validInput())
	require.NoError(t, err)

	second := validInput()
	second.Slug = "another-shop"
	_, err = svc.Submit(context.Background(), applicant, second)

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.EqualError(t, err, "you already have a pending application")
}

func TestSubmit_SlugTakenByPending(t *testing.T) {
	repo := newMemRepo()
	svc := New(repo, repo, zerolog.Nop())
	_, err := svc.Submit(context.Background(), applicant, validInput())
	require.NoError(t, err)

	other := domain.Identity{UserID: "user_2", Email: "two@shop.test", Role: domain.RoleAuthenticated}
	in := validInput()
	in.OwnerEmail = "two@shop.test"
	_, err = svc.Submit(context.Background(), other, in)

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestApprove_CreatesStoreOnce(t *testing.T) {
	repo := newMemRepo()
	svc := New(repo, repo, zerolog.Nop())
	app, err := svc.Submit(context.Background(), applicant, validInput())
	require.NoError(t, err)

	approved, st, err := svc.Approve(context.Background(), admin, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)
	require.NotNil(t, approved.StoreID)
	assert.Equal(t, st.ID, *approved.StoreID)
	assert.True(t, st.IsActive)

	_, _, err = svc.Approve(context.Background(), admin, app.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Len(t, repo.stores, 1)

	_, err = svc.Reject(context.Background(), admin, app.ID, "changed my mind")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Len(t, repo.stores, 1)
	assert.Equal(t, domain.StatusApproved, repo.apps[app.ID].Status)
	assert.Nil(t, repo.apps[app.ID].RejectionReason)
}

func TestGet(t *testing.T) {
	repo := newMemRepo()
	svc := New(repo, repo, zerolog.Nop())
	app, err := svc.Submit(context.Background(), applicant, validInput())
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), admin, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "baseline", got.Slug)

	_, err = svc.Get(context.Background(), applicant, app.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.Get(context.Background(), admin, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApprove_RequiresAdmin(t *testing.T) {
	repo := newMemRepo()
	svc := New(repo, repo, zerolog.Nop())
	app, err := svc.Submit(context.Background(), applicant, validInput())
	require.NoError(t, err)

	_, _, err = svc.Approve(context.Background(), applicant, app.ID)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, repo.stores)
}

func TestReject(t *testing.T) {
	repo := newMemRepo()
	svc := New(repo, repo, zerolog.Nop())
	app, err := svc.Submit(context.Background(), applicant, validInput())
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), admin, app.ID, "  ")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	rejected, err := svc.Reject(context.Background(), admin, app.ID, "duplicate shop")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "duplicate shop", *rejected.RejectionReason)

	_, err = svc.Reject(context.Background(), admin, app.ID, "again")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestListAndDelete(t *testing.T) {
	repo := newMemRepo()
	svc := New(repo, repo, zerolog.Nop())
	app, err := svc.Submit(context.Background(), applicant, validInput())
	require.NoError(t, err)

	_, err = svc.List(context.Background(), admin, "archived")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	pending, err := svc.List(context.Background(), admin, "PENDING")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, _, err = svc.Approve(context.Background(), admin, app.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Delete(context.Background(), admin, app.ID), domain.ErrInvalidState)
	assert.ErrorIs(t, svc.Delete(context.Background(), admin, "missing"), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), applicant, app.ID), domain.ErrForbidden)
}
