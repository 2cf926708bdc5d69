package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/policysignoff/internal/clock"
	"github.com/dmitrijs2005/policysignoff/internal/common"
	"github.com/dmitrijs2005/policysignoff/internal/server/models"
	"github.com/dmitrijs2005/policysignoff/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPolicyService(rm *fakeRepoManager, clk clock.Clock, loc *time.Location) *PolicyService {
	return NewPolicyService(nil, rm, validate.New(), clk, loc)
}

func mustCreate(t *testing.T, s *PolicyService, userID int64, title, due string) *models.Policy {
	t.Helper()
	p, err := s.Create(context.Background(), userID, CreatePolicyInput{Title: title, Description: "d", DueDate: due})
	require.NoError(t, err)
	return p
}

func TestCreate_Success(t *testing.T) {
	rm := newFakeRepoManager()
	jane := rm.users.add("Jane Admin")
	s := newPolicyService(rm, clock.Fake(t0), nil)

	p := mustCreate(t, s, jane.ID, "  HIPAA Annual Training ", "2026-03-15")
	assert.Equal(t, "HIPAA Annual Training", p.Title)
	assert.Equal(t, "Jane Admin", p.CreatorName)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), p.DueDate)
	assert.False(t, p.HasFile())
}

func TestCreate_DueDateToday(t *testing.T) {
	rm := newFakeRepoManager()
	u := rm.users.add("u")
	s := newPolicyService(rm, clock.Fake(t0), nil)

	mustCreate(t, s, u.ID, "today", "2026-02-15")

	_, err := s.Create(context.Background(), u.ID, CreatePolicyInput{Title: "past", Description: "d", DueDate: "2026-02-14"})
	var ve *common.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, []string{"The due date must be a date after or equal to today."}, ve.Fields["due_date"])
}

func TestCreate_TodayFollowsLocation(t *testing.T) {
	rm := newFakeRepoManager()
	u := rm.users.add("u")
	// 23:30 UTC on the 15th is already the 16th two hours east.
	clk := clock.Fake(time.Date(2026, 2, 15, 23, 30, 0, 0, time.UTC))
	s := newPolicyService(rm, clk, time.FixedZone("EET", 2*3600))

	_, err := s.Create(context.Background(), u.ID, CreatePolicyInput{Title: "x", Description: "d", DueDate: "2026-02-15"})
	var ve *common.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestCreate_Validation(t *testing.T) {
	rm := newFakeRepoManager()
	s := newPolicyService(rm, clock.Fake(t0), nil)

	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	_, err := s.Create(context.Background(), 1, CreatePolicyInput{Title: string(long), DueDate: "15/03/2026"})
	var ve *common.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "title")
	assert.Contains(t, ve.Fields, "description")
	assert.Contains(t, ve.Fields, "due_date")

	_, err = s.Create(context.Background(), 1, CreatePolicyInput{Title: "Leave", Description: " \n\t ", DueDate: "2026-03-15"})
	require.True(t, errors.As(err, &ve), "blank description must be rejected, got %v", err)
	assert.Len(t, ve.Fields, 1)
	assert.Contains(t, ve.Fields, "description")

	list, err := rm.policies.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestList_StatusPerUser(t *testing.T) {
	rm := newFakeRepoManager()
	alice := rm.users.add("Alice")
	bob := rm.users.add("Bob")
	clk := clock.Fake(t0)
	s := newPolicyService(rm, clk, nil)
	ctx := context.Background()

	late := mustCreate(t, s, alice.ID, "late", "2026-02-16")
	soon := mustCreate(t, s, alice.ID, "soon", "2026-02-15")

	_, err := s.SignOff(ctx, alice.ID, late.ID)
	require.NoError(t, err)

	clk.Set(time.Date(2026, 2, 20, 8, 0, 0, 0, time.UTC))

	got, err := s.List(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, soon.ID, got[0].Policy.ID, "ordered by due date")
	assert.True(t, got[0].Overdue)
	assert.True(t, got[1].Overdue)

	got, err = s.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, got[1].Overdue)
	assert.True(t, got[1].Signed)
}

func TestGet_DetailCoversAllUsers(t *testing.T) {
	rm := newFakeRepoManager()
	var ids []int64
	for _, n := range []string{"Jane", "Mike", "Alice", "Bob", "Charlie", "Dana"} {
		ids = append(ids, rm.users.add(n).ID)
	}
	clk := clock.Fake(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	s := newPolicyService(rm, clk, nil)
	p := mustCreate(t, s, ids[0], "Handbook", "2026-01-15")

	clk.Set(time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC))

	d, err := s.Get(context.Background(), ids[0], p.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, d.Summary.TotalUsers)
	assert.Len(t, d.Summary.Rows, 6)
	assert.Equal(t, 0, d.Summary.SignedCount)
	for _, r := range d.Summary.Rows {
		assert.True(t, r.Overdue)
	}
	assert.True(t, d.Overdue)
	assert.Equal(t, "Jane", d.Policy.CreatorName)
}

func TestGet_NotFound(t *testing.T) {
	s := newPolicyService(newFakeRepoManager(), clock.Fake(t0), nil)

	_, err := s.Get(context.Background(), 1, 42)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSignOff_TwiceConflictsAndKeepsTimestamp(t *testing.T) {
	rm := newFakeRepoManager()
	u := rm.users.add("Alice")
	clk := clock.Fake(time.Date(2026, 2, 10, 9, 15, 0, 123456789, time.UTC))
	s := newPolicyService(rm, clk, nil)
	p := mustCreate(t, s, u.ID, "Handbook", "2026-03-01")
	ctx := context.Background()

	first, err := s.SignOff(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 10, 9, 15, 0, 123456000, time.UTC), first.SignedAt)

	clk.Advance(time.Hour)
	_, err = s.SignOff(ctx, u.ID, p.ID)
	assert.ErrorIs(t, err, common.ErrConflict)

	rows, err := rm.signoffs.ListByPolicy(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].SignedAt.Equal(first.SignedAt))
}

func TestSignOff_Concurrent(t *testing.T) {
	rm := newFakeRepoManager()
	u := rm.users.add("Alice")
	s := newPolicyService(rm, clock.Fake(t0), nil)
	p := mustCreate(t, s, u.ID, "Handbook", "2026-03-01")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.SignOff(context.Background(), u.ID, p.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, common.ErrConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
}

func TestSignOff_UnknownPolicy(t *testing.T) {
	rm := newFakeRepoManager()
	u := rm.users.add("Alice")
	s := newPolicyService(rm, clock.Fake(t0), nil)

	_, err := s.SignOff(context.Background(), u.ID, 404)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestList_RepoErrors(t *testing.T) {
	rm := newFakeRepoManager()
	s := newPolicyService(rm, clock.Fake(t0), nil)

	rm.signoffs.err = errBoom
	_, err := s.List(context.Background(), 1)
	assert.ErrorIs(t, err, errBoom)

	rm.policies.err = errBoom
	_, err = s.List(context.Background(), 1)
	assert.ErrorIs(t, err, errBoom)
}
