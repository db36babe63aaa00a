package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youssefsiam38/motoadmin"
	"github.com/youssefsiam38/motoadmin/auth"
	"github.com/youssefsiam38/motoadmin/hooks"
	"github.com/youssefsiam38/motoadmin/internal/testutil"
	"github.com/youssefsiam38/motoadmin/storage"
)

type fixture struct {
	api   *testutil.FakeAPI
	svc   *Service
	store *storage.MemoryStore
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	api := testutil.NewFakeAPI(t)
	api.AddUser(&motoadmin.User{Name: "Ada", Email: "ada@example.com", Role: motoadmin.RoleAdmin}, "secret1")

	client, err := motoadmin.NewClient(&motoadmin.ClientConfig{BaseURL: api.URL(), Timeout: 5 * time.Second})
	require.NoError(t, err)
	login, err := client.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)

	store := storage.NewMemoryStore()
	reg := hooks.NewRegistry()
	hooks.NewAuditHooks(store).Register(reg)

	ctx := auth.WithSession(context.Background(), &storage.Session{
		ID:    "s1",
		Token: login.Token,
		Email: "ada@example.com",
		Role:  "admin",
	})
	return &fixture{
		api:   api,
		svc:   New(client, store, &Config{Hooks: reg}),
		store: store,
		ctx:   ctx,
	}
}

func (f *fixture) seedMotorcycles(n int) {
	for i := 1; i <= n; i++ {
		status := motoadmin.MotorcycleAvailable
		if i%3 == 0 {
			status = motoadmin.MotorcycleRented
		}
		f.api.AddMotorcycle(&motoadmin.Motorcycle{
			Name:      fmt.Sprintf("Bike %02d", i),
			Brand:     []string{"Honda", "Yamaha"}[i%2],
			RentPrice: float64(20 + i),
			Status:    status,
		})
	}
}

func TestListMotorcycles(t *testing.T) {
	f := newFixture(t)
	f.seedMotorcycles(12)

	page, err := f.svc.ListMotorcycles(f.ctx, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 5)
	assert.Equal(t, "Bike 06", page.Items[0].Name)
	assert.Equal(t, 6, page.Number(0))
	assert.True(t, page.HasPrev())
	assert.True(t, page.HasNext())
	assert.Equal(t, []int{1, 2, 3}, page.Pages())
}

func TestListMotorcycles_Search(t *testing.T) {
	f := newFixture(t)
	f.seedMotorcycles(12)

	page, err := f.svc.ListMotorcycles(f.ctx, 1, "  HONDA ")
	require.NoError(t, err)
	assert.Equal(t, "HONDA", page.Search)
	for _, m := range page.Items {
		assert.Equal(t, "Honda", m.Brand)
	}

	page, err = f.svc.ListMotorcycles(f.ctx, 1, "rented")
	require.NoError(t, err)
	assert.Len(t, page.Items, 4)
}

func TestListMotorcycles_PagePastEndIsClamped(t *testing.T) {
	f := newFixture(t)
	f.seedMotorcycles(7)

	page, err := f.svc.ListMotorcycles(f.ctx, 9, "")
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Items, 2)
	assert.False(t, page.HasNext())
}

func TestListMotorcycles_Empty(t *testing.T) {
	f := newFixture(t)

	page, err := f.svc.ListMotorcycles(f.ctx, 3, "")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
}

func TestMotorcycleMutations_AreAudited(t *testing.T) {
	f := newFixture(t)

	m, err := f.svc.AddMotorcycle(f.ctx, &motoadmin.MotorcycleInput{Name: "CBR", Brand: "Honda", RentPrice: 40})
	require.NoError(t, err)

	_, err = f.svc.UpdateMotorcycle(f.ctx, m.ID, &motoadmin.MotorcycleInput{Name: "CBR 600", Brand: "Honda", RentPrice: 45})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteMotorcycle(f.ctx, m.ID, "CBR 600"))

	f.api.Fail("delete", http.StatusInternalServerError, "")
	err = f.svc.DeleteMotorcycle(f.ctx, "m-missing", "")
	require.Error(t, err)
	assert.Equal(t, "Failed to delete motorcycle", motoadmin.UserMessage(err))

	entries, err := f.store.ListAudit(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, hooks.ActionDeleteMotorcycle, entries[0].Action)
	assert.Equal(t, storage.AuditFailed, entries[0].Status)
	assert.Equal(t, "m-missing", entries[0].Subject)

	assert.Equal(t, hooks.ActionDeleteMotorcycle, entries[1].Action)
	assert.Equal(t, "CBR 600", entries[1].Subject)
	assert.Equal(t, hooks.ActionUpdateMotorcycle, entries[2].Action)
	assert.Equal(t, hooks.ActionAddMotorcycle, entries[3].Action)
	assert.Equal(t, "ada@example.com", entries[3].Actor)
	assert.Equal(t, storage.AuditCompleted, entries[3].Status)
}

func TestAddMotorcycle_ValidationIsNotAudited(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddMotorcycle(f.ctx, &motoadmin.MotorcycleInput{Brand: "Honda"})
	require.Error(t, err)
	assert.Equal(t, "Motorcycle name is required", motoadmin.UserMessage(err))

	entries, err := f.store.ListAudit(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUsers(t *testing.T) {
	f := newFixture(t)
	for i := 1; i <= 6; i++ {
		f.api.AddUser(&motoadmin.User{Name: fmt.Sprintf("Rider %d", i), Email: fmt.Sprintf("rider%d@example.com", i), Role: motoadmin.RoleUser}, "")
	}

	page, err := f.svc.ListUsers(f.ctx, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)

	page, err = f.svc.ListUsers(f.ctx, 1, "rider3@")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	target := page.Items[0]
	assert.False(t, target.IsVerified)

	u, err := f.svc.VerifyUser(f.ctx, target.ID)
	require.NoError(t, err)
	assert.True(t, u.IsVerified)

	entries, err := f.store.ListAudit(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, hooks.ActionVerifyUser, entries[0].Action)
	assert.Equal(t, "rider3@example.com", entries[0].Subject)
}

func TestListRentals_LocalFilterAndPagination(t *testing.T) {
	f := newFixture(t)
	for i := 1; i <= 7; i++ {
		f.api.AddRental(&motoadmin.Rental{
			UserEmail:         fmt.Sprintf("rider%d@example.com", i),
			MotorcycleName:    fmt.Sprintf("Bike %d", i),
			MotorcycleCompany: []string{"Honda", "Ducati"}[i%2],
			Status:            motoadmin.RentalActive,
			TotalCost:         100,
		})
	}

	page, err := f.svc.ListRentals(f.ctx, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 7, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 6, page.Number(0))

	page, err = f.svc.ListRentals(f.ctx, 1, "ducati")
	require.NoError(t, err)
	assert.Equal(t, 4, page.TotalCount)

	page, err = f.svc.ListRentals(f.ctx, 5, "RIDER7")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Bike 7", page.Items[0].MotorcycleName)

	// A search can run from the motorcycle name into the company.
	page, err = f.svc.ListRentals(f.ctx, 1, "bike 3 ducati")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "rider3@example.com", page.Items[0].UserEmail)

	page, err = f.svc.ListRentals(f.ctx, 1, "nobody")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalPages)
}

func TestReturnMotorcycle(t *testing.T) {
	f := newFixture(t)
	r := f.api.AddRental(&motoadmin.Rental{UserEmail: "rider@example.com", MotorcycleName: "Monster", Status: motoadmin.RentalActive})

	got, err := f.svc.ReturnMotorcycle(f.ctx, r.ID, "")
	require.NoError(t, err)
	assert.Equal(t, motoadmin.RentalReturned, got.Status)

	_, err = f.svc.ReturnMotorcycle(f.ctx, r.ID, "Monster")
	require.Error(t, err)
	assert.Equal(t, "Motorcycle already returned", motoadmin.UserMessage(err))

	entries, err := f.store.ListAudit(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, storage.AuditFailed, entries[0].Status)
	assert.Equal(t, "Monster", entries[1].Subject)
}

func TestGetDashboard(t *testing.T) {
	f := newFixture(t)
	f.api.SetStats(&motoadmin.DashboardStats{TotalUsers: 4, TotalMotorcycles: 10, RentedPercentage: 30})
	require.NoError(t, f.store.RecordAudit(context.Background(), &storage.AuditEntry{Actor: "ada@example.com", Action: hooks.ActionLogin}))

	d, err := f.svc.GetDashboard(f.ctx)
	require.NoError(t, err)
	assert.False(t, d.StatsUnavailable)
	assert.Equal(t, 10, d.Stats.TotalMotorcycles)
	assert.Equal(t, 30.0, d.Stats.RentedPercentage)
	require.Len(t, d.Activities, 1)
}

func TestGetDashboard_StatsFailureShowsZeros(t *testing.T) {
	f := newFixture(t)
	f.api.SetStats(&motoadmin.DashboardStats{TotalUsers: 4})
	f.api.Fail("stats", http.StatusInternalServerError, "boom")

	d, err := f.svc.GetDashboard(f.ctx)
	require.NoError(t, err)
	assert.True(t, d.StatsUnavailable)
	assert.Equal(t, motoadmin.DashboardStats{}, d.Stats)
	assert.NotNil(t, d.Activities)
}

func TestGetDashboard_RejectedTokenIsReturned(t *testing.T) {
	f := newFixture(t)
	f.api.RevokeTokens()

	_, err := f.svc.GetDashboard(f.ctx)
	require.Error(t, err)
	assert.True(t, motoadmin.IsAuthError(err))
}

func TestListActivities_NoStore(t *testing.T) {
	svc := New(nil, nil, nil)
	entries, err := svc.ListActivities(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, DefaultPageSize, svc.PageSize())
}
