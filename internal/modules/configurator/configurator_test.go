package configurator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental/internal/modules/fleet"
	"carrental/internal/modules/payment"
	"carrental/internal/modules/pricing"
	"carrental/internal/modules/rental"
	"carrental/internal/types"
)

type fakeFleet struct {
	all  []fleet.Vehicle
	free []fleet.Vehicle
	err  error
}

func (f *fakeFleet) ListVehicles(context.Context) ([]fleet.Vehicle, error) {
	return f.all, f.err
}

func (f *fakeFleet) FreeVehicles(context.Context, types.Date, types.Date) ([]fleet.Vehicle, error) {
	return f.free, f.err
}

type fakeRentals struct {
	frequent map[int64]bool
	taken    map[int64]bool
	created  []rental.CreateCommand
}

func (f *fakeRentals) IsFrequentCustomer(_ context.Context, userID int64) (bool, error) {
	return f.frequent[userID], nil
}

func (f *fakeRentals) Create(_ context.Context, cmd rental.CreateCommand) (*rental.Rental, error) {
	if f.taken[cmd.CarID] {
		return nil, rental.ErrConflict
	}
	f.created = append(f.created, cmd)
	return &rental.Rental{ID: int64(len(f.created)), CarID: cmd.CarID, UserID: cmd.UserID, Price: cmd.Price}, nil
}

// hundredCs is a category C fleet of 100 cars of which the first five are free.
func hundredCs() *fakeFleet {
	f := &fakeFleet{}
	for i := int64(1); i <= 100; i++ {
		f.all = append(f.all, fleet.Vehicle{ID: i, Category: fleet.CategoryC, Brand: "Fiat", Model: "Tipo"})
	}
	f.all = append(f.all, fleet.Vehicle{ID: 101, Category: fleet.CategoryA, Brand: "Audi", Model: "A8"})
	f.free = append(f.free, f.all[:5]...)
	f.free = append(f.free, f.all[100])
	return f
}

func request() pricing.Request {
	start := types.NewDate(2024, time.January, 1)
	return pricing.Request{
		StartDate: start,
		EndDate:   start.AddDays(5),
		Category:  fleet.CategoryC,
		DriverAge: 30,
		KmPerDay:  200,
	}
}

func card() payment.Details {
	return payment.Details{FullName: "Mario Rossi", CardNumber: "4111111111111111", CVV: "123"}
}

func newService(f Fleet, r Rentals) *Service {
	return NewService(f, r, pricing.NewService(pricing.DefaultEngine(), zerolog.Nop()), "EUR", zerolog.Nop())
}

func TestQuote(t *testing.T) {
	svc := newService(hundredCs(), &fakeRentals{})

	p, err := svc.Quote(context.Background(), 7, request())
	require.NoError(t, err)
	assert.Equal(t, types.NewMoney(347, "EUR"), p.Price)
	assert.Equal(t, 5, p.VehicleCount)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, p.CarIDs)
	assert.False(t, p.FrequentCustomer)
}

func TestQuote_FrequentCustomerDiscount(t *testing.T) {
	svc := newService(hundredCs(), &fakeRentals{frequent: map[int64]bool{7: true}})

	p, err := svc.Quote(context.Background(), 7, request())
	require.NoError(t, err)
	// 346.5 * 0.9 = 311.85
	assert.Equal(t, int64(312), p.Price.Amount)
	assert.True(t, p.FrequentCustomer)
}

func TestQuote_NothingFree(t *testing.T) {
	f := hundredCs()
	f.free = nil
	svc := newService(f, &fakeRentals{})

	p, err := svc.Quote(context.Background(), 7, request())
	require.NoError(t, err)
	assert.Equal(t, 0, p.VehicleCount)
	assert.Empty(t, p.CarIDs)
	// 0% free -> scarcity applies: 300 * 1.05 * 1.10
	assert.Equal(t, int64(347), p.Price.Amount)
}

func TestQuote_InvalidRequests(t *testing.T) {
	svc := newService(hundredCs(), &fakeRentals{})

	cases := map[string]func(*pricing.Request){
		"unknown category": func(r *pricing.Request) { r.Category = "F" },
		"missing dates":    func(r *pricing.Request) { r.StartDate = types.Date{} },
		"end before start": func(r *pricing.Request) { r.EndDate = r.StartDate.AddDays(-1) },
		"same day":         func(r *pricing.Request) { r.EndDate = r.StartDate },
		"underage":         func(r *pricing.Request) { r.DriverAge = 17 },
		"zero km":          func(r *pricing.Request) { r.KmPerDay = 0 },
		"negative extras":  func(r *pricing.Request) { r.ExtraDrivers = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := request()
			mutate(&req)
			_, err := svc.Quote(context.Background(), 7, req)
			assert.ErrorIs(t, err, ErrBadRequest)
		})
	}
}

func TestQuote_FleetError(t *testing.T) {
	svc := newService(&fakeFleet{err: errors.New("db down")}, &fakeRentals{})

	_, err := svc.Quote(context.Background(), 7, request())
	assert.EqualError(t, err, "db down")
}

func TestBook(t *testing.T) {
	rentals := &fakeRentals{}
	svc := newService(hundredCs(), rentals)
	expected := int64(347)

	r, err := svc.Book(context.Background(), BookCommand{
		UserID:        7,
		Request:       request(),
		Payment:       card(),
		ExpectedPrice: &expected,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.CarID)
	assert.Equal(t, int64(347), r.Price)
	require.Len(t, rentals.created, 1)
	assert.Equal(t, fleet.CategoryC, rentals.created[0].Category)
}

func TestBook_SkipsCarTakenConcurrently(t *testing.T) {
	rentals := &fakeRentals{taken: map[int64]bool{1: true, 2: true}}
	svc := newService(hundredCs(), rentals)

	r, err := svc.Book(context.Background(), BookCommand{UserID: 7, Request: request(), Payment: card()})
	require.NoError(t, err)
	assert.Equal(t, int64(3), r.CarID)
}

func TestBook_AllCarsTaken(t *testing.T) {
	rentals := &fakeRentals{taken: map[int64]bool{1: true, 2: true, 3: true, 4: true, 5: true}}
	svc := newService(hundredCs(), rentals)

	_, err := svc.Book(context.Background(), BookCommand{UserID: 7, Request: request(), Payment: card()})
	assert.ErrorIs(t, err, ErrNoVehicleAvailable)
}

func TestBook_Rejections(t *testing.T) {
	ctx := context.Background()

	noneFree := hundredCs()
	noneFree.free = nil
	_, err := newService(noneFree, &fakeRentals{}).Book(ctx, BookCommand{UserID: 7, Request: request(), Payment: card()})
	assert.ErrorIs(t, err, ErrNoVehicleAvailable)

	stale := int64(300)
	rentals := &fakeRentals{}
	_, err = newService(hundredCs(), rentals).Book(ctx, BookCommand{UserID: 7, Request: request(), Payment: card(), ExpectedPrice: &stale})
	assert.ErrorIs(t, err, ErrPriceChanged)
	assert.Empty(t, rentals.created)

	badCard := card()
	badCard.CVV = "12"
	_, err = newService(hundredCs(), rentals).Book(ctx, BookCommand{UserID: 7, Request: request(), Payment: badCard})
	assert.ErrorIs(t, err, payment.ErrRejected)
	assert.Empty(t, rentals.created)

	_, err = newService(hundredCs(), rentals).Book(ctx, BookCommand{Request: request(), Payment: card()})
	assert.ErrorIs(t, err, ErrBadRequest)
}
