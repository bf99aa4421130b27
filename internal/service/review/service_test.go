package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

type memReviews struct {
	rows        []domain.Review
	racingWrite bool
}

func (m *memReviews) Create(_ context.Context, rv domain.Review) (*domain.Review, error) {
	if m.racingWrite {
		return nil, domain.ErrAlreadyExists
	}
	rv.ID = "r1"
	m.rows = append(m.rows, rv)
	return &rv, nil
}

func (m *memReviews) Exists(_ context.Context, userID, productID string) (bool, error) {
	for _, r := range m.rows {
		if r.UserID == userID && r.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memReviews) ListByProduct(_ context.Context, productID string) ([]domain.Review, error) {
	var out []domain.Review
	for _, r := range m.rows {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

type products map[string]domain.Product

func (p products) GetByID(_ context.Context, id string) (*domain.Product, error) {
	v, ok := p[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

// deliveries maps user id to the products of their delivered orders.
type deliveries map[string][]string

func (d deliveries) HasDelivered(_ context.Context, userID, productID string) (bool, error) {
	for _, id := range d[userID] {
		if id == productID {
			return true, nil
		}
	}
	return false, nil
}

func setup() (*Service, *memReviews) {
	reviews := &memReviews{}
	svc := New(reviews,
		products{"p1": {ID: "p1", Name: "Mug"}, "p2": {ID: "p2", Name: "Cup"}},
		deliveries{"u1": {"p1"}},
	)
	return svc, reviews
}

func TestSubmitOncePerProduct(t *testing.T) {
	svc, reviews := setup()
	ctx := context.Background()

	rv, err := svc.Submit(ctx, "u1", SubmitInput{ProductID: "p1", Rating: 5, Comment: " great "})
	require.NoError(t, err)
	assert.Equal(t, "great", rv.Comment)

	_, err = svc.Submit(ctx, "u1", SubmitInput{ProductID: "p1", Rating: 4})
	require.ErrorIs(t, err, domain.ErrAlreadyReviewed)
	assert.Len(t, reviews.rows, 1)
}

func TestSubmitRequiresDeliveredPurchase(t *testing.T) {
	svc, _ := setup()
	ctx := context.Background()

	_, err := svc.Submit(ctx, "u1", SubmitInput{ProductID: "p2", Rating: 3})
	require.ErrorIs(t, err, domain.ErrNotEligibleToReview)

	_, err = svc.Submit(ctx, "u2", SubmitInput{ProductID: "p1", Rating: 3})
	require.ErrorIs(t, err, domain.ErrNotEligibleToReview)
}

func TestSubmitRatingRange(t *testing.T) {
	svc, _ := setup()
	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Submit(context.Background(), "u1", SubmitInput{ProductID: "p1", Rating: rating})
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr, "rating %d", rating)
		assert.Equal(t, "rating", vErr.Field)
	}
}

func TestSubmitUnknownProduct(t *testing.T) {
	svc, _ := setup()
	_, err := svc.Submit(context.Background(), "u1", SubmitInput{ProductID: "nope", Rating: 3})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmitConcurrentDuplicate(t *testing.T) {
	svc, reviews := setup()
	reviews.racingWrite = true
	_, err := svc.Submit(context.Background(), "u1", SubmitInput{ProductID: "p1", Rating: 3})
	require.ErrorIs(t, err, domain.ErrAlreadyReviewed)
}

func TestListByProduct(t *testing.T) {
	svc, _ := setup()
	ctx := context.Background()
	_, err := svc.Submit(ctx, "u1", SubmitInput{ProductID: "p1", Rating: 5})
	require.NoError(t, err)

	got, err := svc.ListByProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.ListByProduct(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
