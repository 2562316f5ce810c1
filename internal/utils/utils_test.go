package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount   int64
		currency string
		want     string
	}{
		{60000, "MNT", "₮60,000"},
		{999, "MNT", "₮999"},
		{1234567, "MNT", "₮1,234,567"},
		{-6000, "MNT", "-₮6,000"},
		{123456, "USD", "$1,234.56"},
		{5, "EUR", "€0.05"},
		{60000, "XXX", "₮60,000"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatAmount(tc.amount, tc.currency))
	}
}

func TestPaginationWindow(t *testing.T) {
	params := &PaginationParams{Page: 2, PageSize: 10}
	start, end := params.Window(25)
	assert.Equal(t, 10, start)
	assert.Equal(t, 20, end)

	params.Page = 3
	start, end = params.Window(25)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	params.Page = 9
	start, end = params.Window(25)
	assert.Equal(t, 25, start)
	assert.Equal(t, 25, end)

	meta := CreatePaginationMeta(&PaginationParams{Page: 2, PageSize: 10}, 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrevious)
	require.NotNil(t, meta.NextPage)
	assert.Equal(t, 3, *meta.NextPage)
}

func TestPaginationNormalize(t *testing.T) {
	params := &PaginationParams{Page: 0, PageSize: 1000, Sort: "password", Order: "sideways"}
	params.Normalize()
	assert.Equal(t, &PaginationParams{Page: 1, PageSize: MaxPageSize, Sort: "created_at", Order: "desc"}, params)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	userID := primitive.NewObjectID()
	token, err := GenerateAccessToken(userID, "driver", "secret", time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, userID.Hex(), claims.UserID)
	assert.Equal(t, "driver", claims.UserType)

	_, err = ValidateToken(token, "other")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateAccessToken(userID, "driver", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(expired, "secret")
	assert.ErrorIs(t, err, ErrTokenExpired)
}
