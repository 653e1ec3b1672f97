package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCeil3_RoundsUpAtThirdPlace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.0001", "1.001"},
		{"1.001", "1.001"},
		{"0.5784", "0.579"},
		{"0.578999", "0.579"},
		{"0", "0"},
		{"12", "12"},
	}
	for _, tt := range tests {
		got := Ceil3(decimal.RequireFromString(tt.in))
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
			"Ceil3(%s) = %s, want %s", tt.in, got, tt.want)
	}
}

func TestCeil3_NeverRoundsDown(t *testing.T) {
	in := decimal.RequireFromString("2.3330001")
	got := Ceil3(in)
	assert.True(t, got.GreaterThanOrEqual(in), "ceiling must not lose volume")
	assert.True(t, got.Equal(decimal.RequireFromString("2.334")))
}

func TestVolumeM3_ConvertsAndRounds(t *testing.T) {
	// 100 x 100 x 100 cm is exactly one cubic meter.
	one := VolumeM3(decimal.NewFromInt(100), decimal.NewFromInt(100), decimal.NewFromInt(100))
	assert.True(t, one.Equal(decimal.NewFromInt(1)))

	// 120.5 x 80 x 60 cm = 0.5784 m3, ceiling-rounded to 0.579.
	v := VolumeM3(
		decimal.RequireFromString("120.5"),
		decimal.NewFromInt(80),
		decimal.NewFromInt(60),
	)
	assert.True(t, v.Equal(decimal.RequireFromString("0.579")), "got %s", v)
}

func TestVolumeM3_ZeroDimension(t *testing.T) {
	v := VolumeM3(decimal.Zero, decimal.NewFromInt(100), decimal.NewFromInt(100))
	assert.True(t, v.IsZero())
}
