//go:build unit
// +build unit

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeArrayFromReadouts(t *testing.T) {
	tests := []struct {
		name      string
		in        [][]int
		wantRows  int
		wantWidth int
		wantErr   bool
	}{
		{
			name:      "empty",
			in:        nil,
			wantRows:  0,
			wantWidth: 0,
		},
		{
			name:      "two shots three bits",
			in:        [][]int{{0, 1, 1}, {1, 0, 0}},
			wantRows:  2,
			wantWidth: 3,
		},
		{
			name:    "ragged rows",
			in:      [][]int{{0, 1}, {1}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := OutcomeArrayFromReadouts(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantRows, a.Rows)
			assert.Equal(t, tt.wantWidth, a.Width)
		})
	}
}

func TestOutcomeArraySelectColumns(t *testing.T) {
	a, err := OutcomeArrayFromReadouts([][]int{
		{0, 1, 0, 1},
		{1, 1, 0, 0},
	})
	assert.NoError(t, err)

	got := a.SelectColumns([]int{1, 3})
	assert.Equal(t, 2, got.Rows)
	assert.Equal(t, 2, got.Width)
	assert.Equal(t, uint8(1), got.At(0, 0))
	assert.Equal(t, uint8(1), got.At(0, 1))
	assert.Equal(t, uint8(1), got.At(1, 0))
	assert.Equal(t, uint8(0), got.At(1, 1))
}

func TestOutcomeArrayCounts(t *testing.T) {
	a, err := OutcomeArrayFromReadouts([][]int{
		{0, 0},
		{1, 1},
		{0, 0},
	})
	assert.NoError(t, err)
	assert.Equal(t, Counts{"00": 2, "11": 1}, a.Counts())
}

func TestOutcomeArrayFlipColumn(t *testing.T) {
	a, err := OutcomeArrayFromReadouts([][]int{
		{0, 1},
		{1, 0},
	})
	assert.NoError(t, err)
	a.FlipColumn(0)
	assert.Equal(t, Counts{"11": 1, "00": 1}, a.Counts())
}

func TestEmptyResult(t *testing.T) {
	r := EmptyResult(5)
	assert.Equal(t, 5, r.Shots.Rows)
	assert.Equal(t, 0, r.Shots.Width)
	assert.Equal(t, Counts{"": 5}, r.Counts())
}

func TestBackendResultClone(t *testing.T) {
	a, err := OutcomeArrayFromReadouts([][]int{{1, 0}})
	assert.NoError(t, err)
	r := NewShotResult(a)
	c := r.Clone()
	c.Shots.Set(0, 0, 0)
	assert.Equal(t, uint8(1), r.Shots.At(0, 0))
}
