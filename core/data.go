package core

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mohae/deepcopy"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

type Counts map[string]uint32 // key: outcome bit string, value: occurrences

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

func (c Counts) String() string {
	st, err := jsonIter.Marshal(c)
	if err != nil {
		zap.L().Error("Failed to marshal core.Counts")
		return ""
	}
	return string(st)
}

// OutcomeArray is a dense shots-by-bits readout table, one row per shot.
type OutcomeArray struct {
	Rows  int     `json:"rows"`
	Width int     `json:"width"`
	Data  []uint8 `json:"data"` // row-major
}

func NewOutcomeArray(rows, width int) *OutcomeArray {
	return &OutcomeArray{
		Rows:  rows,
		Width: width,
		Data:  make([]uint8, rows*width),
	}
}

// OutcomeArrayFromReadouts builds an array from per-shot readout rows as
// returned by a target. All rows must have equal length.
func OutcomeArrayFromReadouts(readouts [][]int) (*OutcomeArray, error) {
	if len(readouts) == 0 {
		return NewOutcomeArray(0, 0), nil
	}
	width := len(readouts[0])
	a := NewOutcomeArray(len(readouts), width)
	for i, row := range readouts {
		if len(row) != width {
			return nil, fmt.Errorf("readout row %d has %d entries, want %d", i, len(row), width)
		}
		for j, v := range row {
			if v != 0 {
				a.Data[i*width+j] = 1
			}
		}
	}
	return a, nil
}

func (a *OutcomeArray) At(i, j int) uint8 {
	return a.Data[i*a.Width+j]
}

func (a *OutcomeArray) Set(i, j int, v uint8) {
	a.Data[i*a.Width+j] = v
}

// SelectColumns keeps only the given columns, in the given order.
func (a *OutcomeArray) SelectColumns(cols []int) *OutcomeArray {
	out := NewOutcomeArray(a.Rows, len(cols))
	for i := 0; i < a.Rows; i++ {
		for k, j := range cols {
			out.Data[i*out.Width+k] = a.Data[i*a.Width+j]
		}
	}
	return out
}

// FlipColumn inverts every outcome in column j.
func (a *OutcomeArray) FlipColumn(j int) {
	for i := 0; i < a.Rows; i++ {
		a.Data[i*a.Width+j] ^= 1
	}
}

// Counts aggregates the rows into occurrence counts per bit string.
func (a *OutcomeArray) Counts() Counts {
	counts := make(Counts)
	var sb strings.Builder
	for i := 0; i < a.Rows; i++ {
		sb.Reset()
		for j := 0; j < a.Width; j++ {
			if a.At(i, j) == 0 {
				sb.WriteByte('0')
			} else {
				sb.WriteByte('1')
			}
		}
		counts[sb.String()]++
	}
	return counts
}

// BackendResult carries either shot readouts or a statevector, never both.
type BackendResult struct {
	Shots *OutcomeArray `json:"shots,omitempty"`
	State []complex128  `json:"-"`
}

func NewShotResult(a *OutcomeArray) *BackendResult {
	return &BackendResult{Shots: a}
}

func NewStateResult(state []complex128) *BackendResult {
	return &BackendResult{State: state}
}

// EmptyResult is the eager result for a circuit with no measurements: the
// requested number of shots, each of width zero.
func EmptyResult(shots int) *BackendResult {
	return NewShotResult(NewOutcomeArray(shots, 0))
}

func (r *BackendResult) Clone() *BackendResult {
	return deepcopy.Copy(r).(*BackendResult)
}

func (r *BackendResult) Counts() Counts {
	if r.Shots == nil {
		return make(Counts)
	}
	return r.Shots.Counts()
}

func (r *BackendResult) ToString() string {
	st, err := jsonIter.Marshal(r)
	if err != nil {
		zap.L().Error("Failed to marshal core.BackendResult")
		return ""
	}
	st = pretty.Pretty(st)
	return string(st)
}
