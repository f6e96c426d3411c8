package app

import (
	"strings"

	"abstats/domain/core"
	"abstats/domain/hypothesis"
	"abstats/internal/errors"
)

// Kind names a test family
type Kind string

const (
	KindBinomial    Kind = "binomial"
	KindOneSample   Kind = "onesample"
	KindWelch       Kind = "welch"
	KindZProp       Kind = "zprop"
	KindZPropArrays Kind = "zprop-arrays"
	KindPermutation Kind = "permutation"
)

// Method selects which implementation of a test to run
type Method string

const (
	MethodManual    Method = "manual"
	MethodReference Method = "reference"
	MethodBoth      Method = "both"
)

// ParseMethod accepts manual, reference or both; the empty string means both.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case "", MethodBoth:
		return MethodBoth, nil
	case MethodManual:
		return MethodManual, nil
	case MethodReference:
		return MethodReference, nil
	}
	return "", errors.InvalidInputf("unknown method %q, expected manual, reference or both", s)
}

func (m Method) runsManual() bool    { return m == MethodManual || m == MethodBoth }
func (m Method) runsReference() bool { return m == MethodReference || m == MethodBoth }

// Request describes one hypothesis test. Only the fields used by Kind are
// read: K, N, P0 for binomial; X, Mu0 for onesample; X, Y for welch and
// permutation; X1, N1, X2, N2 for zprop; A, B for zprop-arrays.
type Request struct {
	ID          core.ID                 `json:"id,omitempty"`
	Kind        Kind                    `json:"kind"`
	Method      Method                  `json:"method,omitempty"`
	Alternative *hypothesis.Alternative `json:"alternative,omitempty"`

	K  int     `json:"k,omitempty"`
	N  int     `json:"n,omitempty"`
	P0 float64 `json:"p0,omitempty"`

	X   []float64 `json:"x,omitempty"`
	Y   []float64 `json:"y,omitempty"`
	Mu0 float64   `json:"mu0,omitempty"`

	X1 int `json:"x1,omitempty"`
	N1 int `json:"n1,omitempty"`
	X2 int `json:"x2,omitempty"`
	N2 int `json:"n2,omitempty"`

	A []float64 `json:"a,omitempty"`
	B []float64 `json:"b,omitempty"`

	Metric    string `json:"metric,omitempty"`
	Reps      int    `json:"reps,omitempty"`
	Seed      int64  `json:"seed,omitempty"`
	KeepTrace bool   `json:"keep_trace,omitempty"`
}

// Evaluation is the outcome of one implementation of a test
type Evaluation struct {
	PValue float64     `json:"p_value"`
	Result interface{} `json:"result"`
}

// Outcome collects the evaluations of one request. When both methods ran,
// Discrepancy is the absolute difference of their p-values.
type Outcome struct {
	ID          core.ID                `json:"id"`
	Kind        Kind                   `json:"kind"`
	Method      Method                 `json:"method"`
	Alternative hypothesis.Alternative `json:"alternative"`
	Manual      *Evaluation            `json:"manual,omitempty"`
	Reference   *Evaluation            `json:"reference,omitempty"`
	Discrepancy *float64               `json:"discrepancy,omitempty"`
	Agrees      *bool                  `json:"agrees,omitempty"`
	Error       string                 `json:"error,omitempty"`
	ErrorCode   string                 `json:"error_code,omitempty"`
	RuntimeMs   int64                  `json:"runtime_ms"`
}

// Failed reports whether the request produced an error
func (o Outcome) Failed() bool {
	return o.Error != ""
}

// Summary aggregates a batch
type Summary struct {
	Total         int   `json:"total"`
	Failed        int   `json:"failed"`
	CrossChecked  int   `json:"cross_checked"`
	Disagreements int   `json:"disagreements"`
	RuntimeMs     int64 `json:"runtime_ms"`
}

// BatchResult is the ordered output of AnalysisService.Run
type BatchResult struct {
	BatchID     core.ID   `json:"batch_id"`
	Fingerprint core.Hash `json:"fingerprint"` // hash of the submitted requests
	Outcomes    []Outcome `json:"outcomes"`
	Summary     Summary   `json:"summary"`
}
