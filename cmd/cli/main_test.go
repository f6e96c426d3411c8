package main

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"abstats/app"
	"abstats/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{
		"ABSTATS_PERMUTATION_SEED", "ABSTATS_PROGRESS_EVERY", "ABSTATS_WORKERS",
		"ABSTATS_DEFAULT_ALTERNATIVE", "ABSTATS_CROSSCHECK_TOLERANCE",
		"ABSTATS_LOG_LEVEL", "ABSTATS_LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("ABSTATS_PERMUTATION_REPS", "300")

	var out bytes.Buffer
	root := newRootCmd(io.Discard)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestBinomialCommand(t *testing.T) {
	out, err := execute(t, "", "binomial", "--k", "8", "--n", "20", "--p0", "0.5", "--alternative", "less")
	require.NoError(t, err)

	var outcome app.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &outcome))
	assert.Equal(t, app.KindBinomial, outcome.Kind)
	assert.Equal(t, app.MethodBoth, outcome.Method)
	require.NotNil(t, outcome.Manual)
	require.NotNil(t, outcome.Reference)
	assert.InDelta(t, 0.2517223358154297, outcome.Manual.PValue, 1e-12)
	assert.InDelta(t, 0.2517223358154297, outcome.Reference.PValue, 1e-9)
	require.NotNil(t, outcome.Agrees)
	assert.True(t, *outcome.Agrees)
}

func TestWelchCommandReferenceOnly(t *testing.T) {
	out, err := execute(t, "", "welch", "--x", "2,1,3,4", "--y", "6,5,7,9", "--method", "reference")
	require.NoError(t, err)

	var outcome app.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &outcome))
	assert.Nil(t, outcome.Manual)
	require.NotNil(t, outcome.Reference)
	assert.InDelta(t, 0.0085128631313781695, outcome.Reference.PValue, 1e-9)
}

func TestPermutationCommand(t *testing.T) {
	out, err := execute(t, "", "permutation", "--x", "1,2,3,4,5", "--y", "1,2,3,4,5", "--reps", "1000", "--trace")
	require.NoError(t, err)

	var outcome app.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &outcome))
	require.NotNil(t, outcome.Manual)
	assert.Equal(t, 1.0, outcome.Manual.PValue)

	result := outcome.Manual.Result.(map[string]interface{})
	assert.Equal(t, 0.0, result["observed"])
	assert.Len(t, result["trace"], 1000)
}

func TestFailedTestIsPrintedAndReturned(t *testing.T) {
	out, err := execute(t, "", "zprop", "--x1", "0", "--n1", "10", "--x2", "0", "--n2", "10")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNumericDegenerate, errors.GetCode(err))
	assert.Contains(t, out, `"error_code": "NUMERIC_DEGENERATE"`)
}

func TestErrorLine(t *testing.T) {
	_, err := execute(t, "", "binomial", "--k", "1", "--n", "2", "--alternative", "sideways")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(errorLine(err), "INVALID_INPUT: "))

	_, err = execute(t, "", "binomial", "--bogus")
	require.Error(t, err)
	assert.False(t, errors.IsAppError(err))
	assert.Equal(t, err.Error(), errorLine(err))
}

func TestInvalidFlagValues(t *testing.T) {
	_, err := execute(t, "", "binomial", "--k", "1", "--n", "2", "--alternative", "sideways")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = execute(t, "", "binomial", "--k", "1", "--n", "2", "--method", "exact")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestBatchCommandFromStdin(t *testing.T) {
	doc := `{"requests": [
		{"id": "a", "kind": "binomial", "k": 8, "n": 20, "p0": 0.5},
		{"id": "b", "kind": "zprop", "x1": 50, "n1": 500, "x2": 70, "n2": 500, "alternative": "smaller"},
		{"id": "c", "kind": "permutation", "x": [1, 2, 3], "y": [4, 5, 6], "metric": "median"}
	]}`

	out, err := execute(t, doc, "batch")
	require.NoError(t, err)

	var result app.BatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, "a", result.Outcomes[0].ID.String())
	assert.Equal(t, "b", result.Outcomes[1].ID.String())
	assert.Equal(t, "less", result.Outcomes[1].Alternative.String())
	assert.Equal(t, "c", result.Outcomes[2].ID.String())
	assert.Equal(t, 0, result.Summary.Failed)
}

func TestDecodeRequests(t *testing.T) {
	requests, err := decodeRequests([]byte(`[{"kind": "welch", "x": [1, 2], "y": [3, 4]}]`))
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, app.KindWelch, requests[0].Kind)
	assert.Nil(t, requests[0].Alternative)

	_, err = decodeRequests([]byte("  "))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = decodeRequests([]byte(`{"requests": [{"kind": "welch", "alternative": "sideways"}]}`))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestDemoCommand(t *testing.T) {
	out, err := execute(t, "", "demo", "--control-size", "200", "--treatment-size", "200")
	require.NoError(t, err)

	var report struct {
		Control   map[string]interface{} `json:"control"`
		Treatment map[string]interface{} `json:"treatment"`
		Batch     app.BatchResult        `json:"batch"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 200.0, report.Control["units"])
	assert.Len(t, report.Batch.Outcomes, 6)
	assert.Equal(t, 0, report.Batch.Summary.Failed)
}
