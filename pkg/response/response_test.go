package response

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopes(t *testing.T) {
	ok, err := json.Marshal(Success(http.StatusCreated, map[string]int{"employee_id": 10000}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","status_code":201,"data":{"employee_id":10000}}`, string(ok))

	failed, err := json.Marshal(Error(http.StatusConflict, "request is already approved"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","status_code":409,"error":"request is already approved"}`, string(failed))

	bare, err := json.Marshal(Bare("Unauthorized"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(bare))
}
