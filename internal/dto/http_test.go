package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseResponse(t *testing.T) {
	tests := []struct {
		name     string
		resp     *BaseResponse
		wantCode int
		wantJSON string
	}{
		{
			name:     "success with data",
			resp:     NewSuccessResponse("Research generated", map[string]string{"symbol": "ACME"}),
			wantCode: http.StatusOK,
			wantJSON: `{"code":200,"message":"Research generated","data":{"symbol":"ACME"}}`,
		},
		{
			name:     "accepted omits data",
			resp:     NewAcceptedResponse("Digest run started"),
			wantCode: http.StatusAccepted,
			wantJSON: `{"code":202,"message":"Digest run started"}`,
		},
		{
			name:     "error carries status",
			resp:     NewErrorResponse(http.StatusBadRequest, "symbol is required"),
			wantCode: http.StatusBadRequest,
			wantJSON: `{"code":400,"message":"symbol is required"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.resp.Code)

			b, err := json.Marshal(tt.resp)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(b))
		})
	}
}
