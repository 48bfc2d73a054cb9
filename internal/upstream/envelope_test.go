package upstream

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want     string
		wantErr  string
		wantCode int
	}{
		{
			name: "data envelope",
			raw:  `{"responseCode":200,"errorCode":0,"errorMessage":null,"data":{"servers":[]}}`,
			want: `{"servers":[]}`,
		},
		{
			name: "array data",
			raw:  `{"data":[1,2]}`,
			want: `[1,2]`,
		},
		{
			name: "no envelope",
			raw:  `{"result":"ok"}`,
			want: `{"result":"ok"}`,
		},
		{
			name: "scalar data is not an envelope",
			raw:  `{"data":"text","other":1}`,
			want: `{"data":"text","other":1}`,
		},
		{
			name: "bare array",
			raw:  `[{"serverName":"a"}]`,
			want: `[{"serverName":"a"}]`,
		},
		{
			name:    "top-level error",
			raw:     `{"error":"coordinates must be integers"}`,
			wantErr: "coordinates must be integers",
		},
		{
			name:    "nested error",
			raw:     `{"responseCode":200,"data":{"error":"server must be stopped before loading a map"}}`,
			wantErr: "server must be stopped before loading a map",
		},
		{
			name:     "failure response code",
			raw:      `{"responseCode":-1,"errorCode":-101,"errorMessage":"Server lobby not found"}`,
			wantErr:  "Server lobby not found",
			wantCode: -1,
		},
		{
			name:     "failure response code without message",
			raw:      `{"responseCode":-2,"errorCode":-1}`,
			wantErr:  "request rejected (responseCode -2, errorCode -1)",
			wantCode: -2,
		},
		{
			name:    "structured error value",
			raw:     `{"error":{"reason":"busy"}}`,
			wantErr: `{"reason":"busy"}`,
		},
		{
			name: "null error is ignored",
			raw:  `{"error":null,"data":{"result":"done"}}`,
			want: `{"result":"done"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(json.RawMessage(tt.raw))
			if tt.wantErr != "" {
				var ue *UpstreamError
				if !errors.As(err, &ue) {
					t.Fatalf("expected UpstreamError, got %v", err)
				}
				if ue.Message != tt.wantErr {
					t.Errorf("message = %q, want %q", ue.Message, tt.wantErr)
				}
				if ue.Code != tt.wantCode {
					t.Errorf("code = %d, want %d", ue.Code, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("payload = %s, want %s", got, tt.want)
			}
		})
	}
}
