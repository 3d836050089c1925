package honeypot

import "testing"

func TestDecodeLLMJSON(t *testing.T) {
	type verdict struct {
		IsScam bool `json:"is_scam"`
	}

	cases := []struct {
		name    string
		raw     string
		want    bool
		wantErr bool
	}{
		{name: "bare object", raw: `{"is_scam": true}`, want: true},
		{name: "json fence", raw: "```json\n{\"is_scam\": true}\n```", want: true},
		{name: "plain fence", raw: "```\n{\"is_scam\": false}\n```", want: false},
		{name: "leading prose", raw: "Here is the result:\n{\"is_scam\": true}", want: true},
		{name: "trailing prose", raw: "{\"is_scam\": true}\nLet me know if you need more.", want: true},
		{name: "no object", raw: "I cannot help with that.", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "malformed", raw: `{"is_scam": tru`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var v verdict
			err := decodeLLMJSON(tc.raw, &v)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got verdict %+v", v)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if v.IsScam != tc.want {
				t.Fatalf("expected is_scam=%v, got %v", tc.want, v.IsScam)
			}
		})
	}
}
