package config

import "testing"

func TestParseEngineVersion(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "28.0.4", want: "28.0.4"},
		{raw: "19.03.15", want: "19.3.15"},
		{raw: "18.09.0", want: "18.9.0"},
		{raw: "17.06.2-ce", want: "17.6.2"},
		{raw: "18.03.1-ee-3", want: "18.3.1-3"},
		{raw: "18.06.0-ce-rc1", want: "18.6.0-rc1"},
		{raw: "20.10.24+dfsg1", want: "20.10.24+dfsg1"},
		{raw: "not-a-version", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseEngineVersion(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEngineVersion(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err == nil && got.String() != tt.want {
				t.Errorf("ParseEngineVersion(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}
