package i18n

import "testing"

func TestGetCatalog(t *testing.T) {
	tests := []struct {
		name   string
		locale string
	}{
		{"exact match", "en-US"},
		{"language only", "en"},
		{"unknown locale falls back", "pt-BR"},
		{"invalid locale falls back", "???"},
		{"empty locale falls back", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := GetCatalog(tt.locale)
			if catalog.Locale() != "en-US" {
				t.Fatalf("expected en-US catalog, got %s", catalog.Locale())
			}
		})
	}
}

func TestFormat(t *testing.T) {
	catalog := GetCatalog("en-US")

	tests := []struct {
		name     string
		code     string
		metadata map[string]string
		want     string
	}{
		{
			name: "plain message",
			code: CodeNotOwner,
			want: "Only the claim's current owner may perform this operation",
		},
		{
			name:     "templated message",
			code:     CodeRepayingTooMuch,
			metadata: map[string]string{"Amount": "120", "Remaining": "80"},
			want:     "Payment of 120 exceeds the 80 remaining on the claim",
		},
		{
			name:     "template without metadata renders raw",
			code:     CodeBatchTooLarge,
			metadata: nil,
			want:     "Batch of {{.Size}} exceeds the maximum of {{.Max}} operations",
		},
		{
			name: "unknown code renders as itself",
			code: "NO_SUCH_CODE",
			want: "NO_SUCH_CODE",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := catalog.Format(tt.code, tt.metadata); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
