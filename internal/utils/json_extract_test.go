package utils

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "plain json passes through",
			response: `{"bedrooms": 2}`,
			want:     `{"bedrooms": 2}`,
		},
		{
			name:     "json fence stripped",
			response: "```json\n{\"bedrooms\": 2}\n```",
			want:     `{"bedrooms": 2}`,
		},
		{
			name:     "bare fence stripped",
			response: "```\n{\"bedrooms\": 2}\n```",
			want:     `{"bedrooms": 2}`,
		},
		{
			name:     "prose around the object is trimmed",
			response: "Here is the result: {\"maxPrice\": 1800} Hope that helps!",
			want:     `{"maxPrice": 1800}`,
		},
		{
			name:     "nested braces kept intact",
			response: `text {"a": {"b": 1}} trailing`,
			want:     `{"a": {"b": 1}}`,
		},
		{
			name:     "no braces falls back to trimmed input",
			response: "  not json at all  ",
			want:     "not json at all",
		},
		{
			name:     "whitespace only",
			response: "   \n\t",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONObject(tt.response); got != tt.want {
				t.Errorf("ExtractJSONObject() = %q, want %q", got, tt.want)
			}
		})
	}
}
