package booking

import "testing"

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"hebrew sentence", "איסוף מרחוב הרצל 5", LanguageHebrew},
		{"english sentence", "Hi, I need a ride to the airport", LanguageEnglish},
		{"mixed text tags hebrew", "pickup מרחוב הרצל", LanguageHebrew},
		{"numeric only defaults to english", "03/08/2025 17:30", LanguageEnglish},
		{"empty defaults to english", "", LanguageEnglish},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLanguage(tt.text); got != tt.want {
				t.Fatalf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
