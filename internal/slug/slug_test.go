package slug

import "testing"

func TestNormalize_Examples(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"simple", "Example School", "example-school"},
		{"punctuation only", "!!! --- ???", ""},
		{"diacritics", "Lycée Français Charles de Gaulle", "lycee-francais-charles-de-gaulle"},
		{"apostrophe", "St Paul's Girls' School", "st-paul-s-girls-school"},
		{"leading and trailing", "  --Godolphin & Latymer--  ", "godolphin-latymer"},
		{"digits", "Year 7 (2025)", "year-7-2025"},
		{"non latin dropped", "Школа 42", "42"},
		{"already slug", "the-harrodian", "the-harrodian"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"-",
		"---",
		"?!.,",
		"Example School",
		"Ærøskøbing Skole",
		"a--b__c  d",
		"ÉCOLE  Jeannine Manuel",
		"\xff\xfe invalid utf8",
		"Emoji 🎓 Academy",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalize_Shape(t *testing.T) {
	got := Normalize("  Hello,   World!! -- Again  ")
	if got != "hello-world-again" {
		t.Fatalf("unexpected slug: %q", got)
	}
	for i, r := range got {
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
		if !ok {
			t.Errorf("unexpected rune %q at %d", r, i)
		}
	}
}
