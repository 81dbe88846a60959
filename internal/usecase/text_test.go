package usecase

import "testing"

func TestNormalizeText(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "strips emphasis markers", input: "**Apple**", want: "Apple"},
		{name: "single stars removed", input: "*Galaxy* S24", want: "Galaxy S24"},
		{name: "newline becomes space", input: "Smart\nphone case", want: "Smart phone case"},
		{name: "crlf run becomes one space", input: "line one\r\n\r\nline two", want: "line one line two"},
		{name: "trims whitespace", input: "   iPhone 15   ", want: "iPhone 15"},
		{name: "empty input", input: "", want: "Not available."},
		{name: "only markers and whitespace", input: " ** \n ", want: "Not available."},
		{name: "composes decomposed accents", input: "Cafe\u0301", want: "Caf\u00e9"},
		{name: "thai text untouched", input: "ราคา ฿1,290", want: "ราคา ฿1,290"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeText(tc.input)
			if got != tc.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Not available.",
		"**Product**\nName",
		"e*\u0301",
		"  spaced  out  ",
		"\r\n*\r\n",
		"Brand: **Sony**\n",
	}

	for _, input := range inputs {
		once := NormalizeText(input)
		twice := NormalizeText(once)
		if once != twice {
			t.Errorf("NormalizeText not idempotent for %q: %q then %q", input, once, twice)
		}
		if once == "" {
			t.Errorf("NormalizeText(%q) returned empty string", input)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "long month", raw: "January 5, 2024", want: "01/05/2024"},
		{name: "two digit day", raw: "September 22, 2023", want: "09/22/2023"},
		{name: "abbreviated month", raw: "Sep 22, 2023", want: "09/22/2023"},
		{name: "emphasis around date", raw: "**March 8, 2019**", want: "03/08/2019"},
		{name: "partial date kept", raw: "2023", want: "2023"},
		{name: "free text kept", raw: "Late 2023", want: "Late 2023"},
		{name: "free text normalized", raw: "Q3 **2023**\n", want: "Q3 2023"},
		{name: "empty", raw: "", want: "Not available."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeDate(tc.raw)
			if got != tc.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}
