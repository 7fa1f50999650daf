package utils

import "testing"

var supported = []string{"de", "en"}

func TestDetermineLocale_QueryParamWins(t *testing.T) {
	got := DetermineLocale("en-GB", "de-DE,de;q=0.9,en;q=0.8", supported, "de")
	if got != "en" {
		t.Fatalf("want en, got %s", got)
	}
}

func TestDetermineLocale_AcceptLanguageOrder(t *testing.T) {
	got := DetermineLocale("", "de-AT,de;q=0.9,en;q=0.8", supported, "en")
	if got != "de" {
		t.Fatalf("want de, got %s", got)
	}
}

func TestDetermineLocale_AcceptLanguagePrefersHigherQ(t *testing.T) {
	got := DetermineLocale("", "de;q=0.5,en;q=0.85", supported, "de")
	if got != "en" {
		t.Fatalf("want en, got %s", got)
	}
}

func TestDetermineLocale_ZeroQualityExcluded(t *testing.T) {
	got := DetermineLocale("", "en;q=0,fr", supported, "de")
	if got != "de" {
		t.Fatalf("want de fallback, got %s", got)
	}
}

func TestDetermineLocale_UnsupportedQueryIgnored(t *testing.T) {
	got := DetermineLocale("fr", "en-US", supported, "de")
	if got != "en" {
		t.Fatalf("want en, got %s", got)
	}
}

func TestDetermineLocale_DefaultFallback(t *testing.T) {
	got := DetermineLocale("", "fr-FR,es;q=0.9", supported, "de")
	if got != "de" {
		t.Fatalf("want de fallback, got %s", got)
	}
	if got := DetermineLocale("", "", supported, "it"); got != "de" {
		t.Fatalf("unsupported default should use first supported, got %s", got)
	}
}
