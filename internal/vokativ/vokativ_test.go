package vokativ

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVocative(t *testing.T) {
	cases := map[string]string{
		"Jana":   "Jano",
		"Petra":  "Petro",
		"Petr":   "Petře",
		"Pavel":  "Pavle",
		"Karel":  "Karle",
		"Marek":  "Marku",
		"Jan":    "Jane",
		"David":  "Davide",
		"Tomáš":  "Tomáši",
		"Ondřej": "Ondřeji",
		"Jiří":   "Jiří",
		"Ivo":    "Ivo",
		"Novák":  "Nováku",
		"Patrik": "Patriku",
		"":       "",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, Vocative(input), "vocative of %q", input)
	}
}
