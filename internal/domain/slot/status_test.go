package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := map[string]Status{
		"Waitlist":          StatusFullOrWaitlisted,
		"Join Waitlist (3)": StatusFullOrWaitlisted,
		"WAITLIST":          StatusFullOrWaitlisted,
		"Class full":        StatusFullOrWaitlisted,
		"FULL":              StatusFullOrWaitlisted,
		"":                  StatusEmptyOrUnknown,
		"   \n\t":           StatusEmptyOrUnknown,
		"3 spots":           StatusOpen,
		"1 spot left":       StatusOpen,
		"Open":              StatusOpen,
	}
	for text, want := range cases {
		assert.Equal(t, want, Classify(text), "status %q", text)
	}
}

func TestClassify_NeverOpenWhenFullOrWaitlist(t *testing.T) {
	for _, text := range []string{"waitlist", "wAiTlIsT now", "full", "Fully booked", "  FULL  ", "spots: full"} {
		got := Classify(text)
		assert.NotEqual(t, StatusOpen, got, "status %q", text)
		assert.Equal(t, StatusFullOrWaitlisted, got, "status %q", text)
	}
}
