package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestPlace(t *testing.T) {
	bg := "AAAAA\nAAAAA\nAAAAA"
	tests := []struct {
		name string
		cfg  Config
		fg   string
		want []string
	}{
		{
			name: "center",
			cfg:  Config{Width: 5, Height: 3, Position: Center},
			fg:   "X",
			want: []string{"AAAAA", "AAXAA", "AAAAA"},
		},
		{
			name: "top with padding",
			cfg:  Config{Width: 5, Height: 3, Position: Top, PadY: 1},
			fg:   "XXX",
			want: []string{"AAAAA", "AXXXA", "AAAAA"},
		},
		{
			name: "bottom",
			cfg:  Config{Width: 5, Height: 3, Position: Bottom},
			fg:   "X",
			want: []string{"AAAAA", "AAAAA", "AAXAA"},
		},
		{
			name: "bottom right",
			cfg:  Config{Width: 5, Height: 3, Position: BottomRight, PadX: 1},
			fg:   "XX",
			want: []string{"AAAAA", "AAAAA", "AAXXA"},
		},
		{
			name: "oversized foreground clamps to origin",
			cfg:  Config{Width: 5, Height: 3, Position: Center},
			fg:   "XXXXXXX\nXXXXXXX\nXXXXXXX\nXXXXXXX",
			want: []string{"XXXXXXX", "XXXXXXX", "XXXXXXX"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Place(tt.cfg, tt.fg, bg)
			require.Equal(t, tt.want, strings.Split(got, "\n"))
		})
	}
}

func TestPlace_PadsShortBackground(t *testing.T) {
	got := Place(Config{Width: 3, Height: 3, Position: Bottom}, "X", "AAA")
	require.Equal(t, []string{"AAA", "   ", " X "}, strings.Split(got, "\n"))
}

func TestPlace_KeepsStyledBackground(t *testing.T) {
	bg := lipgloss.NewStyle().Bold(true).Render("AAAAA")
	got := Place(Config{Width: 5, Height: 1, Position: Center}, "X", bg)
	require.Equal(t, "AAXAA", ansi.Strip(got))
}
