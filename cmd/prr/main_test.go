package main

import (
	"testing"

	"github.com/masoncl/review-reply/internal/config"
	"github.com/masoncl/review-reply/internal/usecase/report"
)

func TestTrimPolicy(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TrimConfig
		want report.Policy
	}{
		{
			name: "configured values carry over",
			cfg: config.TrimConfig{
				AdjacentMode:     "never",
				LargeHunkLines:   120,
				KeepHeadLines:    5,
				RelevantPadLines: 4,
			},
			want: report.Policy{
				AdjacentMode:     report.AdjacentNever,
				LargeHunkLines:   120,
				KeepHeadLines:    5,
				RelevantPadLines: 4,
			},
		},
		{
			name: "zero config maps to zero policy",
			cfg:  config.TrimConfig{},
			want: report.Policy{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := trimPolicy(tc.cfg)
			if got != tc.want {
				t.Fatalf("trimPolicy(%+v) = %+v, want %+v", tc.cfg, got, tc.want)
			}
		})
	}
}

func TestRepositoryName(t *testing.T) {
	if got := repositoryName("/tmp/linux"); got != "linux" {
		t.Fatalf("expected linux, got %s", got)
	}
	if got := repositoryName("."); got == "" {
		t.Fatalf("expected non-empty name for current directory")
	}
}
