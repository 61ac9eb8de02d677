// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "testing"

func TestDiagnosisRequestText(t *testing.T) {
	tests := []struct {
		name string
		in   DiagnosisContext
		want string
	}{
		{"empty", DiagnosisContext{}, ""},
		{
			name: "full",
			in: DiagnosisContext{
				Domain: "Web frontend",
				Goal:   " Build a portfolio site ",
				Answers: []DiagnosisAnswer{
					{Question: "Experience?", Answer: "HTML and CSS"},
					{Question: "Skipped", Answer: "  "},
					{Answer: "React"},
				},
			},
			want: "Domain: Web frontend\nGoal: Build a portfolio site\nQ: Experience?\nA: HTML and CSS\nA: React",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.RequestText(); got != tt.want {
				t.Errorf("RequestText() = %q, want %q", got, tt.want)
			}
		})
	}
}
