package download

import (
	"bufio"
	"reflect"
	"strings"
	"testing"
)

func TestScanProgressLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "carriage return redraws yield tokens",
			input: "[#1 16MiB/100MiB(16%)]\r[#1 32MiB/100MiB(32%)]\r[#1 48MiB/100MiB(48%)]\n",
			want: []string{
				"[#1 16MiB/100MiB(16%)]",
				"[#1 32MiB/100MiB(32%)]",
				"[#1 48MiB/100MiB(48%)]",
			},
		},
		{
			name:  "mixed terminators",
			input: "status\rdone\nsummary\n",
			want:  []string{"status", "done", "summary"},
		},
		{
			name:  "trailing data without terminator",
			input: "partial line",
			want:  []string{"partial line"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := bufio.NewScanner(strings.NewReader(tt.input))
			sc.Split(scanProgressLines)

			var got []string
			for sc.Scan() {
				got = append(got, sc.Text())
			}
			if err := sc.Err(); err != nil {
				t.Fatalf("scan: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tokens = %q, want %q", got, tt.want)
			}
		})
	}
}
