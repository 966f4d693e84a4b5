package version

import (
	"reflect"
	"testing"
)

func TestApplyVersionExpr(t *testing.T) {
	catalog := []string{"10.2", "11.0", "11.8", "12.0.1", "12.4.1"}

	tests := []struct {
		name string
		expr string
		want []string
	}{
		{
			name: "empty expression keeps all",
			expr: "",
			want: catalog,
		},
		{
			name: "string prefix",
			expr: `version.startsWith("12")`,
			want: []string{"12.0.1", "12.4.1"},
		},
		{
			name: "component comparison",
			expr: "major >= 11 && minor < 4",
			want: []string{"11.0", "12.0.1"},
		},
		{
			name: "nothing matches",
			expr: "major > 90",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyVersionExpr(catalog, tt.expr)
			if err != nil {
				t.Fatalf("ApplyVersionExpr(%q) error = %v", tt.expr, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ApplyVersionExpr(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestValidateVersionExpr(t *testing.T) {
	if err := ValidateVersionExpr(`version.startsWith("12")`); err != nil {
		t.Errorf("valid expression rejected: %v", err)
	}
	if err := ValidateVersionExpr(""); err != nil {
		t.Errorf("empty expression rejected: %v", err)
	}
}
