package rule

import "testing"

func TestKindIsValid(t *testing.T) {
	for _, k := range []Kind{KindNormal, KindCounter, KindUnique, KindUUID} {
		if !k.IsValid() {
			t.Errorf("expected kind %q to be valid", k)
		}
	}
	for _, k := range []Kind{"", "random", "Counter"} {
		if k.IsValid() {
			t.Errorf("expected kind %q to be invalid", k)
		}
	}
}

func TestCaseIsValid(t *testing.T) {
	for _, c := range []Case{"", CaseSame, CaseLower, CaseUpper, CaseCapitalize} {
		if !c.IsValid() {
			t.Errorf("expected case %q to be valid", c)
		}
	}
	if Case("title").IsValid() {
		t.Error("expected case \"title\" to be invalid")
	}
}

func TestRuleStart(t *testing.T) {
	tests := []struct {
		counterStart int
		want         int
	}{
		{0, 1},
		{-5, 1},
		{1, 1},
		{1000, 1000},
	}

	for _, tt := range tests {
		r := &Rule{CounterStart: tt.counterStart}
		if got := r.Start(); got != tt.want {
			t.Errorf("Start() with counterStart=%d = %d, want %d", tt.counterStart, got, tt.want)
		}
	}
}

func TestRuleEffectiveCase(t *testing.T) {
	r := &Rule{}
	if got := r.EffectiveCase(); got != CaseSame {
		t.Errorf("EffectiveCase() = %q, want %q", got, CaseSame)
	}
	r.Case = CaseUpper
	if got := r.EffectiveCase(); got != CaseUpper {
		t.Errorf("EffectiveCase() = %q, want %q", got, CaseUpper)
	}
}

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{
			name: "valid normal rule",
			rule: Rule{Name: "username", Kind: KindNormal, Expression: `firstName + "." + lastName`},
		},
		{
			name: "valid uuid rule without expression",
			rule: Rule{Name: "guid", Kind: KindUUID},
		},
		{
			name:    "missing name",
			rule:    Rule{Kind: KindNormal, Expression: "name"},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			rule:    Rule{Name: "x", Kind: "sequence", Expression: "name"},
			wantErr: true,
		},
		{
			name:    "missing expression for non-uuid kind",
			rule:    Rule{Name: "x", Kind: KindCounter},
			wantErr: true,
		},
		{
			name:    "unknown case",
			rule:    Rule{Name: "x", Kind: KindNormal, Expression: "name", Case: "title"},
			wantErr: true,
		},
		{
			name:    "negative digits",
			rule:    Rule{Name: "x", Kind: KindNormal, Expression: "name", Digits: -1},
			wantErr: true,
		},
		{
			name:    "negative maxLength",
			rule:    Rule{Name: "x", Kind: KindNormal, Expression: "name", MaxLength: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetValidateRejectsDuplicates(t *testing.T) {
	set := Set{
		{Name: "login", Kind: KindNormal, Expression: "name"},
		{Name: "login", Kind: KindUnique, Expression: "name"},
	}
	if err := set.Validate(); err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestSetNames(t *testing.T) {
	set := Set{
		{Name: "a", Kind: KindNormal, Expression: "name"},
		{Name: "b", Kind: KindUUID},
	}
	names := set.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v, want [a b]", names)
	}
}

func TestSetUnique(t *testing.T) {
	set := Set{
		{Name: "a", Kind: KindNormal, Expression: "name"},
		{Name: "b", Kind: KindUnique, Expression: "name"},
		{Name: "c", Kind: KindUnique, Expression: "name"},
	}
	unique := set.Unique()
	if len(unique) != 2 {
		t.Fatalf("expected 2 unique rules, got %d", len(unique))
	}
	if unique[0].Name != "b" || unique[1].Name != "c" {
		t.Errorf("Unique() order = [%s %s], want [b c]", unique[0].Name, unique[1].Name)
	}
}
